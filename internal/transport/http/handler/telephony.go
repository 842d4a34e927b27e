package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/application/event"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/passcode"
	"github.com/ricknaldos/buzentry-main-sub001/internal/application/phone"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/internal/pkg/validate"
	"github.com/ricknaldos/buzentry-main-sub001/pkg/logger"
	"go.uber.org/zap"
)

// AttemptLimiter bounds verification attempts per entry phone number.
type AttemptLimiter interface {
	Allow(ctx context.Context, phoneNumber string) (bool, int, error)
}

// TelephonyHandler serves the door-station callbacks. These endpoints are
// public (the caller is a telephony collaborator, not a logged-in user) and
// sit behind the per-IP rate limiter in the router.
type TelephonyHandler struct {
	phones    phone.Service
	passcodes passcode.Service
	events    event.Service
	limiter   AttemptLimiter
}

func NewTelephonyHandler(phones phone.Service, passcodes passcode.Service, events event.Service, limiter AttemptLimiter) *TelephonyHandler {
	return &TelephonyHandler{phones: phones, passcodes: passcodes, events: events, limiter: limiter}
}

// VerifyRequest is the code check sent when a visitor keys in digits.
type VerifyRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Code        string `json:"code" validate:"required"`
	CallSid     string `json:"call_sid" validate:"required"`
}

// VerifyResponse reports the outcome; AttemptsLeft is present only on
// rate-limited denials.
type VerifyResponse struct {
	Granted      bool   `json:"granted"`
	Method       string `json:"method,omitempty"`
	PasscodeID   string `json:"passcodeId,omitempty"`
	Label        string `json:"label,omitempty"`
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"`
}

func (h *TelephonyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	allowed, remaining, err := h.limiter.Allow(r.Context(), req.PhoneNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !allowed {
		h.record(r, domain.EventAccessDenied, "", req, map[string]string{"reason": "rate_limited"})
		writeJSON(w, http.StatusTooManyRequests, VerifyResponse{Granted: false, AttemptsLeft: &remaining})
		return
	}

	userID, err := h.phones.Resolve(r.Context(), req.PhoneNumber)
	if errors.Is(err, domain.ErrNotFound) {
		h.record(r, domain.EventAccessDenied, "", req, map[string]string{"reason": "unknown_number"})
		writeError(w, http.StatusNotFound, "no profile owns this number")
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	res, err := h.passcodes.VerifyAndConsume(r.Context(), userID, req.Code, time.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if res.Granted {
		details := map[string]string{"method": res.Method}
		if res.PasscodeID != "" {
			details["passcodeId"] = res.PasscodeID
			details["label"] = res.Label
		}
		h.record(r, domain.EventAccessGranted, userID, req, details)
	} else {
		h.record(r, domain.EventAccessDenied, userID, req, map[string]string{"reason": "invalid_code"})
	}
	writeJSON(w, http.StatusOK, VerifyResponse{
		Granted:    res.Granted,
		Method:     res.Method,
		PasscodeID: res.PasscodeID,
		Label:      res.Label,
	})
}

// RecordEvent ingests unlock outcomes reported by the telephony collaborator.
func (h *TelephonyHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		// Attribute the event to the number's owner when possible; events
		// for unassigned numbers stay in the ledger without a user index.
		if owner, err := h.phones.Resolve(r.Context(), req.PhoneNumber); err == nil {
			req.UserID = owner
		}
	}
	ev, err := h.events.Record(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// record writes a verification outcome to the ledger best-effort; a ledger
// hiccup must not turn a decided verification into an HTTP error.
func (h *TelephonyHandler) record(r *http.Request, eventType, userID string, req VerifyRequest, details map[string]string) {
	_, err := h.events.Record(r.Context(), domain.RecordEventRequest{
		EventType:   eventType,
		UserID:      userID,
		PhoneNumber: req.PhoneNumber,
		CallSid:     req.CallSid,
		Details:     details,
	})
	if err != nil {
		logger.L().Warn("verification event not recorded",
			zap.String("call_sid", req.CallSid), zap.Error(err))
	}
}
