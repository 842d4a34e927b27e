package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ricknaldos/buzentry-main-sub001/internal/application/profile"
	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
	"github.com/ricknaldos/buzentry-main-sub001/internal/pkg/validate"
)

// ProfileHandler handles the authenticated user's profile endpoints.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler { return &ProfileHandler{svc: svc} }

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The token, not the body, decides whose profile is created.
	req.Email = userID
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, req)
}

// SetPause toggles call pausing, optionally with a forwarding number.
func (h *ProfileHandler) SetPause(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		IsPaused              bool    `json:"is_paused"`
		PauseForwardingNumber *string `json:"pause_forwarding_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := domain.UpdateProfileRequest{IsPaused: &body.IsPaused}
	if body.PauseForwardingNumber != nil {
		req.PauseForwardingNumber = body.PauseForwardingNumber
	}
	h.applyUpdate(w, r, userID, req)
}

func (h *ProfileHandler) SetPauseForwarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		PauseForwardingNumber string `json:"pause_forwarding_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, domain.UpdateProfileRequest{
		PauseForwardingNumber: &body.PauseForwardingNumber,
	})
}

func (h *ProfileHandler) SetDoorCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		DoorCode string `json:"door_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, domain.UpdateProfileRequest{DoorCode: &body.DoorCode})
}

func (h *ProfileHandler) SetAccessCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		AccessCode string `json:"access_code"` // empty disables the PIN
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, domain.UpdateProfileRequest{AccessCode: &body.AccessCode})
}

func (h *ProfileHandler) SetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		NotifyEmail       *bool   `json:"notify_email"`
		NotifySMS         *bool   `json:"notify_sms"`
		NotifyPhoneNumber *string `json:"notify_phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, domain.UpdateProfileRequest{
		NotifyEmail:       body.NotifyEmail,
		NotifySMS:         body.NotifySMS,
		NotifyPhoneNumber: body.NotifyPhoneNumber,
	})
}

func (h *ProfileHandler) SetQuietHours(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Enabled bool   `json:"enabled"`
		Start   string `json:"start"`
		End     string `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.applyUpdate(w, r, userID, domain.UpdateProfileRequest{
		QuietHoursEnabled: &body.Enabled,
		QuietHoursStart:   &body.Start,
		QuietHoursEnd:     &body.End,
	})
}

func (h *ProfileHandler) applyUpdate(w http.ResponseWriter, r *http.Request, userID string, req domain.UpdateProfileRequest) {
	p, err := h.svc.Update(r.Context(), userID, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
