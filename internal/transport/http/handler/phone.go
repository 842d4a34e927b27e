package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ricknaldos/buzentry-main-sub001/internal/application/phone"
)

// PhoneHandler handles entry phone number assignment.
type PhoneHandler struct {
	svc phone.Service
}

func NewPhoneHandler(svc phone.Service) *PhoneHandler { return &PhoneHandler{svc: svc} }

func (h *PhoneHandler) Assign(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.svc.Assign(r.Context(), userID, body.PhoneNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PhoneHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.svc.Release(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PhoneHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("phone_number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	userID, err := h.svc.Resolve(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": userID})
}
