package handler

import (
	"net/http"
	"strconv"

	"github.com/ricknaldos/buzentry-main-sub001/internal/application/event"
)

// EventHandler exposes the user's access-event ledger and analytics.
type EventHandler struct {
	svc event.Service
}

func NewEventHandler(svc event.Service) *EventHandler { return &EventHandler{svc: svc} }

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q := r.URL.Query()
	from, _ := strconv.ParseInt(q.Get("from"), 10, 64)
	to, _ := strconv.ParseInt(q.Get("to"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	events, err := h.svc.ListForUser(r.Context(), userID, from, to, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	stats, err := h.svc.Stats(r.Context(), userID, days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
