package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/service"
)

type CheckinHandler struct {
	Service *service.CheckinService
	Log     *zap.Logger
}

// Checkin accepts the string decoded from an attendee's QR ticket.
func (h *CheckinHandler) Checkin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TicketCode string `json:"ticket_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	attendee, err := h.Service.Checkin(body.TicketCode)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, attendee)
}
