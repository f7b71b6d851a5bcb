package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/model"
	"github.com/harborlight/outreach-backend/internal/repository"
)

type EventHandler struct {
	Events    repository.EventRepositoryInterface
	Attendees repository.AttendeeRepositoryInterface
	Log       *zap.Logger
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.ListAll()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": events})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	event, err := h.Events.GetByID(id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	attendees, err := h.Attendees.ListByEvent(id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		model.Event
		Attendees []model.Attendee `json:"attendees"`
	}{Event: *event, Attendees: attendees})
}
