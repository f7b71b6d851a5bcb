package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/harborlight/outreach-backend/internal/service"
)

type StatsHandler struct {
	Service *service.StatsService
	Log     *zap.Logger
}

func (h *StatsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Service.GetOverview(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
