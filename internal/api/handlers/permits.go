package handlers

import (
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/services"
	"net/http"

	"go.uber.org/zap"
)

type PermitHandler struct {
	Calculator *services.PermitCalculator
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// Permits computes per-state requirements for a loaded envelope on a route.
func (h *PermitHandler) Permits(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.PermitRequest
	if !decodeBody(w, r, h.Log, &req) {
		return
	}

	reqs, err := h.Calculator.ComputePermits(req.Envelope.ToDomain(), dto.Route(req.Route))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	res := dto.PermitResponse{Permits: reqs}
	for _, p := range reqs {
		res.TotalFee += p.EstimatedFee
		h.Metrics.RecordPermits(p)
	}
	writeJSON(w, r, h.Log, http.StatusOK, res)
}
