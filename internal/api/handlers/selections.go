package handlers

import (
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/ports"
	"load-planner-service/internal/services"
	"net/http"

	"go.uber.org/zap"
)

type SelectionHandler struct {
	Catalog  ports.TruckCatalog
	Selector *services.TruckSelector
	Weights  services.ScoringWeights
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// Select ranks every candidate truck that can carry the whole item list.
// An empty ranking is a normal 200 response.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.SelectionRequest
	if !decodeBody(w, r, h.Log, &req) {
		return
	}

	trucks, err := services.Candidates(h.Catalog, req.TruckIDs, req.Category)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	weights := h.Weights
	if req.Weights != nil {
		weights = services.ScoringWeights{
			Utilization: req.Weights.Utilization,
			Cost:        req.Weights.Cost,
			Permit:      req.Weights.Permit,
		}
	}

	ranked, err := h.Selector.Select(r.Context(), dto.CargoItems(req.Items), trucks, weights)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	h.Metrics.SelectionsTotal.Inc()

	writeJSON(w, r, h.Log, http.StatusOK, dto.NewSelectionResponse(ranked))
}
