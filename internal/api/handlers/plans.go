package handlers

import (
	"encoding/json"
	"load-planner-service/internal/adapters/cache"
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/platform/obs"
	"load-planner-service/internal/ports"
	"load-planner-service/internal/services"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type PlanHandler struct {
	Catalog ports.TruckCatalog
	Planner *services.LoadPlanner
	Weights services.ScoringWeights
	// Digest of the reference data the planner was built with.
	Reference string
	Cache     ports.PlanCache // optional
	CacheTTL  time.Duration
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// Plan splits a manifest across trucks and annotates the loads with permits
// when a route is given. Planning is deterministic for fixed reference data,
// so responses are served from the cache when one is configured. Cache
// failures degrade to recomputing.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if !decodeBody(w, r, h.Log, &req) {
		return
	}

	ctx := r.Context()
	log := h.Log.With(zap.String("req_id", obs.RequestID(ctx)))

	var key string
	if h.Cache != nil {
		var err error
		if key, err = h.cacheKey(req); err != nil {
			log.Warn("plan cache key failed", zap.Error(err))
		} else if payload, found, err := h.Cache.Get(ctx, key); err != nil {
			log.Warn("plan cache get failed", zap.Error(err))
		} else {
			h.Metrics.RecordCacheLookup(found)
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(payload)
				return
			}
		}
	}

	trucks, err := services.Candidates(h.Catalog, req.TruckIDs, req.Category)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	plan, err := h.Planner.Plan(ctx, dto.CargoItems(req.Items), trucks, dto.Route(req.Route))
	h.Metrics.RecordPlan(plan, err)
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}

	payload, err := json.Marshal(dto.NewPlanResponse(plan))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	payload = append(payload, '\n')

	if h.Cache != nil && key != "" {
		if err := h.Cache.Put(ctx, key, payload, h.CacheTTL); err != nil {
			log.Warn("plan cache put failed", zap.Error(err))
		}
	}

	log.Info("plan computed",
		zap.Int("trucks", plan.TruckCount),
		zap.Int("unplaceable", len(plan.Unplaceable)),
		zap.Float64("total_cost", plan.TotalCost),
	)

	w.Header().Set("Content-Type", "application/json")
	if h.Cache != nil {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// cacheKey covers everything a plan depends on besides the request itself.
func (h *PlanHandler) cacheKey(req dto.PlanRequest) (string, error) {
	return cache.Key("plans", struct {
		Request   dto.PlanRequest
		Weights   services.ScoringWeights
		Reference string
	}{req, h.Weights, h.Reference})
}
