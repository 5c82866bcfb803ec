package api

import (
	"load-planner-service/internal/api/handlers"
	"load-planner-service/internal/platform/metrics"
	"load-planner-service/internal/ports"
	"load-planner-service/internal/services"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs. Cache may be nil.
type Deps struct {
	Catalog    *services.TruckCatalog
	Rules      *services.PermitRuleTable
	Selector   *services.TruckSelector
	Calculator *services.PermitCalculator
	Planner    *services.LoadPlanner
	Weights    services.ScoringWeights
	Cache      ports.PlanCache
	CacheTTL   time.Duration
	Metrics    *metrics.Metrics
	Log        *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Trucks: d.Catalog.Len(), States: len(d.Rules.Codes()), Log: d.Log}
	refHandler := &handlers.ReferenceHandler{Catalog: d.Catalog, Rules: d.Rules, Log: d.Log}
	selHandler := &handlers.SelectionHandler{
		Catalog:  d.Catalog,
		Selector: d.Selector,
		Weights:  d.Weights,
		Metrics:  d.Metrics,
		Log:      d.Log,
	}
	permitHandler := &handlers.PermitHandler{Calculator: d.Calculator, Metrics: d.Metrics, Log: d.Log}
	planCache := d.Cache
	reference, err := services.ReferenceDigest(d.Catalog, d.Rules)
	if err != nil {
		d.Log.Warn("plan cache disabled", zap.Error(err))
		planCache = nil
	}
	planHandler := &handlers.PlanHandler{
		Catalog:   d.Catalog,
		Planner:   d.Planner,
		Weights:   d.Weights,
		Reference: reference,
		Cache:     planCache,
		CacheTTL:  d.CacheTTL,
		Metrics:   d.Metrics,
		Log:       d.Log,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/trucks", refHandler.ListTrucks)
	mux.HandleFunc("/trucks/{id}", refHandler.GetTruck)
	mux.HandleFunc("/jurisdictions", refHandler.ListJurisdictions)
	mux.HandleFunc("/selections", selHandler.Select)
	mux.HandleFunc("/permits", permitHandler.Permits)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.Handle("/metrics", d.Metrics.Handler())

	return requestIDMiddleware(loggingMiddleware(d.Log, d.Metrics, mux))
}
