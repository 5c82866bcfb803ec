package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler provides a minimal liveness check endpoint that also reports
// how much reference data was loaded.
type HealthHandler struct {
	Trucks int
	States int
	Log    *zap.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodGet) {
		return
	}

	res := map[string]any{"status": "ok", "truck_types": h.Trucks, "jurisdictions": h.States}
	writeJSON(w, r, h.Log, http.StatusOK, res)
}
