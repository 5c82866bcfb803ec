package handlers

import (
	"fmt"
	"load-planner-service/internal/api/dto"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ReferenceHandler exposes the truck catalog and the known jurisdictions.
type ReferenceHandler struct {
	Catalog ports.TruckCatalog
	Rules   ports.PermitRuleTable
	Log     *zap.Logger
}

// ListTrucks serves GET /trucks?category=&min_payload=&min_deck_length=.
func (h *ReferenceHandler) ListTrucks(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	filter := ports.TruckFilter{Category: domain.TruckCategory(strings.ToUpper(strings.TrimSpace(q.Get("category"))))}

	var err error
	if filter.MinPayload, err = floatParam(q.Get("min_payload")); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "min_payload must be a non-negative number")
		return
	}
	if filter.MinDeckLength, err = floatParam(q.Get("min_deck_length")); err != nil {
		writeError(w, r, h.Log, http.StatusBadRequest, "min_deck_length must be a non-negative number")
		return
	}

	writeJSON(w, r, h.Log, http.StatusOK, dto.ListTrucksResponse{Trucks: h.Catalog.ListTypes(filter)})
}

// GetTruck serves GET /trucks/{id}.
func (h *ReferenceHandler) GetTruck(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodGet) {
		return
	}

	truck, err := h.Catalog.GetByID(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Log, err)
		return
	}
	writeJSON(w, r, h.Log, http.StatusOK, truck)
}

// ListJurisdictions serves GET /jurisdictions.
func (h *ReferenceHandler) ListJurisdictions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Log, http.MethodGet) {
		return
	}

	codes := h.Rules.Codes()
	res := dto.ListJurisdictionsResponse{Jurisdictions: make([]dto.JurisdictionResponse, 0, len(codes))}
	for _, code := range codes {
		rules, err := h.Rules.Lookup(code)
		if err != nil {
			writeServiceError(w, r, h.Log, err)
			return
		}
		res.Jurisdictions = append(res.Jurisdictions, dto.JurisdictionResponse{
			Code:  rules.Code,
			Name:  rules.Name,
			Legal: rules.Legal,
		})
	}
	writeJSON(w, r, h.Log, http.StatusOK, res)
}

func floatParam(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}
