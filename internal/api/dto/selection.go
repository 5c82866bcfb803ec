package dto

import (
	"load-planner-service/internal/domain"
	"load-planner-service/internal/services"
)

type WeightsRequest struct {
	Utilization float64 `json:"utilization" validate:"gte=0"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	Permit      float64 `json:"permit" validate:"gte=0"`
}

type SelectionRequest struct {
	Items []CargoItemRequest `json:"items" validate:"required,min=1,dive"`
	CandidateFilter
	Weights *WeightsRequest `json:"weights"`
}

type UtilizationResponse struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Volume float64 `json:"volume"`
	Weight float64 `json:"weight"`
}

func Utilization(fit domain.FitResult) UtilizationResponse {
	return UtilizationResponse{
		Length: fit.LengthUtilization,
		Width:  fit.WidthUtilization,
		Height: fit.HeightUtilization,
		Volume: fit.VolumeUtilization,
		Weight: fit.WeightUtilization,
	}
}

type RankedTruckResponse struct {
	Rank            int                  `json:"rank"`
	TruckID         string               `json:"truck_id"`
	Name            string               `json:"name"`
	Category        domain.TruckCategory `json:"category"`
	Score           float64              `json:"score"`
	BaseCostPerMile float64              `json:"base_cost_per_mile"`
	Utilization     UtilizationResponse  `json:"utilization"`
	CargoEnvelope   domain.Envelope      `json:"cargo_envelope"`
	LoadedEnvelope  domain.Envelope      `json:"loaded_envelope"`
	Placements      []domain.Placement   `json:"placements"`
	Flagged         []domain.FlaggedUnit `json:"flagged"`
}

type SelectionResponse struct {
	Trucks []RankedTruckResponse `json:"trucks"`
}

// NewSelectionResponse numbers the ranking from 1 in selection order.
func NewSelectionResponse(ranked services.RankedSelection) SelectionResponse {
	res := SelectionResponse{Trucks: make([]RankedTruckResponse, 0, len(ranked))}
	for i, rt := range ranked {
		res.Trucks = append(res.Trucks, RankedTruckResponse{
			Rank:            i + 1,
			TruckID:         rt.Truck.ID,
			Name:            rt.Truck.Name,
			Category:        rt.Truck.Category,
			Score:           rt.Score,
			BaseCostPerMile: rt.Truck.BaseCostPerMile,
			Utilization:     Utilization(rt.Fit),
			CargoEnvelope:   rt.Fit.Envelope,
			LoadedEnvelope:  rt.Truck.LoadedEnvelope(rt.Fit.Envelope),
			Placements:      rt.Fit.Placements,
			Flagged:         rt.Fit.Flagged,
		})
	}
	return res
}
