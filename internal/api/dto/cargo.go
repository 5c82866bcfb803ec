package dto

import (
	"load-planner-service/internal/domain"
	"strings"
)

type CargoItemRequest struct {
	ID        string  `json:"id" validate:"required"`
	Length    float64 `json:"length" validate:"gt=0"`
	Width     float64 `json:"width" validate:"gt=0"`
	Height    float64 `json:"height" validate:"gt=0"`
	Weight    float64 `json:"weight" validate:"gt=0"`
	Quantity  int     `json:"quantity" validate:"gte=0,lte=10000"`
	Geometry  string  `json:"geometry" validate:"omitempty,oneof=BOX CYLINDER IRREGULAR box cylinder irregular"`
	Stackable bool    `json:"stackable"`
	Fragile   bool    `json:"fragile"`
}

// Quantity defaults to 1 and geometry to BOX.
func (c CargoItemRequest) ToDomain() domain.CargoItem {
	qty := c.Quantity
	if qty == 0 {
		qty = 1
	}
	geometry := domain.Geometry(strings.ToUpper(c.Geometry))
	if geometry == "" {
		geometry = domain.GeometryBox
	}
	return domain.CargoItem{
		ID:        strings.TrimSpace(c.ID),
		Length:    c.Length,
		Width:     c.Width,
		Height:    c.Height,
		Weight:    c.Weight,
		Quantity:  qty,
		Geometry:  geometry,
		Stackable: c.Stackable,
		Fragile:   c.Fragile,
	}
}

func CargoItems(items []CargoItemRequest) []domain.CargoItem {
	out := make([]domain.CargoItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.ToDomain())
	}
	return out
}

type StateSegmentRequest struct {
	StateCode string  `json:"state_code" validate:"required"`
	Miles     float64 `json:"miles" validate:"gte=0"`
}

func Route(segments []StateSegmentRequest) []domain.StateSegment {
	out := make([]domain.StateSegment, 0, len(segments))
	for _, s := range segments {
		out = append(out, domain.StateSegment{StateCode: s.StateCode, Miles: s.Miles})
	}
	return out
}

// Narrows the candidate trucks. Without truck ids every catalog entry
// matching the category is a candidate.
type CandidateFilter struct {
	TruckIDs []string `json:"truck_ids" validate:"omitempty,dive,required"`
	Category string   `json:"category"`
}
