package services

import (
	"load-planner-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func flatbed(id string, length, width, height, payload, costPerMile float64) domain.TruckType {
	return domain.TruckType{
		ID:              id,
		Name:            id,
		Category:        domain.CategoryFlatbed,
		DeckLength:      length,
		DeckWidth:       width,
		DeckHeight:      height,
		MaxPayload:      payload,
		Unloaded:        domain.Envelope{Length: 840, Width: 102, Height: 60, Weight: 32000},
		AxleCount:       5,
		AxleWeightLimit: 20000,
		BaseCostPerMile: costPerMile,
	}
}

func box(id string, l, w, h, weight float64, qty int) domain.CargoItem {
	return domain.CargoItem{
		ID:       id,
		Length:   l,
		Width:    w,
		Height:   h,
		Weight:   weight,
		Quantity: qty,
		Geometry: domain.GeometryBox,
	}
}

func expand(t *testing.T, items ...domain.CargoItem) []domain.CargoUnit {
	t.Helper()
	units, err := domain.ExpandManifest(items)
	require.NoError(t, err)
	return units
}

// Generous limits in every dimension except the ones a test overrides.
func legal() domain.Limits {
	return domain.Limits{Length: 900, Width: 102, Height: 200, Weight: 200000}
}

func ruleTable(t *testing.T, records ...domain.StateRules) *PermitRuleTable {
	t.Helper()
	table, err := NewPermitRuleTable(records)
	require.NoError(t, err)
	return table
}
