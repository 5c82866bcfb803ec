package services

import (
	"context"
	"errors"
	"load-planner-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelector(t *testing.T, workers int) *TruckSelector {
	t.Helper()
	return NewTruckSelector(NewFitAnalyzer(), ruleTable(t, domain.StateRules{Code: "TX", Legal: legal()}), workers)
}

func truckIDs(sel RankedSelection) []string {
	ids := make([]string, 0, len(sel))
	for _, r := range sel {
		ids = append(ids, r.Truck.ID)
	}
	return ids
}

func TestSelectRanksTighterCheaperTruckFirst(t *testing.T) {
	candidates := []domain.TruckType{
		flatbed("big", 576, 102, 102, 80000, 5),
		flatbed("fit", 480, 96, 108, 48000, 3),
		flatbed("tiny", 90, 96, 108, 48000, 1),
	}

	sel, err := newSelector(t, 2).Select(context.Background(),
		[]domain.CargoItem{box("crate", 100, 48, 48, 10000, 3)}, candidates, DefaultScoringWeights())
	require.NoError(t, err)

	assert.Equal(t, []string{"fit", "big"}, truckIDs(sel))
	assert.Less(t, sel[0].Score, sel[1].Score)
	for _, r := range sel {
		assert.True(t, r.Fit.Feasible)
	}

	best, ok := sel.Best()
	require.True(t, ok)
	assert.Equal(t, "fit", best.Truck.ID)
}

func TestSelectTieBreaks(t *testing.T) {
	items := []domain.CargoItem{box("crate", 100, 48, 48, 10000, 1)}

	twins := []domain.TruckType{
		flatbed("b-twin", 480, 96, 108, 48000, 3),
		flatbed("a-twin", 480, 96, 108, 48000, 3),
	}
	sel, err := newSelector(t, 0).Select(context.Background(), items, twins, DefaultScoringWeights())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-twin", "b-twin"}, truckIDs(sel))

	// With cost out of the score, equal scores fall back to base cost.
	priced := []domain.TruckType{
		flatbed("x", 480, 96, 108, 48000, 4),
		flatbed("y", 480, 96, 108, 48000, 2),
	}
	sel, err = newSelector(t, 1).Select(context.Background(), items, priced, ScoringWeights{Utilization: 1})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, sel[0].Score, sel[1].Score)
	assert.Equal(t, []string{"y", "x"}, truckIDs(sel))
}

func TestSelectPenalizesPermitBurden(t *testing.T) {
	selector := NewTruckSelector(NewFitAnalyzer(), ruleTable(t, domain.StateRules{
		Code:  "TX",
		Legal: domain.Limits{Length: 900, Width: 102, Height: 162, Weight: 80000},
	}), 0)

	// Identical decks; the tall rig pushes the loaded height over every legal limit.
	low := flatbed("low", 480, 96, 108, 48000, 3)
	tall := flatbed("tall", 480, 96, 108, 48000, 3)
	tall.Unloaded.Height = 130

	sel, err := selector.Select(context.Background(),
		[]domain.CargoItem{box("crate", 100, 48, 48, 10000, 1)},
		[]domain.TruckType{tall, low}, ScoringWeights{Permit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "tall"}, truckIDs(sel))
	assert.Zero(t, sel[0].Score)
	assert.Greater(t, sel[1].Score, 0.0)
}

func TestSelectNothingFitsIsEmpty(t *testing.T) {
	selector := newSelector(t, 4)
	items := []domain.CargoItem{box("tank", 200, 110, 110, 5000, 1)}

	sel, err := selector.Select(context.Background(), items,
		[]domain.TruckType{flatbed("fb", 480, 96, 108, 48000, 3)}, DefaultScoringWeights())
	require.NoError(t, err)
	assert.Empty(t, sel)
	_, ok := sel.Best()
	assert.False(t, ok)

	sel, err = selector.Select(context.Background(), items, nil, DefaultScoringWeights())
	require.NoError(t, err)
	assert.Empty(t, sel)
}

func TestSelectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSelector(t, 1).Select(ctx,
		[]domain.CargoItem{box("crate", 100, 48, 48, 10000, 1)},
		[]domain.TruckType{flatbed("a", 480, 96, 108, 48000, 3), flatbed("b", 480, 96, 108, 48000, 3)},
		DefaultScoringWeights())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSelectRejectsBadInput(t *testing.T) {
	selector := newSelector(t, 1)
	trucks := []domain.TruckType{flatbed("fb", 480, 96, 108, 48000, 3)}

	_, err := selector.Select(context.Background(),
		[]domain.CargoItem{box("crate", 100, 48, 48, 10000, 1)}, trucks, ScoringWeights{Cost: -1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrCancelled))

	_, err = selector.Select(context.Background(),
		[]domain.CargoItem{box("crate", 0, 48, 48, 10000, 1)}, trucks, DefaultScoringWeights())
	assert.True(t, errors.Is(err, domain.ErrInvalidCargo))
}
