package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ScoringWeights is operator policy for trading utilization against cost and
// permit burden. Lower scores rank higher.
type ScoringWeights struct {
	Utilization float64 `json:"utilization" mapstructure:"utilization"`
	Cost        float64 `json:"cost" mapstructure:"cost"`
	Permit      float64 `json:"permit" mapstructure:"permit"`
}

func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Utilization: 0.5, Cost: 0.3, Permit: 0.2}
}

func (w ScoringWeights) Validate() error {
	if !domain.NonNegative(w.Utilization) || !domain.NonNegative(w.Cost) || !domain.NonNegative(w.Permit) {
		return fmt.Errorf("scoring weights must not be negative (got %+v)", w)
	}
	return nil
}

// One feasible truck with its fit and score.
type RankedTruck struct {
	Truck domain.TruckType `json:"truck"`
	Fit   domain.FitResult `json:"fit"`
	Score float64          `json:"score"`
}

// Feasible trucks ordered best first.
type RankedSelection []RankedTruck

// Best returns the top-ranked truck; ok is false when nothing fits.
func (s RankedSelection) Best() (RankedTruck, bool) {
	if len(s) == 0 {
		return RankedTruck{}, false
	}
	return s[0], true
}

// TruckSelector ranks candidate trucks for a cargo set.
type TruckSelector struct {
	analyzer   *FitAnalyzer
	rules      ports.PermitRuleTable
	maxWorkers int
}

// NewTruckSelector builds a selector. maxWorkers caps concurrent fit analyses;
// zero or less means one worker per candidate truck.
func NewTruckSelector(analyzer *FitAnalyzer, rules ports.PermitRuleTable, maxWorkers int) *TruckSelector {
	return &TruckSelector{analyzer: analyzer, rules: rules, maxWorkers: maxWorkers}
}

// Select expands and validates items, then ranks candidates for the units.
func (s *TruckSelector) Select(
	ctx context.Context,
	items []domain.CargoItem,
	candidates []domain.TruckType,
	weights ScoringWeights,
) (RankedSelection, error) {
	units, err := domain.ExpandManifest(items)
	if err != nil {
		return nil, fmt.Errorf("select trucks: %w", err)
	}
	return s.SelectUnits(ctx, units, candidates, weights)
}

// SelectUnits runs the fit analysis for every candidate concurrently, drops
// infeasible trucks and orders the rest by score, then base cost, then id.
// No fitting truck is an empty selection, not an error; the only error is
// cancellation.
func (s *TruckSelector) SelectUnits(
	ctx context.Context,
	units []domain.CargoUnit,
	candidates []domain.TruckType,
	weights ScoringWeights,
) (RankedSelection, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("select trucks: %w", err)
	}
	if len(candidates) == 0 {
		return RankedSelection{}, nil
	}

	fits := make([]domain.FitResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	workers := len(candidates)
	if s.maxWorkers > 0 && s.maxWorkers < workers {
		workers = s.maxWorkers
	}
	g.SetLimit(workers)

	for i, truck := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine owns its slot; no ordering is needed here.
			fits[i] = s.analyzer.Analyze(units, truck)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cancelled("select trucks", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled("select trucks", err)
	}

	feasible := make(RankedSelection, 0, len(candidates))
	maxCost := 0.0
	for i, fit := range fits {
		if !fit.Feasible {
			continue
		}
		feasible = append(feasible, RankedTruck{Truck: candidates[i], Fit: fit})
		maxCost = max(maxCost, candidates[i].BaseCostPerMile)
	}

	limits, haveLimits := s.rules.MostPermissive()
	for i := range feasible {
		r := &feasible[i]

		utilization := max(r.Fit.VolumeUtilization, r.Fit.WeightUtilization) / 100
		normCost := 0.0
		if maxCost > 0 {
			normCost = r.Truck.BaseCostPerMile / maxCost
		}
		penalty := 0.0
		if haveLimits {
			penalty = permitPenalty(r.Truck.LoadedEnvelope(r.Fit.Envelope), limits)
		}

		r.Score = weights.Utilization*(1-utilization) + weights.Cost*normCost + weights.Permit*penalty
	}

	slices.SortStableFunc(feasible, func(a, b RankedTruck) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Truck.BaseCostPerMile, b.Truck.BaseCostPerMile); c != 0 {
			return c
		}
		return strings.Compare(a.Truck.ID, b.Truck.ID)
	})

	return feasible, nil
}

// permitPenalty is a route-independent proxy for permit burden: the relative
// excess of the loaded envelope over the loosest legal limit of any state,
// summed over dimensions.
func permitPenalty(envelope domain.Envelope, limits domain.Limits) float64 {
	penalty := 0.0
	for _, dim := range domain.Dimensions {
		limit := limits.Get(dim)
		if limit <= 0 {
			continue
		}
		if excess := envelope.Get(dim) - limit; excess > epsilon {
			penalty += excess / limit
		}
	}
	return penalty
}

func cancelled(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrCancelled, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
