package services

import (
	"cmp"
	"context"
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/platform/obs"
	"slices"
	"strings"

	"go.uber.org/zap"
)

type plannerState string

const (
	statePlanning        plannerState = "PLANNING"
	stateTruckFound      plannerState = "TRUCK_FOUND"
	stateItemUnplaceable plannerState = "ITEM_UNPLACEABLE"
	stateDone            plannerState = "DONE"
)

// LoadPlanner partitions a manifest into truck loads and annotates each load
// with cost and, when a route is known, permits.
type LoadPlanner struct {
	selector *TruckSelector
	analyzer *FitAnalyzer
	permits  *PermitCalculator
	weights  ScoringWeights
	log      *zap.Logger
}

func NewLoadPlanner(
	selector *TruckSelector,
	permits *PermitCalculator,
	weights ScoringWeights,
	log *zap.Logger,
) *LoadPlanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoadPlanner{
		selector: selector,
		analyzer: selector.analyzer,
		permits:  permits,
		weights:  weights,
		log:      log,
	}
}

// Plan assigns every unit of the manifest to a truck load or reports it as
// unplaceable.
//
// The pool of units is kept sorted by volume, largest first. Each round ranks
// the candidates against the whole pool; when nothing carries it, the largest
// unit is dropped from the attempt and the rest retried until a subset fits.
// That subset becomes one load and the round restarts on what is left. Units
// no candidate can carry even alone are reported instead of loaded.
//
// A plan with unplaceable units is still a valid result. Errors are limited to
// invalid input, an unknown jurisdiction on the route, and cancellation, which
// returns no partial plan.
func (p *LoadPlanner) Plan(
	ctx context.Context,
	manifest []domain.CargoItem,
	candidates []domain.TruckType,
	route []domain.StateSegment,
) (_ *domain.LoadPlan, err error) {
	defer obs.Time(ctx, p.log, "planner.Plan")(&err)

	if err := p.weights.Validate(); err != nil {
		return nil, fmt.Errorf("plan loads: %w", err)
	}

	units, err := domain.ExpandManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("plan loads: %w", err)
	}

	if len(route) > 0 {
		if err := p.permits.ValidateRoute(route); err != nil {
			return nil, fmt.Errorf("plan loads: %w", err)
		}
	}

	pool := slices.Clone(units)
	slices.SortStableFunc(pool, func(a, b domain.CargoUnit) int {
		if c := cmp.Compare(b.Volume(), a.Volume()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	byID := slices.Clone(candidates)
	slices.SortFunc(byID, func(a, b domain.TruckType) int { return strings.Compare(a.ID, b.ID) })

	plan := &domain.LoadPlan{
		Loads:       []domain.TruckLoad{},
		Permits:     []domain.PermitRequirement{},
		Unplaceable: []domain.UnplacedUnit{},
		CostBasis:   domain.CostBasisPerMile,
	}

	// Whether a unit fits some candidate on its own depends only on its item.
	alone := map[string]domain.FitReason{}
	placeableAlone := func(u domain.CargoUnit) (domain.FitReason, error) {
		if reason, ok := alone[u.ItemID]; ok {
			return reason, nil
		}
		sel, err := p.selector.SelectUnits(ctx, []domain.CargoUnit{u}, candidates, p.weights)
		if err != nil {
			return domain.ReasonNone, err
		}
		reason := domain.ReasonNone
		if len(sel) == 0 {
			reason = domain.ReasonNoEquipment
			if len(byID) > 0 {
				reason = p.analyzer.Analyze([]domain.CargoUnit{u}, byID[0]).Reason
			}
		}
		alone[u.ItemID] = reason
		return reason, nil
	}

	var (
		state    = statePlanning
		found    RankedTruck
		attempt  []domain.CargoUnit
		rejected domain.CargoUnit
		reason   domain.FitReason
	)

	for state != stateDone {
		switch state {
		case statePlanning:
			if len(pool) == 0 {
				state = stateDone
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, cancelled("plan loads", err)
			}

			state = stateTruckFound
			for _, u := range pool {
				r, err := placeableAlone(u)
				if err != nil {
					return nil, fmt.Errorf("plan loads: %w", err)
				}
				if r != domain.ReasonNone {
					rejected, reason = u, r
					state = stateItemUnplaceable
					break
				}
			}
			if state == stateItemUnplaceable {
				continue
			}

			found, attempt, err = p.largestFittingSuffix(ctx, pool, candidates)
			if err != nil {
				return nil, fmt.Errorf("plan loads: %w", err)
			}

		case stateItemUnplaceable:
			// Every unit of the same item shares the problem.
			kept := pool[:0:0]
			for _, u := range pool {
				if u.ItemID == rejected.ItemID {
					plan.Unplaceable = append(plan.Unplaceable, domain.UnplacedUnit{
						UnitID: u.ID,
						ItemID: u.ItemID,
						Reason: reason,
					})
					continue
				}
				kept = append(kept, u)
			}
			p.log.Debug("planner transition",
				zap.String("state", string(stateItemUnplaceable)),
				zap.String("item_id", rejected.ItemID),
				zap.String("reason", string(reason)),
				zap.Int("remaining", len(kept)),
			)
			pool = kept
			state = statePlanning

		case stateTruckFound:
			plan.Loads = append(plan.Loads, domain.TruckLoad{
				Truck:    found.Truck,
				Units:    slices.Clone(attempt),
				Fit:      found.Fit,
				Envelope: found.Truck.LoadedEnvelope(found.Fit.Envelope),
				Permits:  []domain.PermitRequirement{},
			})
			// The attempt is always a suffix of the sorted pool.
			pool = pool[:len(pool)-len(attempt)]
			p.log.Debug("planner transition",
				zap.String("state", string(stateTruckFound)),
				zap.String("truck_id", found.Truck.ID),
				zap.Int("units", len(attempt)),
				zap.Int("remaining", len(pool)),
			)
			state = statePlanning
		}
	}

	if err := p.annotate(plan, route); err != nil {
		return nil, fmt.Errorf("plan loads: %w", err)
	}

	p.log.Debug("planner transition",
		zap.String("state", string(stateDone)),
		zap.Int("trucks", plan.TruckCount),
		zap.Int("unplaceable", len(plan.Unplaceable)),
	)
	return plan, nil
}

// largestFittingSuffix ranks trucks for the pool, dropping the largest unit
// after each miss. The pool must only hold units that fit some truck alone, so
// the search always ends with at least one unit.
func (p *LoadPlanner) largestFittingSuffix(
	ctx context.Context,
	pool []domain.CargoUnit,
	candidates []domain.TruckType,
) (RankedTruck, []domain.CargoUnit, error) {
	attempt := pool
	for len(attempt) > 0 {
		if err := ctx.Err(); err != nil {
			return RankedTruck{}, nil, cancelled("find load", err)
		}

		sel, err := p.selector.SelectUnits(ctx, attempt, candidates, p.weights)
		if err != nil {
			return RankedTruck{}, nil, fmt.Errorf("find load: %w", err)
		}
		if best, ok := sel.Best(); ok {
			return best, attempt, nil
		}
		attempt = attempt[1:]
	}
	return RankedTruck{}, nil, fmt.Errorf("find load: no candidate carries any remaining unit")
}

// annotate fills in permits, costs and plan-level totals.
func (p *LoadPlanner) annotate(plan *domain.LoadPlan, route []domain.StateSegment) error {
	miles := domain.TotalMiles(route)
	if len(route) > 0 {
		plan.CostBasis = domain.CostBasisRoute
	}

	perLoad := make([][]domain.PermitRequirement, 0, len(plan.Loads))
	for i := range plan.Loads {
		load := &plan.Loads[i]

		if len(route) > 0 {
			reqs, err := p.permits.ComputePermits(load.Envelope, route)
			if err != nil {
				return fmt.Errorf("annotate load %d: %w", i+1, err)
			}
			load.Permits = reqs
			for _, r := range reqs {
				load.PermitFees += r.EstimatedFee
			}
			load.Cost = load.Truck.BaseCostPerMile * miles
			perLoad = append(perLoad, reqs)
		} else {
			load.Cost = load.Truck.BaseCostPerMile
		}

		plan.TotalCost += load.Cost + load.PermitFees
		plan.TotalPermitFee += load.PermitFees
	}

	plan.TruckCount = len(plan.Loads)
	if len(route) > 0 {
		plan.Permits = MergePermits(route, perLoad...)
	}
	return nil
}
