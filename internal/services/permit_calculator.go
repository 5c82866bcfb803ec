package services

import (
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
)

// PermitCalculator derives per-state oversize/overweight permits and escorts
// for a loaded envelope travelling a route.
type PermitCalculator struct {
	rules ports.PermitRuleTable
}

func NewPermitCalculator(rules ports.PermitRuleTable) *PermitCalculator {
	return &PermitCalculator{rules: rules}
}

// ValidateRoute checks segment shape and that every state is known.
// Planning calls it before any packing so an unknown state stops the request early.
func (c *PermitCalculator) ValidateRoute(route []domain.StateSegment) error {
	if err := domain.ValidateSegments(route); err != nil {
		return fmt.Errorf("validate route: %w", err)
	}
	for _, seg := range route {
		if _, err := c.rules.Lookup(seg.StateCode); err != nil {
			return fmt.Errorf("validate route: %w", err)
		}
	}
	return nil
}

// ComputePermits evaluates each state of the route independently, in route
// order. States the envelope is legal in produce no entry. An unknown state
// aborts the whole computation: a permit is never skipped.
func (c *PermitCalculator) ComputePermits(
	envelope domain.Envelope,
	route []domain.StateSegment,
) ([]domain.PermitRequirement, error) {
	if err := domain.ValidateSegments(route); err != nil {
		return nil, fmt.Errorf("compute permits: %w", err)
	}

	out := make([]domain.PermitRequirement, 0, len(route))
	for _, seg := range route {
		rules, err := c.rules.Lookup(seg.StateCode)
		if err != nil {
			return nil, fmt.Errorf("compute permits: %w", err)
		}

		req, required := evaluateState(envelope, rules)
		if !required {
			continue
		}
		req.Miles = seg.Miles
		out = append(out, req)
	}

	return out, nil
}

// evaluateState applies one state's rules. Each dimension is checked on its
// own; escorts take the maximum over every band the excess reaches and
// restrictions accumulate, so a larger excess never drops a requirement.
func evaluateState(envelope domain.Envelope, rules domain.StateRules) (domain.PermitRequirement, bool) {
	req := domain.PermitRequirement{
		StateCode:    rules.Code,
		Permits:      []domain.PermitType{},
		Restrictions: []domain.Restriction{},
	}

	for _, dim := range domain.Dimensions {
		excess := envelope.Get(dim) - rules.Legal.Get(dim)
		if excess <= epsilon {
			continue
		}

		permit := domain.PermitFor(dim)
		req.Permits = append(req.Permits, permit)
		req.EstimatedFee += rules.Fees[permit]

		for _, band := range rules.Bands {
			if band.Dimension != dim || excess+epsilon < band.Over {
				continue
			}
			req.Escorts = max(req.Escorts, band.Escorts)
			req.Restrictions = domain.UnionRestrictions(req.Restrictions, band.Restrictions)
		}
	}

	if len(req.Permits) == 0 {
		return domain.PermitRequirement{}, false
	}

	req.Escorts = min(req.Escorts, domain.MaxEscorts)
	domain.SortPermits(req.Permits)
	return req, true
}

// MergePermits folds several loads' requirements into one entry per state,
// ordered by first appearance on the route. Permit types and restrictions are
// unioned, escorts take the maximum, fees add up and miles cover every
// segment of the route inside that state.
func MergePermits(route []domain.StateSegment, perLoad ...[]domain.PermitRequirement) []domain.PermitRequirement {
	merged := map[string]*domain.PermitRequirement{}
	for _, reqs := range perLoad {
		for _, r := range reqs {
			m, ok := merged[r.StateCode]
			if !ok {
				m = &domain.PermitRequirement{
					StateCode:    r.StateCode,
					Permits:      []domain.PermitType{},
					Restrictions: []domain.Restriction{},
				}
				merged[r.StateCode] = m
			}
			m.Permits = domain.UnionPermits(m.Permits, r.Permits)
			m.Restrictions = domain.UnionRestrictions(m.Restrictions, r.Restrictions)
			m.Escorts = max(m.Escorts, r.Escorts)
			m.EstimatedFee += r.EstimatedFee
		}
	}

	out := make([]domain.PermitRequirement, 0, len(merged))
	index := map[string]int{}
	for _, seg := range route {
		code := domain.NormalizeStateCode(seg.StateCode)
		if i, ok := index[code]; ok {
			out[i].Miles += seg.Miles
			continue
		}
		if m, ok := merged[code]; ok {
			m.Miles = seg.Miles
			index[code] = len(out)
			out = append(out, *m)
		}
	}
	return out
}
