package services

import (
	"fmt"
	"load-planner-service/internal/domain"
	"load-planner-service/internal/ports"
	"maps"
	"slices"
)

// PermitRuleTable holds legal limits and escort bands keyed by state code.
type PermitRuleTable struct {
	rules      map[string]domain.StateRules
	permissive domain.Limits
}

var _ ports.PermitRuleTable = (*PermitRuleTable)(nil)

// NewPermitRuleTable validates each record, normalizes state codes and
// sorts escort bands ascending.
func NewPermitRuleTable(records []domain.StateRules) (*PermitRuleTable, error) {
	t := &PermitRuleTable{rules: make(map[string]domain.StateRules, len(records))}

	for _, r := range records {
		r.Bands = slices.Clone(r.Bands)
		r.Fees = maps.Clone(r.Fees)
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("new permit rule table: %w", err)
		}
		if _, ok := t.rules[r.Code]; ok {
			return nil, fmt.Errorf("new permit rule table: duplicate state code %q", r.Code)
		}
		t.rules[r.Code] = r
		t.permissive = t.permissive.Max(r.Legal)
	}

	return t, nil
}

func (t *PermitRuleTable) Lookup(code string) (domain.StateRules, error) {
	r, ok := t.rules[domain.NormalizeStateCode(code)]
	if !ok {
		return domain.StateRules{}, fmt.Errorf("lookup state rules %q: %w", code, domain.ErrUnknownJurisdiction)
	}
	return r, nil
}

func (t *PermitRuleTable) MostPermissive() (domain.Limits, bool) {
	if len(t.rules) == 0 {
		return domain.Limits{}, false
	}
	return t.permissive, true
}

// Codes returns every known state code in sorted order.
func (t *PermitRuleTable) Codes() []string {
	return slices.Sorted(maps.Keys(t.rules))
}
