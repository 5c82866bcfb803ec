package ports

import "load-planner-service/internal/domain"

// Contract for per-state legal limits and permit rules.
type PermitRuleTable interface {
	// Return the rules for a state, or an error wrapping domain.ErrUnknownJurisdiction.
	Lookup(code string) (domain.StateRules, error)
	// Return the per-dimension maximum legal limit over all states.
	// ok is false when the table is empty.
	MostPermissive() (limits domain.Limits, ok bool)
	// Return every known state code, sorted.
	Codes() []string
}
