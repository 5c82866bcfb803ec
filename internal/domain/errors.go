package domain

import "errors"

var (
	// ErrNotFound is returned when a truck type id is not in the catalog.
	ErrNotFound = errors.New("not found")

	// ErrUnknownJurisdiction blocks permit computation for a state the rule table
	// does not know. It is never downgraded to an empty result.
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

	ErrCancelled    = errors.New("cancelled")
	ErrInvalidCargo = errors.New("invalid cargo item")
	ErrInvalidRoute = errors.New("invalid route")
)
