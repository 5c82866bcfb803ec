package ports

import "load-planner-service/internal/domain"

// Narrows a catalog listing. Zero values match everything.
type TruckFilter struct {
	Category      domain.TruckCategory
	MinPayload    float64
	MinDeckLength float64
}

// Contract for looking up truck types.
type TruckCatalog interface {
	// Return matching truck types ordered by id. Never fails; no match is an empty slice.
	ListTypes(filter TruckFilter) []domain.TruckType
	// Return one truck type, or an error wrapping domain.ErrNotFound.
	GetByID(id string) (domain.TruckType, error)
}
