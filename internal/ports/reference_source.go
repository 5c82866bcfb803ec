package ports

import (
	"context"
	"load-planner-service/internal/domain"
)

// Port: a read-only boundary for the reference data the engine plans against.
// Implementations may read a static file or query the application database;
// the engine never writes back.
type ReferenceSource interface {
	// Retrieve every truck/trailer configuration.
	ListTruckTypes(ctx context.Context) ([]domain.TruckType, error)
	// Retrieve legal limits and escort bands for every known jurisdiction.
	ListStateRules(ctx context.Context) ([]domain.StateRules, error)
}
