package ports

import (
	"context"
	"time"
)

// Optional response cache for planning requests. Planning is deterministic,
// so identical requests may be answered from a previous result.
type PlanCache interface {
	// Return the cached payload; found is false on a miss.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
