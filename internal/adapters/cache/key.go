package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"
)

// Key derives a cache key from an operation name and its request. The request
// is JSON encoded, so struct field order fixes the byte layout; map keys are
// sorted by encoding/json.
func Key(op string, request any) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("cache key %s: %w", op, err)
	}

	h := blake3.New()
	_, _ = h.Write([]byte(op))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(raw)

	return op + ":" + hex.EncodeToString(h.Sum(nil)), nil
}
