package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys of work already started so that a redelivered
// trigger is not acted on twice
type IdempotencyStore interface {
	// MarkProcessed records key for ttl.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so the same trigger can be processed again.
	// Releasing an unknown key is not an error.
	Release(ctx context.Context, key string) error

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig holds configuration for duplicate suppression
type IdempotencyConfig struct {
	// TTL is how long a key is remembered; after it the same trigger is processed again
	TTL time.Duration

	// Enabled determines whether keys are checked at all
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
