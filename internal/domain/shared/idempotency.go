package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys that were already handled so a
// retried payment or discharge does not apply twice.
type IdempotencyStore interface {
	// MarkProcessed records a key with a TTL. It reports true when the key
	// was new and false when a previous request already claimed it.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a key was already recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate-request detection.
type IdempotencyConfig struct {
	// TTL bounds how long a processed key blocks replays. Once it expires
	// the same key is accepted again.
	TTL time.Duration

	Enabled bool
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
