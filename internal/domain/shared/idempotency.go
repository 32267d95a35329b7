package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys so a replayed money movement
// (payment, sale) is rejected instead of applied twice.
type IdempotencyStore interface {
	// MarkProcessed claims the key for ttl. It returns false when the key
	// had already been claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release drops a claim, used when the guarded operation failed and may
	// be retried with the same key.
	Release(ctx context.Context, key string) error

	Close() error
}
