package shared

import (
	"context"

	"github.com/google/uuid"
)

// Locker provides mutual exclusion per entity key. Implementations must give
// up after a bounded wait and return an error of kind Busy.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// Unlock releases a lock obtained from a Locker
type Unlock func()

// Lock key namespaces
const (
	LockPurchaseOrder = "po"
	LockSupplier      = "supplier"
	LockProduct       = "product"
)

// LockKey builds the key for one entity
func LockKey(namespace string, id uuid.UUID) string {
	return namespace + ":" + id.String()
}

// LockAll obtains the given keys in order. On failure every lock obtained so
// far is released. Callers pass keys in a stable order to avoid deadlocks.
func LockAll(ctx context.Context, locker Locker, keys ...string) (Unlock, error) {
	unlocks := make([]Unlock, 0, len(keys))
	release := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, key := range keys {
		unlock, err := locker.Lock(ctx, key)
		if err != nil {
			release()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return release, nil
}
