package uow

import (
	"context"

	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// Runner combines entity locks, a transaction scope and post-commit event
// publishing. Events returned by a unit of work are published only after
// its transaction commits.
type Runner struct {
	scope     Scope
	locker    shared.Locker
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewRunner creates a Runner. publisher may be nil.
func NewRunner(scope Scope, locker shared.Locker, publisher shared.EventPublisher, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{scope: scope, locker: locker, publisher: publisher, logger: logger}
}

// Lock obtains keys in the given order
func (r *Runner) Lock(ctx context.Context, keys ...string) (shared.Unlock, error) {
	unlock, err := shared.LockAll(ctx, r.locker, keys...)
	if err != nil {
		r.logger.Warn("Lock not obtained", zap.Strings("keys", keys), zap.Error(err))
		return nil, err
	}
	return unlock, nil
}

// Write holds keys for the duration of one transaction running fn, then
// publishes the events fn returned.
func (r *Runner) Write(ctx context.Context, keys []string, fn func(ctx context.Context, repos Repositories) ([]shared.DomainEvent, error)) error {
	unlock, err := r.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	var events []shared.DomainEvent
	if err := r.scope.Execute(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		events, err = fn(ctx, repos)
		return err
	}); err != nil {
		return err
	}
	r.Publish(ctx, events)
	return nil
}

// Read runs fn in its own read-only transaction so every query it makes
// sees one consistent snapshot
func (r *Runner) Read(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return r.scope.ExecuteRead(ctx, fn)
}

// Publish hands committed events to the publisher. Delivery failures are
// logged; the write they describe has already committed.
func (r *Runner) Publish(ctx context.Context, events []shared.DomainEvent) {
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		r.logger.Error("Failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
