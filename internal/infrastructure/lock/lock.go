// Package lock provides the shared.Locker backends: an in-process keyed
// mutex and a redis lease for multi-instance deployments.
package lock

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New builds the locker selected by cfg.Backend. rdb may be nil for the
// memory backend.
func New(cfg config.LockConfig, rdb redis.UniversalClient, logger *zap.Logger) shared.Locker {
	if cfg.Backend == "redis" && rdb != nil {
		return NewRedisLocker(rdb, RedisLockerConfig{
			TTL:           cfg.TTL,
			WaitTimeout:   cfg.WaitTimeout,
			RetryInterval: cfg.RetryInterval,
		}, logger)
	}
	return NewMemoryLocker(cfg.WaitTimeout)
}
