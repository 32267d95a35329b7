package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker shares locks across instances through redislock. A lease
// expires after ttl so a crashed holder cannot wedge a key.
type RedisLocker struct {
	client        *redislock.Client
	prefix        string
	ttl           time.Duration
	waitTimeout   time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// RedisLockerConfig configures a RedisLocker
type RedisLockerConfig struct {
	Prefix        string
	TTL           time.Duration
	WaitTimeout   time.Duration
	RetryInterval time.Duration
}

// NewRedisLocker creates a locker over an existing redis client
func NewRedisLocker(rdb redis.UniversalClient, cfg RedisLockerConfig, logger *zap.Logger) *RedisLocker {
	if cfg.Prefix == "" {
		cfg.Prefix = "backoffice:lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:        redislock.New(rdb),
		prefix:        cfg.Prefix,
		ttl:           cfg.TTL,
		waitTimeout:   cfg.WaitTimeout,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

// Lock implements shared.Locker
func (l *RedisLocker) Lock(ctx context.Context, key string) (shared.Unlock, error) {
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	lease, err := l.client.Obtain(ctx, l.prefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.retryInterval), l.maxRetries()),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained), errors.Is(err, context.DeadlineExceeded):
		l.logger.Warn("lock not obtained", zap.String("key", key), zap.Duration("wait", l.waitTimeout))
		return nil, busy(key)
	case err != nil:
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func() {
		// the request context may already be done, release on a fresh one
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (l *RedisLocker) maxRetries() int {
	if l.waitTimeout <= 0 {
		return 0
	}
	return int(l.waitTimeout / l.retryInterval)
}

var _ shared.Locker = (*RedisLocker)(nil)
