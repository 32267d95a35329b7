package cache

import (
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore picks the store named by cfg.Backend. When redis is
// requested but no client is available it falls back to memory and says so.
func NewIdempotencyStore(cfg config.IdempotencyConfig, rdb redis.UniversalClient, logger *zap.Logger) shared.IdempotencyStore {
	if cfg.Backend == "redis" {
		if rdb != nil {
			return NewRedisIdempotencyStore(rdb, "")
		}
		logger.Warn("redis idempotency store requested without a redis client, using memory")
	}
	return NewInMemoryIdempotencyStore(0)
}
