package middleware

import (
	"net/http"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader names the client supplied replay key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// Idempotency rejects a replayed request that carries an Idempotency-Key
// already seen for the same actor and route. The claim is released when
// the request fails so the client may retry with the same key. Requests
// without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			Abort(c, http.StatusBadRequest, dto.NewHTTPError(shared.KindValidation, dto.ErrCodeValidation,
				"Idempotency-Key is too long"))
			return
		}

		scoped := GetActor(c).UserID.String() + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err), zap.String("request_id", GetRequestID(c)))
			Abort(c, http.StatusServiceUnavailable, dto.NewHTTPError(shared.KindBusy, dto.ErrCodeIdempotencyFailed,
				"Request deduplication is temporarily unavailable"))
			return
		}
		if !fresh {
			Abort(c, http.StatusConflict, dto.NewHTTPError(shared.KindConflict, dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed"))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
