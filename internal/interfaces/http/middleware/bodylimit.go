package middleware

import (
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects declared bodies over maxBytes up front and caps
// chunked ones while they are read. Zero or less disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	tooLarge := dto.NewHTTPError(shared.KindValidation, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			Abort(c, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
