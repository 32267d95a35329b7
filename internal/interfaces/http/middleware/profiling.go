package middleware

import (
	"context"
	"strings"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches pprof labels (route, method, resource and role) to the
// request so Pyroscope profiles can be sliced by endpoint. Place it after
// JWTAuth so the role is known.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		labels := []string{
			"route", route,
			"method", c.Request.Method,
			"resource", resourceOf(route),
		}
		if actor := GetActor(c); !actor.IsZero() {
			labels = append(labels, "role", actor.Role.String())
		}
		telemetry.DoLabeled(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		}, labels...)
	}
}

// resourceOf returns the first route segment after the version:
// "/api/v1/po/:id/receive" gives "po"
func resourceOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
