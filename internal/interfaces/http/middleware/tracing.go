package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts the server span. The actor is only known after
// authentication, so TraceActor tags it later in the chain.
func Tracing(serviceName string, enabled bool, opts ...otelgin.Option) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName, opts...)
}

// TraceRequestID tags the active span with the request id. It runs inside
// otelgin so the span exists.
func TraceRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			span.SetAttributes(attribute.String("request_id", GetRequestID(c)))
		}
		c.Next()
	}
}

// TraceActor tags the active span with the authenticated user and role
func TraceActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if actor := GetActor(c); span.IsRecording() && !actor.IsZero() {
			span.SetAttributes(
				attribute.String("user_id", actor.UserID.String()),
				attribute.String("user_role", actor.Role.String()),
			)
		}
		c.Next()
	}
}
