package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpInstruments struct {
	requests *telemetry.Counter
	latency  *telemetry.Histogram
	size     *telemetry.Histogram
	inFlight metric.Int64UpDownCounter
}

func buildHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in   httpInstruments
		errs []error
		err  error
	)
	in.requests, err = telemetry.NewCounter(meter, "http_server_request_total", "Requests served, by route and status", "{request}")
	errs = append(errs, err)
	in.latency, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_request_duration_seconds", Description: "Request latency", Unit: "s", Boundaries: telemetry.DurationBuckets,
	})
	errs = append(errs, err)
	in.size, err = telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "http_server_response_size_bytes", Description: "Response body size", Unit: "By", Boundaries: telemetry.SizeBuckets,
	})
	errs = append(errs, err)
	in.inFlight, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Requests currently being served"), metric.WithUnit("{request}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *httpInstruments) observe(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	route := c.FullPath()
	if route == "" {
		route = "unknown"
	}
	byRoute := []attribute.KeyValue{
		attribute.String("http.method", c.Request.Method),
		attribute.String("http.route", route),
	}
	byOutcome := append([]attribute.KeyValue{attribute.String("http.status_code", strconv.Itoa(c.Writer.Status()))}, byRoute...)
	if code := c.GetString("error_code"); code != "" {
		byOutcome = append(byOutcome, attribute.String("error_code", code))
	}

	in.requests.Inc(ctx, byOutcome...)
	in.latency.RecordDuration(ctx, elapsed, byRoute...)
	if n := c.Writer.Size(); n > 0 {
		in.size.Record(ctx, float64(n), byRoute...)
	}
}

// HTTPMetrics counts requests and records latency and body size per route
// pattern. Without a usable meter it only calls the next handler.
func HTTPMetrics(meter metric.Meter) gin.HandlerFunc {
	passThrough := func(c *gin.Context) { c.Next() }
	if meter == nil {
		return passThrough
	}
	in, err := buildHTTPInstruments(meter)
	if err != nil {
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		in.inFlight.Add(ctx, 1)
		defer in.inFlight.Add(ctx, -1)

		c.Next()
		in.observe(ctx, c, time.Since(start))
	}
}
