package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// DurationBuckets are request latency boundaries in seconds.
	DurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	// SizeBuckets are response body boundaries in bytes.
	SizeBuckets = []float64{100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000}
)

// Counter counts things that only go up: requests, transitions, payments.
type Counter struct {
	inner metric.Int64Counter
}

func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	inner, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("counter %q: %w", name, err)
	}
	return &Counter{inner: inner}, nil
}

func (c *Counter) Add(ctx context.Context, n int64, attrs ...attribute.KeyValue) {
	c.inner.Add(ctx, n, metric.WithAttributes(attrs...))
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.inner.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// HistogramOpts names a histogram. Boundaries may be nil for the SDK defaults.
type HistogramOpts struct {
	Name        string
	Description string
	Unit        string
	Boundaries  []float64
}

func (o HistogramOpts) options() []metric.Float64HistogramOption {
	out := []metric.Float64HistogramOption{metric.WithDescription(o.Description), metric.WithUnit(o.Unit)}
	if len(o.Boundaries) != 0 {
		out = append(out, metric.WithExplicitBucketBoundaries(o.Boundaries...))
	}
	return out
}

// Histogram tracks the distribution of amounts, latencies and sizes.
type Histogram struct {
	inner metric.Float64Histogram
}

func NewHistogram(meter metric.Meter, opts HistogramOpts) (*Histogram, error) {
	inner, err := meter.Float64Histogram(opts.Name, opts.options()...)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", opts.Name, err)
	}
	return &Histogram{inner: inner}, nil
}

func (h *Histogram) Record(ctx context.Context, v float64, attrs ...attribute.KeyValue) {
	h.inner.Record(ctx, v, metric.WithAttributes(attrs...))
}

// RecordDuration records d as seconds.
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.Record(ctx, d.Seconds(), attrs...)
}
