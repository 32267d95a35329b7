package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation.
type DBConfig struct {
	Tracing         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
}

// DBInstrumentation records per-statement metrics, marks slow statements on
// their spans and exposes connection pool gauges.
type DBInstrumentation struct {
	config        DBConfig
	logger        *zap.Logger
	queryTotal    *Counter
	queryDuration *Histogram
	slowQueries   *Counter
}

type queryStartKey struct{}

// dbDurationBuckets cover fast primary-key lookups up to report scans.
var dbDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}

// InstrumentDB installs otelgorm (when tracing is on) plus the statement and
// pool metrics on db.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	in := &DBInstrumentation{config: cfg, logger: logger}
	var err error
	if in.queryTotal, err = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}"); err != nil {
		return nil, err
	}
	if in.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency",
		Unit:        "s",
		Boundaries:  dbDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if in.slowQueries, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the configured threshold", "{query}"); err != nil {
		return nil, err
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgres")}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	if err := in.registerCallbacks(db); err != nil {
		return nil, err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return nil, err
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.Tracing),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return in, nil
}

func (in *DBInstrumentation) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	register := []struct {
		op     string
		before gormCallback
		after  gormCallback
	}{
		{"create", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"query", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"row", cb.Row().Before("gorm:row"), cb.Row().After("gorm:row")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}
	for _, r := range register {
		op := r.op
		if err := r.before.Register("backoffice_metrics:before_"+op, markStart); err != nil {
			return err
		}
		if err := r.after.Register("backoffice_metrics:after_"+op, func(tx *gorm.DB) { in.observe(tx, op) }); err != nil {
			return err
		}
	}
	return nil
}

// gormCallback is the registration handle returned by gorm's Before/After.
type gormCallback interface {
	Register(name string, fn func(*gorm.DB)) error
}

func markStart(tx *gorm.DB) {
	if tx.Statement.Context != nil {
		tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (in *DBInstrumentation) observe(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)

	if op == "raw" || op == "row" {
		op = operationOf(tx.Statement.SQL.String())
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", op),
		attribute.String("db.table", tx.Statement.Table),
	}
	failed := tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)
	in.queryTotal.Inc(ctx, append(attrs, attribute.Bool("error", failed))...)
	in.queryDuration.RecordDuration(ctx, elapsed, attrs...)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
		if failed {
			span.SetStatus(codes.Error, tx.Error.Error())
			span.RecordError(tx.Error)
		}
	}

	if elapsed > in.config.SlowQueryThresh {
		in.slowQueries.Inc(ctx, attrs...)
		if span.IsRecording() {
			span.SetAttributes(attribute.Bool("db.slow_query", true))
			span.AddEvent("slow_query", trace.WithAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds())))
		}
		in.logger.Warn("Slow query",
			zap.String("operation", op),
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
		)
	}
}

func operationOf(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \n\t"); i > 0 {
		sql = sql[:i]
	}
	switch op := strings.ToLower(sql); op {
	case "select", "insert", "update", "delete":
		return op
	case "with":
		return "select"
	}
	return "other"
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(conns, int64(s.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(conns, int64(s.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(maxConns, int64(s.MaxOpenConnections))
		o.ObserveInt64(waits, s.WaitCount)
		return nil
	}, conns, maxConns, waits)
	return err
}
