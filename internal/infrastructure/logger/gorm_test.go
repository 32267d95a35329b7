package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM stock_lots", 3 }
	ctx := WithRequestID(context.Background(), "req-3")

	tests := []struct {
		name  string
		begin time.Time
		err   error
		msg   string
		level zapcore.Level
	}{
		{"fast query", time.Now(), nil, "sql", zapcore.DebugLevel},
		{"slow query", time.Now().Add(-time.Second), nil, "slow sql", zapcore.WarnLevel},
		{"failure", time.Now(), errors.New("syntax error"), "sql error", zapcore.ErrorLevel},
		{"lock timeout", time.Now(), &pgconn.PgError{Code: "55P03"}, "sql contention", zapcore.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observed()
			gl := NewGormLogger(log, gormlogger.Info, WithSlowThreshold(100*time.Millisecond))
			gl.Trace(ctx, tt.begin, query, tt.err)

			entries := logs.All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.msg, entries[0].Message)
				assert.Equal(t, tt.level, entries[0].Level)
				assert.Equal(t, "req-3", entries[0].ContextMap()["request_id"])
			}
		})
	}

	t.Run("record not found is silent", func(t *testing.T) {
		log, logs := observed()
		NewGormLogger(log, gormlogger.Info).Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
		assert.Zero(t, logs.Len())
	})

	t.Run("sql text can be withheld", func(t *testing.T) {
		log, logs := observed()
		NewGormLogger(log, gormlogger.Info, WithSQL(false)).Trace(ctx, time.Now(), query, nil)
		assert.NotContains(t, logs.All()[0].ContextMap(), "sql")
	})

	t.Run("silent level", func(t *testing.T) {
		log, logs := observed()
		NewGormLogger(log, gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("x"))
		assert.Zero(t, logs.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
