package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/backoffice/tests/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDailyTrigger_Check(t *testing.T) {
	s := startScheduler(t, testConfig())
	var runs atomic.Int32
	task := NewTask("audit", func(context.Context) error {
		runs.Add(1)
		return nil
	})

	d := NewDailyTrigger(DailyTriggerConfig{Hour: 2, Minute: 30}, s, zap.NewNop(), task)
	clock := time.Date(2026, 3, 14, 1, 59, 0, 0, time.Local)
	d.now = func() time.Time { return clock }

	tests := []struct {
		name  string
		at    time.Time
		fired bool
	}{
		{"before the hour", time.Date(2026, 3, 14, 1, 59, 0, 0, time.Local), false},
		{"on time", time.Date(2026, 3, 14, 2, 30, 0, 0, time.Local), true},
		{"later the same day", time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local), false},
		{"next day, early", time.Date(2026, 3, 15, 0, 10, 0, 0, time.Local), false},
		{"next day, missed the minute", time.Date(2026, 3, 15, 4, 0, 0, 0, time.Local), true},
	}
	for _, tt := range tests {
		clock = tt.at
		assert.Equal(t, tt.fired, d.check(), tt.name)
	}

	testutil.RequireEventually(t, func() bool { return runs.Load() == 2 }, time.Second)
}

func TestDailyTrigger_StartStop(t *testing.T) {
	s := startScheduler(t, testConfig())
	var runs atomic.Int32
	task := NewTask("expiry", func(context.Context) error {
		runs.Add(1)
		return nil
	})

	d := NewDailyTrigger(DailyTriggerConfig{CheckInterval: 5 * time.Millisecond}, s, zap.NewNop(), task)
	d.Start(context.Background())
	testutil.RequireEventually(t, func() bool { return runs.Load() == 1 }, time.Second)
	d.Stop()
	d.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}
