package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/backoffice/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     8,
		JobTimeout:    time.Second,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
	}
}

func startScheduler(t *testing.T, cfg Config) *Scheduler {
	t.Helper()
	s, err := NewScheduler(cfg, zap.NewNop())
	require.NoError(t, err)
	s.Start(context.Background())
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestNewScheduler_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"no queue", func(c *Config) { c.QueueSize = 0 }},
		{"no timeout", func(c *Config) { c.JobTimeout = 0 }},
		{"negative retries", func(c *Config) { c.RetryAttempts = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := NewScheduler(cfg, zap.NewNop())
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestScheduler_RunsTask(t *testing.T) {
	s := startScheduler(t, testConfig())
	var runs atomic.Int32

	id, err := s.Submit(NewTask("count", func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool { return len(s.History()) == 1 }, time.Second)
	job := s.History()[0]
	assert.Equal(t, id, job.ID)
	assert.Equal(t, JobStatusSuccess, job.Status)
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RetriesUntilSuccess(t *testing.T) {
	s := startScheduler(t, testConfig())
	var attempts atomic.Int32

	_, err := s.Submit(NewTask("flaky", func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("database unavailable")
		}
		return nil
	}))
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool {
		h := s.History()
		return len(h) > 0 && h[len(h)-1].Status == JobStatusSuccess
	}, 2*time.Second)
	assert.Equal(t, int32(3), attempts.Load())

	h := s.History()
	require.Len(t, h, 3)
	assert.Equal(t, JobStatusFailed, h[0].Status)
	assert.Equal(t, "database unavailable", h[0].Error)
	assert.Equal(t, 2, h[2].RetryCount)
}

func TestScheduler_GivesUpAfterRetries(t *testing.T) {
	cfg := testConfig()
	cfg.RetryAttempts = 1
	s := startScheduler(t, cfg)
	var attempts atomic.Int32

	_, err := s.Submit(NewTask("broken", func(context.Context) error {
		attempts.Add(1)
		panic("nil supplier")
	}))
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool { return len(s.History()) == 2 }, 2*time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Contains(t, s.History()[1].Error, "panicked")
}

func TestScheduler_JobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 20 * time.Millisecond
	cfg.RetryAttempts = 0
	s := startScheduler(t, cfg)

	_, err := s.Submit(NewTask("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool { return len(s.History()) == 1 }, time.Second)
	assert.Equal(t, context.DeadlineExceeded.Error(), s.History()[0].Error)
}

func TestScheduler_SubmitWhenStopped(t *testing.T) {
	s, err := NewScheduler(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.Submit(NewTask("noop", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)

	s.Start(context.Background())
	require.NoError(t, s.Stop(context.Background()))
	_, err = s.Submit(NewTask("noop", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_QueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1
	s := startScheduler(t, cfg)

	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	block := NewTask("block", func(context.Context) error {
		started <- struct{}{}
		<-release
		return nil
	})

	_, err := s.Submit(block)
	require.NoError(t, err)
	<-started

	_, err = s.Submit(NewTask("queued", func(context.Context) error { return nil }))
	require.NoError(t, err)
	_, err = s.Submit(NewTask("overflow", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrJobQueueFull)
}
