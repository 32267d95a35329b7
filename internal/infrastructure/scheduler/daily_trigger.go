package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DailyTriggerConfig sets the local wall-clock time the tasks run at
type DailyTriggerConfig struct {
	Hour          int
	Minute        int
	CheckInterval time.Duration
}

// DailyTrigger submits its tasks once per day, at the first check on or after
// the configured time
type DailyTrigger struct {
	config    DailyTriggerConfig
	scheduler *Scheduler
	tasks     []Task
	logger    *zap.Logger
	now       func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewDailyTrigger creates a trigger for tasks
func NewDailyTrigger(config DailyTriggerConfig, scheduler *Scheduler, logger *zap.Logger, tasks ...Task) *DailyTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	return &DailyTrigger{
		config:    config,
		scheduler: scheduler,
		tasks:     tasks,
		logger:    logger,
		now:       time.Now,
	}
}

// Start begins checking the clock
func (d *DailyTrigger) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.isRunning {
		return
	}
	d.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	go d.runLoop(ctx)

	d.logger.Info("Daily trigger started",
		zap.Int("hour", d.config.Hour),
		zap.Int("minute", d.config.Minute),
		zap.Int("tasks", len(d.tasks)),
	)
}

// Stop stops the trigger and waits for its loop to exit
func (d *DailyTrigger) Stop() {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = false
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *DailyTrigger) runLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.check()
		}
	}
}

// check submits the tasks if today's run is due and has not happened yet.
// It reports whether it fired.
func (d *DailyTrigger) check() bool {
	now := d.now()
	today := now.Format("2006-01-02")
	due := now.Hour()*60+now.Minute() >= d.config.Hour*60+d.config.Minute

	d.mu.Lock()
	if !due || d.lastRunDate == today {
		d.mu.Unlock()
		return false
	}
	d.lastRunDate = today
	d.mu.Unlock()

	d.logger.Info("Triggering daily tasks", zap.String("date", today))
	d.TriggerNow()
	return true
}

// TriggerNow submits every task immediately
func (d *DailyTrigger) TriggerNow() {
	for _, task := range d.tasks {
		if _, err := d.scheduler.Submit(task); err != nil {
			d.logger.Error("Failed to submit daily task",
				zap.String("task", task.Name()),
				zap.Error(err),
			)
		}
	}
}
