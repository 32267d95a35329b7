// Package scheduler runs background housekeeping tasks on a small worker
// pool, with bounded retries and a once-a-day trigger.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
	ErrJobQueueFull        = errors.New("scheduler: job queue full")
	ErrInvalidConfig       = errors.New("scheduler: invalid configuration")
)

// Task is one unit of background work
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type taskFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (t taskFunc) Name() string                  { return t.name }
func (t taskFunc) Run(ctx context.Context) error { return t.fn(ctx) }

// NewTask adapts a function into a Task
func NewTask(name string, fn func(ctx context.Context) error) Task {
	return taskFunc{name: name, fn: fn}
}

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one execution of a task, carried across its retries
type Job struct {
	ID          uuid.UUID
	Task        Task
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
}

// NewJob creates a pending job for task
func NewJob(task Task, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Task:       task,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

func (j *Job) complete() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

func (j *Job) fail(err error) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err.Error()
}

// ShouldRetry returns true if the failed job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// Config holds scheduler configuration
type Config struct {
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		QueueSize:     32,
		JobTimeout:    10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Minute,
	}
}

func (c Config) validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 || c.JobTimeout <= 0 || c.RetryAttempts < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidConfig, c)
	}
	return nil
}

const historySize = 50

// Scheduler executes submitted tasks on a fixed worker pool
type Scheduler struct {
	config Config
	logger *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	history   []Job
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config Config, logger *zap.Logger) (*Scheduler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		config: config,
		logger: logger,
		jobs:   make(chan *Job, config.QueueSize),
	}, nil
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Scheduler started",
		zap.Int("workers", s.config.Workers),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
}

// Stop cancels running jobs and waits for the workers, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	close(s.jobs)
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Submit queues a new job for task and returns its ID
func (s *Scheduler) Submit(task Task) (uuid.UUID, error) {
	job := NewJob(task, s.config.RetryAttempts)
	if err := s.enqueue(job); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}

func (s *Scheduler) enqueue(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}
	select {
	case s.jobs <- job:
		s.logger.Debug("Job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("task", job.Task.Name()),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

// History returns copies of the most recently finished jobs, oldest first
func (s *Scheduler) History() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Scheduler) record(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *job)
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}

func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	job.start()
	fields := []zap.Field{
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("task", job.Task.Name()),
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	if err := s.run(jobCtx, job.Task); err != nil {
		job.fail(err)
		s.record(job)
		s.logger.Error("Job failed", append(fields, zap.Int("retry_count", job.RetryCount), zap.Error(err))...)

		if job.ShouldRetry() && ctx.Err() == nil {
			job.RetryCount++
			job.Status = JobStatusPending
			time.AfterFunc(s.config.RetryDelay, func() {
				if err := s.enqueue(job); err != nil {
					s.logger.Warn("Failed to re-queue job for retry", append(fields, zap.Error(err))...)
				}
			})
		}
		return
	}

	job.complete()
	s.record(job)
	s.logger.Info("Job completed", append(fields, zap.Duration("took", job.CompletedAt.Sub(*job.StartedAt)))...)
}

// run executes task, converting a panic into an error
func (s *Scheduler) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name(), r)
		}
	}()
	return task.Run(ctx)
}
