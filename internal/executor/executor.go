// Package executor schedules backtest runs on a fixed worker pool and
// tracks job state for pull-based polling.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/init-51/FinInsight/internal/engine"
	"github.com/init-51/FinInsight/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrQueueFull is returned by Submit when the job queue cannot accept more
// work. Submission never blocks the caller.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop has been called.
var ErrStopped = errors.New("job executor is stopped")

// JobEvent describes a terminal job transition, published after the state
// has been recorded.
type JobEvent struct {
	JobID         string         `json:"job_id"`
	PortfolioName string         `json:"portfolio_name"`
	Status        model.JobState `json:"status"`
	Error         string         `json:"error,omitempty"`
}

// EventPublisher receives job lifecycle notifications. Implementations must
// tolerate being called from worker goroutines.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event JobEvent) error
}

// jobRecord pairs the externally visible job with the result of a successful
// run. Records are replaced whole on every transition; a stored record is
// never mutated in place.
type jobRecord struct {
	job    model.Job
	result *model.BacktestResult
}

type task struct {
	jobID string
	spec  *model.PortfolioSpec
}

// Executor runs backtests asynchronously. It is constructed explicitly and
// passed where needed; there is no process-wide queue.
type Executor struct {
	engine  *engine.Engine
	events  EventPublisher
	logger  *zap.Logger
	queue   chan task
	workers int
	wg      sync.WaitGroup

	mu      sync.RWMutex
	jobs    map[string]jobRecord
	stopped bool
}

// New creates an executor with the given worker count and queue capacity.
// events may be nil when no publisher is configured.
func New(eng *engine.Engine, workers, queueSize int, events EventPublisher, logger *zap.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Executor{
		engine:  eng,
		events:  events,
		logger:  logger,
		queue:   make(chan task, queueSize),
		workers: workers,
		jobs:    make(map[string]jobRecord),
	}
}

// Start launches the worker pool.
func (e *Executor) Start() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	e.logger.Info("Job executor started", zap.Int("workers", e.workers), zap.Int("queueSize", cap(e.queue)))
}

// Stop drains the queue and waits for in-flight runs to finish. No further
// submissions are accepted afterwards; Stop is idempotent.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	close(e.queue)
	e.wg.Wait()
	e.logger.Info("Job executor stopped")
}

// Submit registers a new PENDING job for the portfolio spec and returns its
// id immediately, without waiting for the run to start. The queue send is
// guarded by the same lock as the stopped flag so Submit can never race a
// concurrent Stop onto a closed channel.
func (e *Executor) Submit(spec *model.PortfolioSpec) (string, error) {
	jobID := uuid.NewString()

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return "", ErrStopped
	}
	e.jobs[jobID] = jobRecord{job: model.Job{JobID: jobID, State: model.JobStatePending}}

	select {
	case e.queue <- task{jobID: jobID, spec: spec}:
		e.mu.Unlock()
		e.logger.Info("Backtest job submitted",
			zap.String("jobID", jobID),
			zap.String("portfolio", spec.Name))
		return jobID, nil
	default:
		delete(e.jobs, jobID)
		e.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Status returns the current job state.
func (e *Executor) Status(jobID string) (model.Job, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.jobs[jobID]
	return rec.job, ok
}

// Result returns the job together with its persisted result. The result is
// non-nil only after a successful run; repeated reads observe identical
// values.
func (e *Executor) Result(jobID string) (model.Job, *model.BacktestResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.jobs[jobID]
	if !ok {
		return model.Job{}, nil, false
	}
	return rec.job, rec.result, true
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for t := range e.queue {
		e.run(t)
	}
}

// run executes one backtest and guarantees a terminal state even when the
// run panics.
func (e *Executor) run(t task) {
	// Jobs outlive the request that submitted them.
	ctx := context.Background()
	e.setJob(model.Job{JobID: t.jobID, State: model.JobStateRunning}, nil)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Backtest run panicked",
				zap.String("jobID", t.jobID),
				zap.Any("panic", r))
			e.finish(ctx, t, model.Job{
				JobID: t.jobID,
				State: model.JobStateFailure,
				Error: fmt.Sprintf("internal error: %v", r),
			}, nil)
		}
	}()

	result, err := e.engine.Run(ctx, t.jobID, t.spec)
	if err != nil {
		e.logger.Error("Backtest job failed",
			zap.String("jobID", t.jobID),
			zap.Error(err))
		e.finish(ctx, t, model.Job{JobID: t.jobID, State: model.JobStateFailure, Error: err.Error()}, nil)
		return
	}
	e.finish(ctx, t, model.Job{JobID: t.jobID, State: model.JobStateSuccess}, result)
}

// finish records the terminal state, then emits the lifecycle event. A
// publish failure is logged and never surfaced to pollers: the recorded
// state stands regardless.
func (e *Executor) finish(ctx context.Context, t task, job model.Job, result *model.BacktestResult) {
	e.setJob(job, result)
	if e.events == nil {
		return
	}
	event := JobEvent{
		JobID:         job.JobID,
		PortfolioName: t.spec.Name,
		Status:        job.State,
		Error:         job.Error,
	}
	if err := e.events.PublishJobEvent(ctx, event); err != nil {
		e.logger.Warn("Failed to publish job event",
			zap.String("jobID", job.JobID),
			zap.Error(err))
	}
}

func (e *Executor) setJob(job model.Job, result *model.BacktestResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs[job.JobID] = jobRecord{job: job, result: result}
}
