// Package worker runs vendor-creation jobs on a bounded pool.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"roster/internal/vendors/metrics"
	dErrors "roster/pkg/domain-errors"
)

// Job is one unit of background work.
type Job struct {
	ID  string
	Run func(ctx context.Context) error
}

// ErrStopped is returned by Enqueue after Run has returned.
var ErrStopped = errors.New("dispatcher stopped")

// Dispatcher feeds a bounded queue to a fixed number of workers. Jobs run
// with a context detached from the submitter, so a finished HTTP request
// never cancels its job.
type Dispatcher struct {
	queue      chan Job
	workers    int
	jobTimeout time.Duration
	stopped    chan struct{}
	sendMu     sync.RWMutex
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithJobTimeout bounds each job. Zero means no bound.
func WithJobTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.jobTimeout = timeout }
}

// New creates a dispatcher with the given pool size and queue capacity.
func New(workers, queueSize int, opts ...Option) (*Dispatcher, error) {
	if workers <= 0 {
		return nil, errors.New("worker count must be positive")
	}
	if queueSize < 0 {
		return nil, errors.New("queue size cannot be negative")
	}
	d := &Dispatcher{
		queue:   make(chan Job, queueSize),
		workers: workers,
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Enqueue blocks until the job is accepted, ctx is done or the dispatcher
// stops. Rejections carry CodeUnavailable. An accepted job is either run or
// logged as dropped before Run returns.
func (d *Dispatcher) Enqueue(ctx context.Context, job Job) error {
	if job.Run == nil {
		return dErrors.New(dErrors.CodeInternal, "job has no run function")
	}
	d.sendMu.RLock()
	defer d.sendMu.RUnlock()
	select {
	case <-d.stopped:
		return dErrors.Wrap(ErrStopped, dErrors.CodeUnavailable, "vendor processing is shutting down")
	default:
	}
	select {
	case d.queue <- job:
		d.metrics.SetQueueDepth(len(d.queue))
		return nil
	case <-d.stopped:
		return dErrors.Wrap(ErrStopped, dErrors.CodeUnavailable, "vendor processing is shutting down")
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeUnavailable, "vendor processing queue is full")
	}
}

// Run starts the workers and blocks until ctx is cancelled, returning
// ctx.Err(). Jobs already picked up are allowed to finish; jobs still queued
// are dropped and logged.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range d.workers {
		g.Go(func() error {
			d.loop(gctx, i)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	// Closing stopped releases blocked senders; taking the write lock waits
	// for them to leave, so nothing lands in the queue after the drain.
	close(d.stopped)
	d.sendMu.Lock()
	defer d.sendMu.Unlock()

	dropped := 0
	for {
		select {
		case job := <-d.queue:
			dropped++
			d.logger.Warn("dropping queued job on shutdown", "job_id", job.ID)
		default:
			d.metrics.SetQueueDepth(0)
			if dropped > 0 {
				d.logger.Warn("dispatcher stopped with queued jobs", "dropped", dropped)
			}
			return err
		}
	}
}

func (d *Dispatcher) loop(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-d.queue:
			d.metrics.SetQueueDepth(len(d.queue))
			d.run(ctx, worker, job)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, worker int, job Job) {
	jobCtx := context.WithoutCancel(ctx)
	if d.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(jobCtx, d.jobTimeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			d.metrics.IncJob("panic")
			d.logger.Error("job panicked", "job_id", job.ID, "worker", worker, "panic", rec)
		}
	}()

	if err := job.Run(jobCtx); err != nil {
		d.metrics.IncJob("error")
		d.logger.ErrorContext(jobCtx, "job failed", "job_id", job.ID, "worker", worker, "error", err)
		return
	}
	d.metrics.IncJob("ok")
}
