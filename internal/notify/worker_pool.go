package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// WorkerPoolConfig holds configuration options for the worker pool.
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to
	// start. If zero or negative, defaults to 1.
	WorkerCount int

	// AttemptTimeout bounds each delivery attempt, covering template
	// rendering and the transport call. A timeout is treated like any
	// other delivery failure. If zero, defaults to 30 seconds.
	AttemptTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount:    2,
		AttemptTimeout: 30 * time.Second,
	}
}

// WorkerPool runs a fixed-size set of workers that pull jobs from the
// shared queue and execute the notification side effect. On failure the
// retry policy is consulted; a retry is re-queued after its delay via a
// timer so the worker returns to the pool immediately. After the retry
// budget is exhausted the job is abandoned: counted, logged, and never
// surfaced to the original caller.
//
// No ordering is guaranteed across jobs; a retried job is delivered out
// of order relative to its enqueue time.
type WorkerPool struct {
	reader    JobQueueReader
	writer    JobQueueWriter
	deliverer Deliverer
	policy    RetryPolicy
	metrics   *Metrics

	workerCount    int
	attemptTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWorkerPool creates a worker pool over the given queue ends. The
// writer is used only for delayed retry re-enqueues.
func NewWorkerPool(
	reader JobQueueReader,
	writer JobQueueWriter,
	deliverer Deliverer,
	policy RetryPolicy,
	config WorkerPoolConfig,
	metrics *Metrics,
	logger *slog.Logger,
) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	attemptTimeout := config.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		reader:         reader,
		writer:         writer,
		deliverer:      deliverer,
		policy:         policy,
		metrics:        metrics,
		workerCount:    workerCount,
		attemptTimeout: attemptTimeout,
		ctx:            ctx,
		cancel:         cancel,
		logger:         logger.With("component", "worker_pool"),
	}
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount)
}

// Stop cancels all workers and waits for them to finish their current
// job. Retries still pending on timers are dropped when they fire.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker consumes jobs until the pool is stopped or the queue is closed
// and drained.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-p.reader.GetChannel():
			if !ok {
				p.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			p.process(job, id)
		}
	}
}

// process runs a single delivery attempt and applies the retry policy on
// failure. The job is owned by this worker until it reaches a terminal
// state or is handed to the retry timer.
func (p *WorkerPool) process(job *Job, workerID int) {
	logger := p.logger.With(
		"job_id", job.ID,
		"template", job.TemplateRef,
		"worker_id", workerID,
	)

	job.Status = JobStatusInFlight

	ctx, cancel := context.WithTimeout(p.ctx, p.attemptTimeout)
	err := p.deliverer.Deliver(ctx, job)
	cancel()

	if err == nil {
		job.Status = JobStatusDelivered
		p.metrics.Delivered.Add(1)
		logger.Info("notification delivered", "attempt", job.Attempt)
		return
	}

	job.Attempt++
	decision := p.policy.Decide(job.Attempt)

	if !decision.Retry {
		p.abandon(job, err, logger)
		return
	}

	job.Status = JobStatusRetrying
	p.metrics.Retried.Add(1)
	logger.Warn("delivery failed, scheduling retry",
		"attempt", job.Attempt,
		"delay", decision.Delay,
		"error", err)

	p.scheduleRetry(job, decision.Delay, logger)
}

// scheduleRetry re-queues the job after the delay without occupying a
// worker. The timer callback only performs a non-blocking enqueue, so a
// transport outage cannot collapse the pool's concurrency.
func (p *WorkerPool) scheduleRetry(job *Job, delay time.Duration, logger *slog.Logger) {
	time.AfterFunc(delay, func() {
		select {
		case <-p.ctx.Done():
			logger.Warn("retry dropped, pool stopped", "attempt", job.Attempt)
			return
		default:
		}

		job.Status = JobStatusQueued
		if err := p.writer.Enqueue(job); err != nil {
			p.abandon(job, err, logger)
		}
	})
}

// abandon marks the job terminally failed. The failure is reported to
// the observability sink only; the caller that triggered the
// notification returned long ago.
func (p *WorkerPool) abandon(job *Job, cause error, logger *slog.Logger) {
	job.Status = JobStatusAbandoned
	p.metrics.Abandoned.Add(1)

	reason := "retry budget exhausted"
	if errors.Is(cause, ErrQueueFull) || errors.Is(cause, ErrQueueClosed) {
		reason = "retry re-enqueue failed"
	}

	logger.Error("notification abandoned",
		"reason", reason,
		"attempt", job.Attempt,
		"recipient", job.Recipient,
		"error", cause)
}
