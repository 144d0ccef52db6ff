package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the JobQueue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// JobQueueReader provides read-only access to the job channel, allowing
// workers to consume jobs without the ability to enqueue.
type JobQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan *Job
}

// JobQueueWriter provides write access to the job queue.
type JobQueueWriter interface {
	// Enqueue adds a job to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(job *Job) error

	// Close closes the job queue, preventing further submission
	Close()
}

// JobQueue is a buffered in-memory queue satisfying both JobQueueReader
// and JobQueueWriter. It is the single shared mutable resource between
// the document mutation path and the workers; enqueue never blocks.
type JobQueue struct {
	jobs   chan *Job
	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// NewJobQueue creates a new job queue with the specified buffer size.
func NewJobQueue(size int, logger *slog.Logger) *JobQueue {
	return &JobQueue{
		jobs:   make(chan *Job, size),
		logger: logger.With("component", "job_queue"),
	}
}

// Enqueue adds a job to the queue without blocking.
// Returns ErrQueueFull when the buffer is exhausted and ErrQueueClosed
// after Close.
func (q *JobQueue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("job enqueued",
			"job_id", job.ID,
			"template", job.TemplateRef,
			"queue_len", len(q.jobs),
			"queue_cap", cap(q.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close closes the job queue, preventing further submission. Jobs already
// buffered remain consumable.
func (q *JobQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// GetChannel returns a read-only channel for consuming jobs.
func (q *JobQueue) GetChannel() <-chan *Job {
	return q.jobs
}

// Len returns the number of jobs currently buffered.
func (q *JobQueue) Len() int {
	return len(q.jobs)
}

var _ JobQueueReader = (*JobQueue)(nil)
var _ JobQueueWriter = (*JobQueue)(nil)
