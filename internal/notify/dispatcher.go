package notify

import (
	"context"
	"log/slog"

	"github.com/odalvarez/bookshelf-api/internal/events"
)

// Template references understood by the mailer.
const (
	TemplateBookAdded = "book_added"
)

// Dispatcher decouples the document mutation path from delivery latency.
// Enqueue is fire-and-forget: it never blocks on delivery and never
// reports a delivery outcome. When the queue itself is unreachable the
// notification is logged and dropped; it is best-effort, not
// transactional with the document write.
type Dispatcher struct {
	queue     JobQueueWriter
	metrics   *Metrics
	logger    *slog.Logger
	recipient string
}

// NewDispatcher creates a Dispatcher that addresses all notifications to
// the configured recipient. An empty recipient disables notifications.
func NewDispatcher(queue JobQueueWriter, recipient string, metrics *Metrics, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queue:     queue,
		metrics:   metrics,
		logger:    logger.With("component", "dispatcher"),
		recipient: recipient,
	}
}

// Enqueue submits the job to the queue. Failures are absorbed here: the
// caller has no delivery stake and must not be blocked or failed by a
// full or closed queue.
func (d *Dispatcher) Enqueue(job *Job) {
	if err := d.queue.Enqueue(job); err != nil {
		d.metrics.Dropped.Add(1)
		d.logger.Error("notification dropped",
			"job_id", job.ID,
			"template", job.TemplateRef,
			"recipient", job.Recipient,
			"error", err)
		return
	}

	d.metrics.Enqueued.Add(1)
}

// HandleEvent turns book-created events into mail jobs. It implements
// events.Handler so the catalog service never sees the mail pipeline.
func (d *Dispatcher) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.TypeBookCreated {
		d.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	if d.recipient == "" {
		d.logger.Debug("no notification recipient configured, skipping",
			"event_id", event.ID)
		return nil
	}

	var payload events.BookCreatedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		d.logger.Error("failed to unmarshal event payload",
			"error", err,
			"event_id", event.ID)
		return nil
	}

	job := NewJob(
		"[Bookshelf] New book added",
		d.recipient,
		TemplateBookAdded,
		map[string]any{"book": payload.Book},
	)

	d.Enqueue(job)
	return nil
}

var _ events.Handler = (*Dispatcher)(nil)
