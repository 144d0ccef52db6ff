package notify

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents where a job is in its delivery lifecycle.
type JobStatus string

// Job lifecycle states: Queued -> InFlight -> {Delivered | Retrying -> Queued | Abandoned}
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusInFlight  JobStatus = "in_flight"
	JobStatusDelivered JobStatus = "delivered"
	JobStatusRetrying  JobStatus = "retrying"
	JobStatusAbandoned JobStatus = "abandoned"
)

// Job is one unit of asynchronous notification work. It is owned by the
// dispatcher at enqueue time, then by whichever worker holds it, and is
// discarded on terminal success or failure. The pipeline never reports
// the outcome back to the code that triggered the notification.
type Job struct {
	ID          uuid.UUID
	Subject     string
	Recipient   string
	TemplateRef string

	// Context is the template payload. It is opaque to the dispatcher
	// and the queue; only the deliverer interprets it.
	Context map[string]any

	// Attempt counts delivery attempts so far, starting at 0.
	Attempt int

	Status    JobStatus
	CreatedAt time.Time
}

// NewJob creates a Queued job with zero attempts.
func NewJob(subject, recipient, templateRef string, context map[string]any) *Job {
	return &Job{
		ID:          uuid.New(),
		Subject:     subject,
		Recipient:   recipient,
		TemplateRef: templateRef,
		Context:     context,
		Attempt:     0,
		Status:      JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}
}
