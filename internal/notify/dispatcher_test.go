package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odalvarez/bookshelf-api/internal/domain"
	"github.com/odalvarez/bookshelf-api/internal/events"
)

// fakeQueueWriter records enqueued jobs and can simulate failure.
type fakeQueueWriter struct {
	jobs []*Job
	err  error
}

func (f *fakeQueueWriter) Enqueue(job *Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeQueueWriter) Close() {}

func bookCreated(t *testing.T) *events.Event {
	t.Helper()
	book, err := domain.NewBook("Dune", "Herbert", "SciFi", domain.StatusPending)
	require.NoError(t, err)
	event, err := events.NewBookCreatedEvent(book)
	require.NoError(t, err)
	return event
}

func TestDispatcherHandleBookCreated(t *testing.T) {
	writer := &fakeQueueWriter{}
	metrics := &Metrics{}
	d := NewDispatcher(writer, "ops@example.com", metrics, setupTestLogger())

	err := d.HandleEvent(context.Background(), bookCreated(t))
	require.NoError(t, err)

	require.Len(t, writer.jobs, 1)
	job := writer.jobs[0]
	assert.Equal(t, "[Bookshelf] New book added", job.Subject)
	assert.Equal(t, "ops@example.com", job.Recipient)
	assert.Equal(t, TemplateBookAdded, job.TemplateRef)
	assert.Equal(t, JobStatusQueued, job.Status)
	assert.Equal(t, 0, job.Attempt)
	assert.Contains(t, job.Context, "book")
	assert.EqualValues(t, 1, metrics.Enqueued.Load())
}

func TestDispatcherIgnoresOtherEventTypes(t *testing.T) {
	writer := &fakeQueueWriter{}
	d := NewDispatcher(writer, "ops@example.com", &Metrics{}, setupTestLogger())

	err := d.HandleEvent(context.Background(), &events.Event{Type: "book_deleted"})
	require.NoError(t, err)
	assert.Empty(t, writer.jobs)
}

func TestDispatcherSkipsWithoutRecipient(t *testing.T) {
	writer := &fakeQueueWriter{}
	d := NewDispatcher(writer, "", &Metrics{}, setupTestLogger())

	err := d.HandleEvent(context.Background(), bookCreated(t))
	require.NoError(t, err)
	assert.Empty(t, writer.jobs)
}

func TestDispatcherDropsOnUnreachableQueue(t *testing.T) {
	writer := &fakeQueueWriter{err: ErrQueueFull}
	metrics := &Metrics{}
	d := NewDispatcher(writer, "ops@example.com", metrics, setupTestLogger())

	// Fire-and-forget: a full queue never surfaces to the caller
	err := d.HandleEvent(context.Background(), bookCreated(t))
	require.NoError(t, err)

	assert.EqualValues(t, 1, metrics.Dropped.Load())
	assert.EqualValues(t, 0, metrics.Enqueued.Load())
}
