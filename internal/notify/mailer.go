package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Message is a rendered notification ready for transport.
type Message struct {
	Subject   string
	Recipient string
	HTMLBody  string
}

// Sender is the mail transport capability. It either succeeds or fails
// with a reported error; the pipeline does not care which SMTP dialect
// sits behind it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Deliverer executes the notification side effect for one job. It must
// be safe to call more than once for the same job: delivery is
// at-least-once and duplicates are not deduplicated.
type Deliverer interface {
	Deliver(ctx context.Context, job *Job) error
}

// Mailer renders a job's template with its context payload and hands the
// result to the mail transport. Render failures and transport failures
// are both delivery failures and feed the same retry policy.
type Mailer struct {
	templates *template.Template
	sender    Sender
	logger    *slog.Logger
}

// NewMailer parses the embedded template set and wires the transport.
func NewMailer(sender Sender, logger *slog.Logger) (*Mailer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	return &Mailer{
		templates: templates,
		sender:    sender,
		logger:    logger.With("component", "mailer"),
	}, nil
}

// Deliver implements Deliverer.
func (m *Mailer) Deliver(ctx context.Context, job *Job) error {
	name := job.TemplateRef + ".html"
	tmpl := m.templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("unknown mail template %q", job.TemplateRef)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, job.Context); err != nil {
		return fmt.Errorf("render template %q: %w", job.TemplateRef, err)
	}

	msg := Message{
		Subject:   job.Subject,
		Recipient: job.Recipient,
		HTMLBody:  body.String(),
	}

	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send to %s: %w", job.Recipient, err)
	}

	m.logger.Debug("mail delivered",
		"job_id", job.ID,
		"recipient", job.Recipient,
		"template", job.TemplateRef)
	return nil
}

var _ Deliverer = (*Mailer)(nil)
