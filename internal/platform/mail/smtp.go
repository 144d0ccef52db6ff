// Package mail implements the SMTP transport behind the notification
// pipeline's Sender capability.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/odalvarez/bookshelf-api/internal/notify"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	UseTLS   bool
	UseSSL   bool
	Username string
	Password string
	Sender   string
}

// SMTPSender delivers rendered notifications over SMTP. Each send dials
// its own connection so concurrent workers never share transport state;
// cancellation of the attempt context aborts the dial and the send.
type SMTPSender struct {
	cfg    Config
	opts   []gomail.Option
	logger *slog.Logger
}

// NewSMTPSender builds a sender from the mail configuration.
func NewSMTPSender(cfg Config, logger *slog.Logger) *SMTPSender {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}

	switch {
	case cfg.UseSSL:
		opts = append(opts, gomail.WithSSL())
	case cfg.UseTLS:
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	default:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password))
	}

	return &SMTPSender{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With("component", "smtp_sender"),
	}
}

// Send implements notify.Sender.
func (s *SMTPSender) Send(ctx context.Context, msg notify.Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender address %q: %w", s.cfg.Sender, err)
	}
	if err := m.To(msg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", msg.Recipient, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTMLBody)

	client, err := gomail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Debug("mail sent", "recipient", msg.Recipient, "subject", msg.Subject)
	return nil
}

var _ notify.Sender = (*SMTPSender)(nil)
