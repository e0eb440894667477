// Package mail delivers rendered reports over SMTP
package mail

import (
	"context"
	"time"

	perr "oppwatch/internal/platform/errors"
	"oppwatch/internal/platform/logger"

	gomail "github.com/wneessen/go-mail"
)

// Message is one outbound report email. Both bodies are always present;
// clients pick whichever part they can display
type Message struct {
	To       []string
	CC       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers messages. Implementations must treat each Send as
// independent so one recipient's failure reports cleanly to the caller
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Options configures the SMTP sender
type Options struct {
	Host     string `conf:"MAIL_HOST" validate:"required"`
	Port     int    `conf:"MAIL_PORT" validate:"gte=1,lte=65535"`
	Username string `conf:"MAIL_USERNAME"`
	Password string `conf:"MAIL_PASSWORD"`

	// From is the envelope and header sender
	From string `conf:"MAIL_FROM" validate:"required,email"`

	Timeout time.Duration `conf:"MAIL_TIMEOUT"`
}

// SMTP sends mail through a real SMTP relay
type SMTP struct {
	opts Options
	log  logger.Logger
}

// NewSMTP builds the production sender
func NewSMTP(opts Options) *SMTP {
	return &SMTP{opts: opts, log: *logger.Named("mail")}
}

// Send implements Sender. The message carries a plain-text part and an
// HTML alternative in one multipart body
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.From(s.opts.From); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "bad sender address")
	}
	if err := m.To(msg.To...); err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "bad recipient address")
	}
	if len(msg.CC) > 0 {
		if err := m.Cc(msg.CC...); err != nil {
			return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "bad cc address")
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.TextBody)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTMLBody)

	copts := []gomail.Option{
		gomail.WithPort(s.opts.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if s.opts.Username != "" {
		copts = append(copts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.opts.Username),
			gomail.WithPassword(s.opts.Password),
		)
	}
	if s.opts.Timeout > 0 {
		copts = append(copts, gomail.WithTimeout(s.opts.Timeout))
	}

	client, err := gomail.NewClient(s.opts.Host, copts...)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "smtp client build failed")
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "send to %v failed", msg.To)
	}
	s.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("report sent")
	return nil
}

// DryRun logs what would be sent and delivers nothing. Used when the run
// is invoked with -dryrun
type DryRun struct {
	log logger.Logger

	// Sent records every message for inspection
	Sent []Message
}

// NewDryRun builds the no-delivery sender
func NewDryRun() *DryRun {
	return &DryRun{log: *logger.Named("mail-dryrun")}
}

// Send implements Sender
func (d *DryRun) Send(_ context.Context, msg Message) error {
	d.Sent = append(d.Sent, msg)
	d.log.Info().
		Strs("to", msg.To).
		Strs("cc", msg.CC).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTMLBody)).
		Msg("dry run, not sending")
	return nil
}
