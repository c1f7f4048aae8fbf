// Package dispatch submits outbound messages across the three delivery
// channels: direct SMTP email, SMTP via carrier email-to-SMS gateways, and
// the cloud SMS API. Every failure is converted to a Result value at this
// boundary; nothing above it needs to handle transport faults.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/model"
)

// Status classifies the outcome of one send.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Result is the per-send outcome reported to callers.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the send succeeded.
func (r Result) OK() bool { return r.Status == StatusSent }

func sentf(format string, args ...interface{}) Result {
	return Result{Status: StatusSent, Message: fmt.Sprintf(format, args...)}
}

func failedf(format string, args ...interface{}) Result {
	return Result{Status: StatusFailed, Message: fmt.Sprintf(format, args...)}
}

// Attachment is a named binary payload attached to an email.
type Attachment struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Email is one outbound message handed to a Submitter.
type Email struct {
	From        string
	FromName    string
	To          string
	ReplyTo     string
	Subject     string
	Body        string
	HTML        bool
	Attachments []Attachment
}

// Submitter submits one outbound message through a mail submission path.
// Implementations must not panic; any transport error is returned and
// converted to a failure Result by the Dispatcher.
type Submitter interface {
	Submit(ctx context.Context, transport model.TransportConfig, msg Email) error
}

// SmsProvider is the cloud SMS capability. A nil provider means the
// credential was absent at startup.
type SmsProvider interface {
	// Send delivers one SMS and returns the provider's message id.
	Send(ctx context.Context, to, message string) (string, error)
}

// Dispatcher fans sends out over the configured channels.
type Dispatcher struct {
	submitter Submitter
	sms       SmsProvider
	pause     time.Duration
	sleep     func(time.Duration)
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithSleep replaces the inter-attempt pause function. Tests use this to
// avoid real delays.
func WithSleep(fn func(time.Duration)) Option {
	return func(d *Dispatcher) { d.sleep = fn }
}

// New creates a Dispatcher. sms may be nil when no cloud SMS credential is
// configured; the azure channel then fails fast with a guidance message.
func New(submitter Submitter, sms SmsProvider, cfg config.DispatchConfig, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		submitter: submitter,
		sms:       sms,
		pause:     cfg.AutoDetectPause,
		sleep:     time.Sleep,
	}
	if d.pause <= 0 {
		d.pause = 500 * time.Millisecond
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetSmsProvider swaps the cloud SMS provider, used when the credential is
// saved while the server is running.
func (d *Dispatcher) SetSmsProvider(sms SmsProvider) { d.sms = sms }

// SendEmail submits one email through the transport profile. The subject
// and body are expected to be pattern-resolved already.
func (d *Dispatcher) SendEmail(ctx context.Context, transport model.TransportConfig, to, subject, body string, html bool, attachments []Attachment, fromName, replyTo string) Result {
	msg := Email{
		From:        transport.Email,
		FromName:    fromName,
		To:          to,
		ReplyTo:     replyTo,
		Subject:     subject,
		Body:        body,
		HTML:        html,
		Attachments: attachments,
	}
	if err := d.submitter.Submit(ctx, transport, msg); err != nil {
		return failedf("%s", err)
	}
	return sentf("Email sent to %s", to)
}
