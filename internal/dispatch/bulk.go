package dispatch

import (
	"context"
	"strings"

	"github.com/dragonmail/dragonmail/internal/gateway"
	"github.com/dragonmail/dragonmail/internal/model"
)

// Detail is the per-recipient outcome inside a bulk Summary.
type Detail struct {
	Recipient string `json:"recipient"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

// Summary aggregates a bulk send. Success+Failed always equals the number
// of recipients attempted.
type Summary struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

// ProgressFunc receives fractional completion after each recipient.
type ProgressFunc func(fraction float64)

// SMSRecipient pairs a phone number with its carrier (or the auto
// pseudo-carrier).
type SMSRecipient struct {
	Phone   string `json:"phone"`
	Carrier string `json:"carrier"`
}

// SendBulkEmail sends to every recipient in list order, sequentially. One
// failure never aborts the remainder. The subject and body are resolved
// once by the caller for the whole batch, so every recipient sees the same
// token values.
func (d *Dispatcher) SendBulkEmail(ctx context.Context, transport model.TransportConfig, recipients []string, subject, body string, html bool, fromName, replyTo string, progress ProgressFunc) Summary {
	summary := Summary{Details: []Detail{}}
	total := len(recipients)

	for i, recipient := range recipients {
		recipient = strings.TrimSpace(recipient)
		result := d.SendEmail(ctx, transport, recipient, subject, body, html, nil, fromName, replyTo)
		summary.record(recipient, result)
		if progress != nil {
			progress(float64(i+1) / float64(total))
		}
	}

	return summary
}

// SendBulkSMS iterates phone/carrier pairs the same way SendBulkEmail
// iterates addresses. Recipients whose carrier is the auto pseudo-carrier
// go through the auto-detect broadcast.
func (d *Dispatcher) SendBulkSMS(ctx context.Context, transport model.TransportConfig, recipients []SMSRecipient, message string, progress ProgressFunc) Summary {
	summary := Summary{Details: []Detail{}}
	total := len(recipients)

	for i, recipient := range recipients {
		var result Result
		if gateway.IsAuto(recipient.Carrier) {
			result = d.SendSMSAutoDetect(ctx, transport, recipient.Phone, message)
		} else {
			result = d.SendSMSViaGateway(ctx, transport, recipient.Phone, recipient.Carrier, message, false)
		}
		summary.record(recipient.Phone, result)
		if progress != nil {
			progress(float64(i+1) / float64(total))
		}
	}

	return summary
}

func (s *Summary) record(recipient string, result Result) {
	if result.OK() {
		s.Success++
	} else {
		s.Failed++
	}
	s.Details = append(s.Details, Detail{
		Recipient: recipient,
		Status:    result.Status,
		Message:   result.Message,
	})
}
