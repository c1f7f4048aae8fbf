package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/pattern"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// previewRunes caps the message preview stored with each activity record.
const previewRunes = 100

// SendService orchestrates batch sends: it resolves pattern tokens,
// drives the dispatcher, and records the outcome in the activity log.
type SendService struct {
	dispatcher *dispatch.Dispatcher
	activity   repository.ActivityRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewSendService creates a new SendService
func NewSendService(dispatcher *dispatch.Dispatcher, activity repository.ActivityRepository, log *logger.Logger) *SendService {
	return &SendService{
		dispatcher: dispatcher,
		activity:   activity,
		log:        log.WithComponent("send_service"),
		now:        time.Now,
	}
}

// Preview resolves pattern tokens without sending anything.
func (s *SendService) Preview(text, link string) string {
	return pattern.Resolve(text, link)
}

// EmailSendRequest is one email batch.
type EmailSendRequest struct {
	Transport   model.TransportConfig
	Recipients  []string
	Subject     string
	Body        string
	HTML        bool
	Link        string
	Attachments []dispatch.Attachment
	FromName    string
	ReplyTo     string
	User        string
	Progress    dispatch.ProgressFunc
}

// SendReport is the outcome of a batch plus its per-recipient detail.
type SendReport struct {
	Summary  dispatch.Summary     `json:"summary"`
	Activity model.ActivityRecord `json:"activity"`
}

// SendEmail resolves tokens once for the batch, sends to every
// recipient, and appends one activity record covering the whole batch.
func (s *SendService) SendEmail(ctx context.Context, req EmailSendRequest) (*SendReport, error) {
	subject := pattern.Resolve(req.Subject, req.Link)
	body := pattern.Resolve(req.Body, req.Link)

	summary := s.dispatcher.SendBulkEmail(ctx, req.Transport, req.Recipients, subject, body, req.HTML, req.FromName, req.ReplyTo, req.Progress)

	var attachments []string
	for _, a := range req.Attachments {
		attachments = append(attachments, a.Name)
	}
	rec := s.buildRecord(model.ChannelEmail, req.User, subject, body, recipientNames(summary), attachments, summary)
	return s.finish(ctx, rec, summary)
}

// SMSSendRequest is one SMS batch routed through carrier gateways.
type SMSSendRequest struct {
	Transport  model.TransportConfig
	Recipients []dispatch.SMSRecipient
	Message    string
	Link       string
	User       string
	Progress   dispatch.ProgressFunc
}

// SendSMS sends a gateway SMS batch. The message is resolved once, so
// every recipient gets the same token values.
func (s *SendService) SendSMS(ctx context.Context, req SMSSendRequest) (*SendReport, error) {
	message := pattern.Resolve(req.Message, req.Link)

	summary := s.dispatcher.SendBulkSMS(ctx, req.Transport, req.Recipients, message, req.Progress)

	rec := s.buildRecord(model.ChannelSMS, req.User, "", message, recipientNames(summary), nil, summary)
	return s.finish(ctx, rec, summary)
}

// AzureSMSSendRequest is one direct SMS batch through the cloud provider.
type AzureSMSSendRequest struct {
	Recipients []string
	Message    string
	Link       string
	User       string
	Progress   dispatch.ProgressFunc
}

// SendAzureSMS sends a batch through the configured cloud SMS provider.
func (s *SendService) SendAzureSMS(ctx context.Context, req AzureSMSSendRequest) (*SendReport, error) {
	message := pattern.Resolve(req.Message, req.Link)

	var summary dispatch.Summary
	total := len(req.Recipients)
	for i, phone := range req.Recipients {
		result := s.dispatcher.SendSMSViaAzure(ctx, phone, message)
		summary.Details = append(summary.Details, dispatch.Detail{Recipient: phone, Status: result.Status, Message: result.Message})
		if result.OK() {
			summary.Success++
		} else {
			summary.Failed++
		}
		if req.Progress != nil {
			req.Progress(float64(i+1) / float64(total))
		}
	}

	rec := s.buildRecord(model.ChannelAzureSMS, req.User, "", message, recipientNames(summary), nil, summary)
	return s.finish(ctx, rec, summary)
}

func recipientNames(summary dispatch.Summary) []string {
	names := make([]string, 0, len(summary.Details))
	for _, d := range summary.Details {
		names = append(names, d.Recipient)
	}
	return names
}

func (s *SendService) buildRecord(channel model.Channel, user, subject, body string, recipients, attachments []string, summary dispatch.Summary) model.ActivityRecord {
	recorded := recipients
	if len(recorded) > model.MaxRecordedRecipients {
		recorded = recorded[:model.MaxRecordedRecipients]
	}
	return model.ActivityRecord{
		ID:             uuid.NewString(),
		Channel:        channel,
		User:           user,
		Subject:        subject,
		MessagePreview: truncateRunes(body, previewRunes),
		Recipients:     len(recipients),
		RecipientList:  recorded,
		Attachments:    attachments,
		Success:        summary.Success,
		Failed:         summary.Failed,
		Timestamp:      s.now().UTC(),
	}
}

func (s *SendService) finish(ctx context.Context, rec model.ActivityRecord, summary dispatch.Summary) (*SendReport, error) {
	if err := s.activity.Append(ctx, rec); err != nil {
		// The batch already went out; surface the bookkeeping failure
		// in the log but do not fail the send.
		s.log.Error().Err(err).Msg("failed to record activity")
	}
	s.log.SendResult(string(rec.Channel), rec.User, rec.Recipients, rec.Success, rec.Failed)
	return &SendReport{Summary: summary, Activity: rec}, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
