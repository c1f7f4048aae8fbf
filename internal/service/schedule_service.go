package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/logger"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/dragonmail/dragonmail/internal/repository"
)

// Schedule validation errors
var (
	ErrMissingRecipient = errors.New("recipient is required")
	ErrMissingTransport = errors.New("an SMTP transport is required for this channel")
	ErrUnknownChannel   = errors.New("unknown channel")
)

// ScheduleService manages deferred sends. Tasks run only when an
// operator triggers RunDue; there is no background scheduler.
type ScheduleService struct {
	tasks repository.TaskRepository
	send  *SendService
	log   *logger.Logger
	now   func() time.Time
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(tasks repository.TaskRepository, send *SendService, log *logger.Logger) *ScheduleService {
	return &ScheduleService{
		tasks: tasks,
		send:  send,
		log:   log.WithComponent("schedule_service"),
		now:   time.Now,
	}
}

// Add validates and stores a new task. IDs are short so operators can
// quote them; collisions are rejected by the repository.
func (s *ScheduleService) Add(ctx context.Context, task *model.ScheduledTask) error {
	if task.Recipient == "" {
		return ErrMissingRecipient
	}
	switch task.Channel {
	case model.ChannelEmail, model.ChannelSMS:
		if task.Transport == nil {
			return ErrMissingTransport
		}
	case model.ChannelAzureSMS:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChannel, task.Channel)
	}

	task.ID = uuid.NewString()[:8]
	task.Status = model.TaskStatusPending
	task.CreatedAt = s.now().UTC()
	if err := s.tasks.Add(ctx, task); err != nil {
		return err
	}
	s.log.Info().Str("task_id", task.ID).Str("channel", string(task.Channel)).
		Time("scheduled_time", task.ScheduledTime).Msg("task scheduled")
	return nil
}

// List returns every task, pending and completed.
func (s *ScheduleService) List(ctx context.Context) ([]model.ScheduledTask, error) {
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.ScheduledTask{}
	}
	return tasks, nil
}

// Delete removes a task regardless of status.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}

// TaskResult reports the outcome of one executed task.
type TaskResult struct {
	Task   model.ScheduledTask `json:"task"`
	Result dispatch.Result     `json:"result"`
}

// RunDue executes every pending task whose scheduled time has passed.
// Each task is sent and then marked completed whatever the outcome;
// the send result lands in the activity log either way.
func (s *ScheduleService) RunDue(ctx context.Context) ([]TaskResult, error) {
	now := s.now()
	due, err := s.tasks.Due(ctx, now)
	if err != nil {
		return nil, err
	}

	results := make([]TaskResult, 0, len(due))
	for _, task := range due {
		result := s.execute(ctx, task)
		if err := s.tasks.MarkCompleted(ctx, task.ID, s.now().UTC()); err != nil {
			s.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to mark task completed")
		}
		s.log.Info().Str("task_id", task.ID).Str("status", string(result.Status)).Msg("task executed")
		results = append(results, TaskResult{Task: task, Result: result})
	}
	return results, nil
}

func (s *ScheduleService) execute(ctx context.Context, task model.ScheduledTask) dispatch.Result {
	switch task.Channel {
	case model.ChannelEmail:
		report, err := s.send.SendEmail(ctx, EmailSendRequest{
			Transport:  *task.Transport,
			Recipients: []string{task.Recipient},
			Subject:    task.Subject,
			Body:       task.Body,
			Link:       task.Link,
			User:       task.CreatedBy,
		})
		return singleResult(report, err)
	case model.ChannelSMS:
		report, err := s.send.SendSMS(ctx, SMSSendRequest{
			Transport: *task.Transport,
			Recipients: []dispatch.SMSRecipient{
				{Phone: task.Recipient, Carrier: task.Carrier},
			},
			Message: task.Body,
			Link:    task.Link,
			User:    task.CreatedBy,
		})
		return singleResult(report, err)
	case model.ChannelAzureSMS:
		report, err := s.send.SendAzureSMS(ctx, AzureSMSSendRequest{
			Recipients: []string{task.Recipient},
			Message:    task.Body,
			Link:       task.Link,
			User:       task.CreatedBy,
		})
		return singleResult(report, err)
	default:
		return dispatch.Result{Status: dispatch.StatusFailed, Message: fmt.Sprintf("unknown channel: %s", task.Channel)}
	}
}

func singleResult(report *SendReport, err error) dispatch.Result {
	if err != nil {
		return dispatch.Result{Status: dispatch.StatusFailed, Message: err.Error()}
	}
	if len(report.Summary.Details) > 0 {
		first := report.Summary.Details[0]
		return dispatch.Result{Status: first.Status, Message: first.Message}
	}
	return dispatch.Result{Status: dispatch.StatusFailed, Message: "nothing was sent"}
}
