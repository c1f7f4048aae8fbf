package model

import "time"

// TaskStatus is the lifecycle state of a scheduled task.
// The transition is monotonic: pending -> completed, never reversed.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// ScheduledTask is a deferred send request. Due tasks are executed only by
// an explicit trigger; there is no background scheduler.
type ScheduledTask struct {
	ID            string           `json:"id"`
	Channel       Channel          `json:"type"`
	Recipient     string           `json:"recipient"`
	Subject       string           `json:"subject,omitempty"`
	Body          string           `json:"body"`
	Link          string           `json:"customLink,omitempty"`
	Carrier       string           `json:"carrier,omitempty"`
	Transport     *TransportConfig `json:"smtpConfig,omitempty"`
	ScheduledTime time.Time        `json:"scheduledTime"`
	Status        TaskStatus       `json:"status"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     time.Time        `json:"created"`
	ExecutedAt    *time.Time       `json:"executedAt,omitempty"`
}

// Due reports whether the task should run at the given time.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Status == TaskStatusPending && !t.ScheduledTime.After(now)
}
