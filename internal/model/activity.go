package model

import "time"

// Channel identifies the delivery path of a completed send operation.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelAzureSMS Channel = "azure_sms"
)

// MaxRecordedRecipients caps how many recipient identifiers a single
// activity record keeps.
const MaxRecordedRecipients = 10

// ActivityRecord summarizes one completed send operation, single or bulk.
// Records are append-only; the only deletion path is clearing the whole log.
type ActivityRecord struct {
	ID             string    `json:"id"`
	Channel        Channel   `json:"type"`
	User           string    `json:"user"`
	Subject        string    `json:"subject"`
	MessagePreview string    `json:"messagePreview,omitempty"`
	Recipients     int       `json:"recipients"`
	RecipientList  []string  `json:"recipientList"`
	Attachments    []string  `json:"attachments,omitempty"`
	Success        int       `json:"success"`
	Failed         int       `json:"failed"`
	Timestamp      time.Time `json:"timestamp"`
}

// ActivityStats aggregates the log for the dashboard.
type ActivityStats struct {
	TotalEmail    int     `json:"totalEmail"`
	TotalSMS      int     `json:"totalSms"`
	TotalAzureSMS int     `json:"totalAzureSms"`
	Success       int     `json:"success"`
	Failed        int     `json:"failed"`
	SuccessRate   float64 `json:"successRate"`
}
