package model

import "time"

// TransportConfig is a named SMTP profile owned by one operator.
// Profiles are created and deleted, never updated in place.
type TransportConfig struct {
	Name      string    `json:"name"`
	Host      string    `json:"server"`
	Port      int       `json:"port"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	UseTLS    bool      `json:"useTls"`
	CreatedAt time.Time `json:"createdAt"`
}

// SMTPPreset is a well-known provider default offered when creating a profile.
type SMTPPreset struct {
	Name        string `json:"name"`
	Host        string `json:"server"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"useTls"`
	Description string `json:"description"`
}

// SMTPPresets lists common submission endpoints. "Custom SMTP" is the
// blank entry for anything not listed.
var SMTPPresets = []SMTPPreset{
	{Name: "Gmail", Host: "smtp.gmail.com", Port: 587, UseTLS: true, Description: "Google Gmail - requires App Password"},
	{Name: "Outlook/Hotmail", Host: "smtp-mail.outlook.com", Port: 587, UseTLS: true, Description: "Microsoft personal accounts"},
	{Name: "Office 365 Business", Host: "smtp.office365.com", Port: 587, UseTLS: true, Description: "Microsoft 365 Business accounts"},
	{Name: "Yahoo", Host: "smtp.mail.yahoo.com", Port: 587, UseTLS: true, Description: "Yahoo Mail - requires App Password"},
	{Name: "iCloud", Host: "smtp.mail.me.com", Port: 587, UseTLS: true, Description: "Apple iCloud Mail"},
	{Name: "Zoho", Host: "smtp.zoho.com", Port: 587, UseTLS: true, Description: "Zoho Mail"},
	{Name: "SendGrid", Host: "smtp.sendgrid.net", Port: 587, UseTLS: true, Description: "SendGrid SMTP Relay"},
	{Name: "Mailgun", Host: "smtp.mailgun.org", Port: 587, UseTLS: true, Description: "Mailgun SMTP"},
	{Name: "Amazon SES (US East)", Host: "email-smtp.us-east-1.amazonaws.com", Port: 587, UseTLS: true, Description: "Amazon SES US East"},
	{Name: "Amazon SES (EU West)", Host: "email-smtp.eu-west-1.amazonaws.com", Port: 587, UseTLS: true, Description: "Amazon SES EU West"},
	{Name: "Postmark", Host: "smtp.postmarkapp.com", Port: 587, UseTLS: true, Description: "Postmark transactional email"},
	{Name: "FastMail", Host: "smtp.fastmail.com", Port: 587, UseTLS: true, Description: "FastMail - requires App Password"},
	{Name: "GoDaddy", Host: "smtpout.secureserver.net", Port: 465, UseTLS: false, Description: "GoDaddy Workspace Email"},
	{Name: "Brevo (Sendinblue)", Host: "smtp-relay.brevo.com", Port: 587, UseTLS: true, Description: "Brevo (formerly Sendinblue)"},
	{Name: "Custom SMTP", Host: "", Port: 587, UseTLS: true, Description: "Custom SMTP server"},
}

// AzureSMSCredential is the stored cloud SMS credential: an Azure
// Communication Services connection string plus the verified sending number.
type AzureSMSCredential struct {
	ConnectionString string `json:"connectionString"`
	PhoneNumber      string `json:"phoneNumber"`
}

// Configured reports whether both credential fields are set.
func (c AzureSMSCredential) Configured() bool {
	return c.ConnectionString != "" && c.PhoneNumber != ""
}
