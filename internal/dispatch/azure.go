package dispatch

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dragonmail/dragonmail/internal/model"
)

const azureSMSAPIVersion = "2021-03-07"

// AzureSMS implements SmsProvider against the Azure Communication Services
// SMS REST API, authenticating with the resource access key via HMAC-SHA256
// request signing.
type AzureSMS struct {
	endpoint  *url.URL
	accessKey []byte
	from      string
	client    *http.Client
	now       func() time.Time
}

// NewAzureSMS builds a provider from a stored credential. The connection
// string carries the resource endpoint and base64 access key in
// "endpoint=...;accesskey=..." form.
func NewAzureSMS(cred model.AzureSMSCredential) (*AzureSMS, error) {
	if !cred.Configured() {
		return nil, errors.New("azure sms: credential is not configured")
	}

	var endpoint, key string
	for _, part := range strings.Split(cred.ConnectionString, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "endpoint":
			endpoint = strings.TrimSpace(value)
		case "accesskey":
			key = strings.TrimSpace(value)
		}
	}
	if endpoint == "" || key == "" {
		return nil, errors.New("azure sms: connection string must contain endpoint and accesskey")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("azure sms: invalid endpoint: %w", err)
	}

	accessKey, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("azure sms: invalid access key: %w", err)
	}

	return &AzureSMS{
		endpoint:  u,
		accessKey: accessKey,
		from:      cred.PhoneNumber,
		client:    &http.Client{Timeout: 30 * time.Second},
		now:       time.Now,
	}, nil
}

type azureSendRequest struct {
	From          string           `json:"from"`
	SMSRecipients []azureRecipient `json:"smsRecipients"`
	Message       string           `json:"message"`
}

type azureRecipient struct {
	To string `json:"to"`
}

type azureSendResponse struct {
	Value []azureRecipientResult `json:"value"`
}

type azureRecipientResult struct {
	To           string `json:"to"`
	MessageID    string `json:"messageId"`
	StatusCode   int    `json:"httpStatusCode"`
	Successful   bool   `json:"successful"`
	ErrorMessage string `json:"errorMessage"`
}

// Send delivers one SMS and returns the provider's message id, or the
// provider's per-recipient error text on failure.
func (a *AzureSMS) Send(ctx context.Context, to, message string) (string, error) {
	body, err := json.Marshal(azureSendRequest{
		From:          a.from,
		SMSRecipients: []azureRecipient{{To: to}},
		Message:       message,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	u := *a.endpoint
	u.Path = "/sms"
	u.RawQuery = "api-version=" + azureSMSAPIVersion

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	a.sign(req, body)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("provider returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	var parsed azureSendResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Value) == 0 {
		return "", errors.New("no response from Azure")
	}

	result := parsed.Value[0]
	if !result.Successful {
		return "", errors.New(result.ErrorMessage)
	}
	return result.MessageID, nil
}

// sign adds the x-ms-date, x-ms-content-sha256 and Authorization headers
// per the Communication Services HMAC authentication scheme.
func (a *AzureSMS) sign(req *http.Request, body []byte) {
	date := a.now().UTC().Format(http.TimeFormat)

	contentHash := sha256.Sum256(body)
	contentHashB64 := base64.StdEncoding.EncodeToString(contentHash[:])

	stringToSign := strings.Join([]string{
		req.Method,
		req.URL.RequestURI(),
		date + ";" + req.URL.Host + ";" + contentHashB64,
	}, "\n")

	mac := hmac.New(sha256.New, a.accessKey)
	mac.Write([]byte(stringToSign))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("x-ms-date", date)
	req.Header.Set("x-ms-content-sha256", contentHashB64)
	req.Header.Set("Authorization",
		"HMAC-SHA256 SignedHeaders=x-ms-date;host;x-ms-content-sha256&Signature="+signature)
}
