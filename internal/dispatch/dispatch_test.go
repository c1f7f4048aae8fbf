package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dragonmail/dragonmail/internal/config"
	"github.com/dragonmail/dragonmail/internal/dispatch"
	"github.com/dragonmail/dragonmail/internal/model"
)

// fakeSubmitter records every submission and fails according to failFn.
type fakeSubmitter struct {
	mu     sync.Mutex
	calls  []dispatch.Email
	failFn func(msg dispatch.Email) error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ model.TransportConfig, msg dispatch.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msg)
	if f.failFn != nil {
		return f.failFn(msg)
	}
	return nil
}

func (f *fakeSubmitter) sent() []dispatch.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatch.Email(nil), f.calls...)
}

func newDispatcher(sub dispatch.Submitter, sms dispatch.SmsProvider) *dispatch.Dispatcher {
	return dispatch.New(sub, sms, config.DispatchConfig{AutoDetectPause: time.Millisecond},
		dispatch.WithSleep(func(time.Duration) {}))
}

var testTransport = model.TransportConfig{
	Name:     "test",
	Host:     "smtp.example.com",
	Port:     587,
	Email:    "sender@example.com",
	Password: "secret",
	UseTLS:   true,
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"5551234567", "5551234567", false},
		{"(555) 123-4567", "5551234567", false},
		{"1-555-123-4567", "5551234567", false},
		{"15551234567", "5551234567", false},
		{"+1 555 123 4567", "5551234567", false},
		{"25551234567", "", true}, // 11 digits, wrong country code
		{"555123456", "", true},   // 9 digits
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := dispatch.NormalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizePhone(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizePhone(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSendEmail_Success(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	d := newDispatcher(sub, nil)

	result := d.SendEmail(context.Background(), testTransport,
		"to@example.com", "Hello", "body", false, nil, "Acme", "reply@example.com")

	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	calls := sub.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(calls))
	}
	msg := calls[0]
	if msg.To != "to@example.com" || msg.Subject != "Hello" || msg.FromName != "Acme" || msg.ReplyTo != "reply@example.com" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.From != testTransport.Email {
		t.Fatalf("From = %q, want transport sender", msg.From)
	}
}

func TestSendEmail_TransportFailureBecomesResult(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{failFn: func(dispatch.Email) error {
		return errors.New("authentication failed: 535 bad credentials")
	}}
	d := newDispatcher(sub, nil)

	result := d.SendEmail(context.Background(), testTransport,
		"to@example.com", "Hello", "body", false, nil, "", "")

	if result.OK() {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Message, "authentication failed") {
		t.Fatalf("expected cause in message, got %q", result.Message)
	}
}

func TestSendSMSViaGateway_BuildsGatewayAddress(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	d := newDispatcher(sub, nil)

	result := d.SendSMSViaGateway(context.Background(), testTransport,
		"(555) 123-4567", "Verizon", "ping", false)

	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	calls := sub.sent()
	if len(calls) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(calls))
	}
	if calls[0].To != "5551234567@vtext.com" {
		t.Fatalf("destination = %q, want 5551234567@vtext.com", calls[0].To)
	}
	if calls[0].Subject != "" {
		t.Fatalf("SMS subject must be empty, got %q", calls[0].Subject)
	}
}

func TestSendSMSViaGateway_UnknownCarrier(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	d := newDispatcher(sub, nil)

	result := d.SendSMSViaGateway(context.Background(), testTransport,
		"5551234567", "Carrier Pigeon", "ping", false)

	if result.OK() {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(result.Message, "unknown carrier") {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if len(sub.sent()) != 0 {
		t.Fatal("no network attempt may be made on validation failure")
	}
}

func TestSendSMSViaGateway_InvalidPhoneSkipsNetwork(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	d := newDispatcher(sub, nil)

	result := d.SendSMSViaGateway(context.Background(), testTransport,
		"12345", "Verizon", "ping", false)

	if result.OK() {
		t.Fatal("expected validation failure")
	}
	if len(sub.sent()) != 0 {
		t.Fatal("no network attempt may be made on validation failure")
	}
}

func TestSendSMSViaGateway_AutoCarrierDelegates(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	d := newDispatcher(sub, nil)

	result := d.SendSMSViaGateway(context.Background(), testTransport,
		"5551234567", "Auto (Try All)", "ping", false)

	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	// First auto gateway accepts immediately.
	calls := sub.sent()
	if len(calls) != 1 || calls[0].To != "5551234567@vtext.com" {
		t.Fatalf("expected one attempt against vtext.com, got %+v", calls)
	}
}

func TestSendSMSAutoDetect_AllGatewaysFail(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{failFn: func(dispatch.Email) error {
		return errors.New("connection refused")
	}}
	d := newDispatcher(sub, nil)

	result := d.SendSMSAutoDetect(context.Background(), testTransport, "5551234567", "ping")

	if result.OK() {
		t.Fatal("expected aggregate failure")
	}
	if result.Message != "SMS failed via all carriers" {
		t.Fatalf("unexpected aggregate message %q", result.Message)
	}

	want := []string{
		"5551234567@vtext.com",
		"5551234567@tmomail.net",
		"5551234567@txt.att.net",
		"5551234567@messaging.sprintpcs.com",
	}
	calls := sub.sent()
	if len(calls) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(calls))
	}
	for i, dest := range want {
		if calls[i].To != dest {
			t.Fatalf("attempt %d = %q, want %q", i, calls[i].To, dest)
		}
	}
}

func TestSendSMSAutoDetect_StopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{failFn: func(msg dispatch.Email) error {
		if strings.HasSuffix(msg.To, "@vtext.com") {
			return errors.New("rejected")
		}
		return nil
	}}
	d := newDispatcher(sub, nil)

	result := d.SendSMSAutoDetect(context.Background(), testTransport, "5551234567", "ping")

	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	calls := sub.sent()
	if len(calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(calls))
	}
	if calls[1].To != "5551234567@tmomail.net" {
		t.Fatalf("second attempt = %q, want tmomail.net", calls[1].To)
	}
}

func TestSendSMSViaAzure_NotConfigured(t *testing.T) {
	t.Parallel()

	d := newDispatcher(&fakeSubmitter{}, nil)

	result := d.SendSMSViaAzure(context.Background(), "5551234567", "ping")
	if result.OK() {
		t.Fatal("expected failure without provider")
	}
	if !strings.Contains(result.Message, "not configured") {
		t.Fatalf("expected guidance message, got %q", result.Message)
	}
}

type fakeSmsProvider struct {
	to  string
	id  string
	err error
}

func (f *fakeSmsProvider) Send(_ context.Context, to, _ string) (string, error) {
	f.to = to
	return f.id, f.err
}

func TestSendSMSViaAzure_NormalizesDestination(t *testing.T) {
	t.Parallel()

	provider := &fakeSmsProvider{id: "msg-1"}
	d := newDispatcher(&fakeSubmitter{}, provider)

	result := d.SendSMSViaAzure(context.Background(), "5551234567", "ping")
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if provider.to != "+15551234567" {
		t.Fatalf("destination = %q, want +15551234567", provider.to)
	}
	if !strings.Contains(result.Message, "msg-1") {
		t.Fatalf("expected provider id in message, got %q", result.Message)
	}

	// Already-prefixed numbers pass through untouched.
	d.SendSMSViaAzure(context.Background(), "+445551234567", "ping")
	if provider.to != "+445551234567" {
		t.Fatalf("destination = %q, want +445551234567", provider.to)
	}
}
