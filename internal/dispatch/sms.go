package dispatch

import (
	"context"
	"errors"
	"strings"

	"github.com/dragonmail/dragonmail/internal/gateway"
	"github.com/dragonmail/dragonmail/internal/model"
)

// ErrInvalidPhone is returned when a phone number does not normalize to
// exactly 10 digits.
var ErrInvalidPhone = errors.New("phone number must be 10 digits")

// NormalizePhone strips everything but digits and returns a 10-digit US
// number. An 11-digit number with a leading country code 1 is accepted and
// the leading digit dropped; any other length fails validation.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// SendSMSViaGateway delivers an SMS through a carrier's email-to-SMS
// gateway. carrierOrDomain is a carrier name resolved through the gateway
// table, or, when direct is true, a gateway domain used as-is. A carrier
// that resolves to the auto pseudo-gateway delegates to auto-detect.
func (d *Dispatcher) SendSMSViaGateway(ctx context.Context, transport model.TransportConfig, phone, carrierOrDomain, message string, direct bool) Result {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return failedf("%s", err)
	}

	domain := carrierOrDomain
	if !direct {
		domain, err = gateway.Lookup(carrierOrDomain)
		if err != nil {
			return failedf("%s", err)
		}
	}

	if gateway.IsAuto(domain) {
		return d.SendSMSAutoDetect(ctx, transport, phone, message)
	}

	msg := Email{
		From:    transport.Email,
		To:      normalized + "@" + domain,
		Subject: "", // SMS gateways ignore the subject line
		Body:    message,
	}
	if err := d.submitter.Submit(ctx, transport, msg); err != nil {
		return failedf("%s", err)
	}
	return sentf("SMS sent to %s", phone)
}

// SendSMSAutoDetect broadcasts across the fixed gateway priority list and
// returns on the first accepted submission. This is a blind broadcast, not
// carrier lookup: a gateway earlier in the list may accept silently even
// when the recipient is on another network, so duplicate delivery is an
// accepted side effect.
func (d *Dispatcher) SendSMSAutoDetect(ctx context.Context, transport model.TransportConfig, phone, message string) Result {
	for i, domain := range gateway.AutoGateways {
		result := d.SendSMSViaGateway(ctx, transport, phone, domain, message, true)
		if result.OK() {
			return result
		}
		if i < len(gateway.AutoGateways)-1 {
			d.sleep(d.pause)
		}
	}
	return failedf("SMS failed via all carriers")
}

// SendSMSViaAzure delivers an SMS through the cloud SMS provider. The
// destination gains a leading + (with a default +1 country code) before the
// provider is invoked.
func (d *Dispatcher) SendSMSViaAzure(ctx context.Context, phone, message string) Result {
	if d.sms == nil {
		return failedf("Azure SMS not configured")
	}

	to := strings.TrimSpace(phone)
	if !strings.HasPrefix(to, "+") {
		to = "+1" + to // assume US
	}

	id, err := d.sms.Send(ctx, to, message)
	if err != nil {
		return failedf("Azure SMS Error: %s", err)
	}
	return sentf("SMS sent successfully! ID: %s", id)
}
