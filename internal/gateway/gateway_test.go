package gateway_test

import (
	"testing"

	"github.com/dragonmail/dragonmail/internal/gateway"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		carrier string
		domain  string
	}{
		{"Verizon", "vtext.com"},
		{"T-Mobile", "tmomail.net"},
		{"AT&T", "txt.att.net"},
		{"Straight Talk", "vtext.com"},
		{gateway.AutoCarrier, "auto"},
	}
	for _, tc := range tests {
		got, err := gateway.Lookup(tc.carrier)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.carrier, err)
		}
		if got != tc.domain {
			t.Fatalf("Lookup(%q) = %q, want %q", tc.carrier, got, tc.domain)
		}
	}
}

func TestLookup_UnknownCarrier(t *testing.T) {
	t.Parallel()

	if _, err := gateway.Lookup("Carrier Pigeon"); err == nil {
		t.Fatal("expected error for unknown carrier")
	}
}

func TestAutoGatewayOrder(t *testing.T) {
	t.Parallel()

	want := []string{"vtext.com", "tmomail.net", "txt.att.net", "messaging.sprintpcs.com"}
	if len(gateway.AutoGateways) != len(want) {
		t.Fatalf("expected %d auto gateways, got %d", len(want), len(gateway.AutoGateways))
	}
	for i, domain := range want {
		if gateway.AutoGateways[i] != domain {
			t.Fatalf("auto gateway %d = %q, want %q", i, gateway.AutoGateways[i], domain)
		}
	}
}

func TestList_StartsWithAuto(t *testing.T) {
	t.Parallel()

	entries := gateway.List()
	if len(entries) != 16 {
		t.Fatalf("expected 16 entries, got %d", len(entries))
	}
	if entries[0].Carrier != gateway.AutoCarrier {
		t.Fatalf("expected auto pseudo-carrier first, got %q", entries[0].Carrier)
	}
}
