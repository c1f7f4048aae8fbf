// Package gateway maps US carrier names to their email-to-SMS gateway
// domains.
package gateway

import "fmt"

// AutoCarrier is the pseudo-carrier that broadcasts across the priority
// list instead of targeting one gateway.
const AutoCarrier = "Auto (Try All)"

// carriers maps carrier name to gateway domain. The table is fixed; several
// MVNOs ride a host network and share its gateway.
var carriers = map[string]string{
	AutoCarrier:         "auto",
	"AT&T":              "txt.att.net",
	"T-Mobile":          "tmomail.net",
	"Verizon":           "vtext.com",
	"Sprint":            "messaging.sprintpcs.com",
	"US Cellular":       "email.uscc.net",
	"Metro PCS":         "mymetropcs.com",
	"Boost Mobile":      "sms.myboostmobile.com",
	"Cricket":           "sms.cricketwireless.net",
	"Virgin Mobile":     "vmobl.com",
	"Google Fi":         "msg.fi.google.com",
	"Republic Wireless": "text.republicwireless.com",
	"Straight Talk":     "vtext.com",
	"Mint Mobile":       "tmomail.net",
	"Xfinity Mobile":    "vtext.com",
	"Visible":           "vtext.com",
}

// carrierOrder keeps listings stable for the API.
var carrierOrder = []string{
	AutoCarrier,
	"AT&T",
	"T-Mobile",
	"Verizon",
	"Sprint",
	"US Cellular",
	"Metro PCS",
	"Boost Mobile",
	"Cricket",
	"Virgin Mobile",
	"Google Fi",
	"Republic Wireless",
	"Straight Talk",
	"Mint Mobile",
	"Xfinity Mobile",
	"Visible",
}

// AutoGateways is the auto-detect priority list, ordered by approximate US
// market share.
var AutoGateways = []string{
	"vtext.com",                // Verizon
	"tmomail.net",              // T-Mobile
	"txt.att.net",              // AT&T
	"messaging.sprintpcs.com",  // Sprint/T-Mobile
}

// Lookup resolves a carrier name to its gateway domain. The domain "auto"
// marks the auto-detect pseudo-carrier.
func Lookup(carrier string) (string, error) {
	domain, ok := carriers[carrier]
	if !ok {
		return "", fmt.Errorf("unknown carrier: %s", carrier)
	}
	return domain, nil
}

// IsAuto reports whether the carrier name or gateway domain selects
// auto-detect mode.
func IsAuto(carrierOrDomain string) bool {
	return carrierOrDomain == AutoCarrier || carrierOrDomain == "auto" || carrierOrDomain == "Auto"
}

// Entry is one carrier listing.
type Entry struct {
	Carrier string `json:"carrier"`
	Domain  string `json:"domain"`
}

// List returns all carriers in stable order.
func List() []Entry {
	entries := make([]Entry, 0, len(carrierOrder))
	for _, name := range carrierOrder {
		entries = append(entries, Entry{Carrier: name, Domain: carriers[name]})
	}
	return entries
}
