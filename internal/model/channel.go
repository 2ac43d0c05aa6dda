package model

import "fmt"

// Channel is one outbound messaging medium.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

// ChannelEvaluationOrder is the order channels are checked for capability
// and the fixed reliability ranking used when no preference exists.
var ChannelEvaluationOrder = []Channel{ChannelWhatsApp, ChannelSMS, ChannelEmail}

func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelWhatsApp, ChannelSMS, ChannelEmail:
		return Channel(s), nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

// UnitCost is the flat per-message cost estimate for a channel.
func (c Channel) UnitCost() float64 {
	switch c {
	case ChannelWhatsApp:
		return 0.005
	case ChannelSMS:
		return 0.04
	case ChannelEmail:
		return 0.001
	}
	return 0
}

// DeliveryEstimate is a rough human-readable delivery-time estimate.
func (c Channel) DeliveryEstimate() string {
	switch c {
	case ChannelWhatsApp:
		return "seconds"
	case ChannelSMS:
		return "seconds"
	case ChannelEmail:
		return "minutes"
	}
	return "unknown"
}

// Consent is the stored customer permission for a channel. A consent that was
// never recorded is ConsentUnset, which still allows sending: only an explicit
// ConsentDenied blocks a channel.
type Consent string

const (
	ConsentGranted Consent = "granted"
	ConsentDenied  Consent = "denied"
	ConsentUnset   Consent = "unset"
)

// ConsentFromPtr maps a nullable stored flag to the tri-state consent.
func ConsentFromPtr(v *bool) Consent {
	if v == nil {
		return ConsentUnset
	}
	if *v {
		return ConsentGranted
	}
	return ConsentDenied
}

// Denied reports whether the consent explicitly blocks the channel.
func (c Consent) Denied() bool { return c == ConsentDenied }

// ProviderCapabilities reflects which sending integrations are configured.
// It is resolved once at startup and injected, so capability checks never
// read process-wide configuration at call time.
type ProviderCapabilities struct {
	WhatsApp bool `json:"whatsapp"`
	SMS      bool `json:"sms"`
	Email    bool `json:"email"`
}

func (p ProviderCapabilities) Has(c Channel) bool {
	switch c {
	case ChannelWhatsApp:
		return p.WhatsApp
	case ChannelSMS:
		return p.SMS
	case ChannelEmail:
		return p.Email
	}
	return false
}
