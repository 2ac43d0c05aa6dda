package model

import (
	"strings"
	"time"
)

// CommunicationProfile is the resolved view of a customer's messaging
// capability. It is built fresh per dispatch request and never persisted.
type CommunicationProfile struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`

	Vehicle *Vehicle      `json:"vehicle,omitempty"` // most recently associated vehicle
	Consent ConsentRecord `json:"consent"`

	// CustomerStoredPreference is the explicit channel preference copied from
	// the customer row; empty when the customer never picked one.
	CustomerStoredPreference string `json:"stored_preference,omitempty"`

	OptOut   bool       `json:"opt_out"`
	OptOutAt *time.Time `json:"opt_out_at,omitempty"`

	// HasWhatsApp means there is evidence of a prior WhatsApp conversation or
	// send, as opposed to the channel merely being capable.
	HasWhatsApp bool `json:"has_whatsapp"`

	WhatsAppCapable bool `json:"whatsapp_capable"`
	SMSCapable      bool `json:"sms_capable"`
	EmailCapable    bool `json:"email_capable"`

	LastSent map[Channel]time.Time `json:"last_sent,omitempty"`

	// AvailableChannels lists capable channels in evaluation order
	// (whatsapp, sms, email).
	AvailableChannels []Channel `json:"available_channels"`
	PreferredChannel  Channel   `json:"preferred_channel"`
}

func (p *CommunicationProfile) Capable(c Channel) bool {
	switch c {
	case ChannelWhatsApp:
		return p.WhatsAppCapable
	case ChannelSMS:
		return p.SMSCapable
	case ChannelEmail:
		return p.EmailCapable
	}
	return false
}

func (p *CommunicationProfile) Available(c Channel) bool {
	for _, ch := range p.AvailableChannels {
		if ch == c {
			return true
		}
	}
	return false
}

// ContactValue returns the raw contact field a channel would deliver to.
func (p *CommunicationProfile) ContactValue(c Channel) string {
	switch c {
	case ChannelWhatsApp, ChannelSMS:
		return p.Phone
	case ChannelEmail:
		return p.Email
	}
	return ""
}

// EvaluateCapabilities fills the per-channel capability flags and the derived
// AvailableChannels and PreferredChannel fields from the raw profile data.
// Capability rules, per channel and independent of each other:
//
//	whatsapp: phone present, not opted out, consent not explicitly denied,
//	          no opt-out timestamp, WhatsApp integration configured
//	sms:      same with SMS consent and integration
//	email:    email present and contains "@", same with email consent and
//	          integration
func (p *CommunicationProfile) EvaluateCapabilities(caps ProviderCapabilities) {
	blocked := p.OptOut || p.OptOutAt != nil

	p.WhatsAppCapable = p.Phone != "" && !blocked &&
		!p.Consent.WhatsApp.Denied() && caps.WhatsApp
	p.SMSCapable = p.Phone != "" && !blocked &&
		!p.Consent.SMS.Denied() && caps.SMS
	p.EmailCapable = p.Email != "" && strings.Contains(p.Email, "@") && !blocked &&
		!p.Consent.Email.Denied() && caps.Email

	p.AvailableChannels = p.AvailableChannels[:0]
	for _, c := range ChannelEvaluationOrder {
		if p.Capable(c) {
			p.AvailableChannels = append(p.AvailableChannels, c)
		}
	}

	p.PreferredChannel = p.resolvePreferred()
}

func (p *CommunicationProfile) resolvePreferred() Channel {
	if stored, err := ParseChannel(p.CustomerStoredPreference); err == nil && p.Available(stored) {
		return stored
	}
	if p.WhatsAppCapable && p.HasWhatsApp {
		return ChannelWhatsApp
	}
	if p.SMSCapable {
		return ChannelSMS
	}
	if p.EmailCapable {
		return ChannelEmail
	}
	if len(p.AvailableChannels) > 0 {
		return p.AvailableChannels[0]
	}
	return ChannelSMS // hardcoded default when nothing is available
}

