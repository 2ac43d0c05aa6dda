package providers

import (
	"context"
	"errors"

	"github.com/kaiteddy/garage-comms/internal/model"
)

var ErrNotConfigured = errors.New("provider not configured")

// SendRequest is the normalized input every channel adapter accepts.
type SendRequest struct {
	To                  string
	Subject             string // email only
	Body                string
	PlainBody           string // email only, plain-text alternative
	CustomerID          int64
	VehicleRegistration string
	MessageType         model.MessageType
	Urgency             string
}

// SendResult normalizes the three provider SDK response shapes into one
// interface: success flag, provider id, cost and error detail. Provider
// specific quirks stay inside the adapters.
type SendResult struct {
	Success    bool
	ProviderID string
	Cost       float64
	Error      string
}

// Provider is one channel adapter. Send returns an error only when the call
// itself failed (transport, marshalling); a provider-reported unsuccessful
// send comes back as a result with Success=false.
type Provider interface {
	Channel() model.Channel
	Configured() bool
	Send(ctx context.Context, req *SendRequest) (*SendResult, error)
}

// Registry holds the adapter per channel and answers capability queries.
type Registry struct {
	byChannel map[model.Channel]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{byChannel: make(map[model.Channel]Provider, len(providers))}
	for _, p := range providers {
		r.byChannel[p.Channel()] = p
	}
	return r
}

func (r *Registry) Get(c model.Channel) (Provider, bool) {
	p, ok := r.byChannel[c]
	return p, ok
}

// Capabilities reflects which integrations are configured, resolved once and
// injected wherever capability checks are needed.
func (r *Registry) Capabilities() model.ProviderCapabilities {
	caps := model.ProviderCapabilities{}
	for c, p := range r.byChannel {
		if !p.Configured() {
			continue
		}
		switch c {
		case model.ChannelWhatsApp:
			caps.WhatsApp = true
		case model.ChannelSMS:
			caps.SMS = true
		case model.ChannelEmail:
			caps.Email = true
		}
	}
	return caps
}
