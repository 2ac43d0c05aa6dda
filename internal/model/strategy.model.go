package model

// CommunicationStrategy is the planned execution order for one dispatch.
// Computed once per request and consumed read-only by the executor, so the
// "available minus primary" set is never re-derived.
type CommunicationStrategy struct {
	PrimaryChannel    Channel   `json:"primary_channel"`
	FallbackChannels  []Channel `json:"fallback_channels"`
	Reasoning         []string  `json:"reasoning"`
	EstimatedCost     float64   `json:"estimated_cost"`
	EstimatedDelivery string    `json:"estimated_delivery"`
	Forced            bool      `json:"forced"`
}

// Channels returns the full attempt order: primary first, then fallbacks.
func (s *CommunicationStrategy) Channels() []Channel {
	out := make([]Channel, 0, 1+len(s.FallbackChannels))
	out = append(out, s.PrimaryChannel)
	out = append(out, s.FallbackChannels...)
	return out
}
