package model

import (
	"errors"
	"time"
)

// MessageType is the category of an outbound message.
type MessageType string

const (
	MessageTypeMOTReminder     MessageType = "mot_reminder"
	MessageTypeServiceReminder MessageType = "service_reminder"
	MessageTypeAppointment     MessageType = "appointment_confirmation"
	MessageTypeGeneric         MessageType = "generic"
)

func NormalizeMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageTypeMOTReminder, MessageTypeServiceReminder, MessageTypeAppointment:
		return MessageType(s)
	}
	return MessageTypeGeneric
}

const UrgencyNormal = "normal"

// DispatchRequest is the caller-facing input for one outbound message.
// Exactly one of CustomerID / VehicleRegistration must be supplied.
type DispatchRequest struct {
	CustomerID          int64
	VehicleRegistration string
	MessageType         MessageType
	Urgency             string
	Content             string // auto-generated from message type when empty
	Subject             string // auto-generated when empty (email only)
	DryRun              bool
	ForceChannel        Channel // empty means no override
	EnableFallback      bool
	IgnoreCooldown      bool
}

var ErrMissingRecipient = errors.New("either customer_id or vehicle_registration is required")

func (r DispatchRequest) Validate() error {
	if r.CustomerID == 0 && r.VehicleRegistration == "" {
		return ErrMissingRecipient
	}
	return nil
}

// AttemptStatus is the outcome of one try on one channel.
type AttemptStatus string

const (
	AttemptSkipped AttemptStatus = "skipped" // channel unavailable, no provider call
	AttemptSuccess AttemptStatus = "success"
	AttemptFailed  AttemptStatus = "failed" // provider reported an unsuccessful send
	AttemptError   AttemptStatus = "error"  // provider call itself failed
)

// ExecutionAttempt records one try on one channel, appended in strategy order.
type ExecutionAttempt struct {
	Channel    Channel       `json:"channel"`
	Status     AttemptStatus `json:"status"`
	ProviderID string        `json:"provider_id,omitempty"`
	Cost       float64       `json:"cost"`
	Error      string        `json:"error,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// FinalResult is the terminal outcome of a dispatch.
type FinalResult struct {
	Success                bool    `json:"success"`
	Channel                Channel `json:"channel,omitempty"`
	ProviderID             string  `json:"provider_id,omitempty"`
	Cost                   float64 `json:"cost"`
	RequiresManualFollowUp bool    `json:"requires_manual_follow_up"`
	Reason                 string  `json:"reason,omitempty"`
}

// ExecutionReport is the aggregate result returned to the caller. Its
// terminal outcome is durably written before the request completes.
type ExecutionReport struct {
	RequestID    string             `json:"request_id"`
	CustomerID   int64              `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	Strategy     *CommunicationStrategy `json:"strategy"`
	Attempts     []ExecutionAttempt `json:"attempts"`
	FinalResult  FinalResult        `json:"final_result"`
	TotalCost    float64            `json:"total_cost"`
	Duration     time.Duration      `json:"duration_ms"`
}

// DispatchPreview is the dry-run response: the resolved profile, the planned
// strategy and the rendered message for every channel.
type DispatchPreview struct {
	Profile  *CommunicationProfile  `json:"profile"`
	Strategy *CommunicationStrategy `json:"strategy"`
	Rendered map[Channel]string     `json:"rendered"`
	Subject  string                 `json:"subject"`
}
