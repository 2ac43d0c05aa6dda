package model

import "time"

// Correspondence status values.
const (
	CorrespondenceStatusSent   = "sent"
	CorrespondenceStatusFailed = "failed"
)

// CategoryManualFollowUp marks an exhaustion record a human must act on.
const CategoryManualFollowUp = "manual_followup"

// CorrespondenceRecord is the durable row written for every terminal dispatch
// outcome: one per successful send, one per total exhaustion of channels.
type CorrespondenceRecord struct {
	ID                  int64     `json:"id"`
	CustomerID          int64     `json:"customer_id"`
	VehicleRegistration string    `json:"vehicle_registration,omitempty"`
	Channel             Channel   `json:"channel"`
	Direction           string    `json:"direction"` // always "outbound" here
	Subject             string    `json:"subject,omitempty"`
	Content             string    `json:"content"`
	ContactMethod       string    `json:"contact_method"` // phone / email
	ContactValue        string    `json:"contact_value"`
	Category            string    `json:"category"` // message type or manual_followup
	Urgency             string    `json:"urgency"`
	Cost                float64   `json:"cost"`
	Status              string    `json:"status"`

	// Only the id field of the channel actually used is populated.
	WhatsAppConversationID string `json:"whatsapp_conversation_id,omitempty"`
	SMSLogID               string `json:"sms_log_id,omitempty"`
	EmailMessageID         string `json:"email_message_id,omitempty"`

	RequiresResponse bool      `json:"requires_response"`
	CreatedAt        time.Time `json:"created_at"`
}

func (CorrespondenceRecord) TableName() string { return "correspondence" }

// ChannelStats is the per-channel slice of the 30-day statistics window.
type ChannelStats struct {
	Sent        int64   `json:"sent"`
	Failed      int64   `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	TotalCost   float64 `json:"total_cost"`
}

// CorrespondenceStats aggregates the trailing window for the stats endpoint.
type CorrespondenceStats struct {
	WindowDays     int                      `json:"window_days"`
	Total          int64                    `json:"total"`
	Failed         int64                    `json:"failed"`
	ManualFollowUp int64                    `json:"manual_follow_up"`
	TotalCost      float64                  `json:"total_cost"`
	AvgCost        float64                  `json:"avg_cost"`
	ByChannel      map[Channel]ChannelStats `json:"by_channel"`
	Capabilities   ProviderCapabilities     `json:"capabilities"`
}
