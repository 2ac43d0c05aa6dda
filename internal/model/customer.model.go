package model

import "time"

type Customer struct {
	ID               int64      `json:"id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	Email            string     `json:"email"`
	PreferredChannel string     `json:"preferred_channel"` // empty when never set
	OptOut           bool       `json:"opt_out"`
	OptOutAt         *time.Time `json:"opt_out_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Vehicle struct {
	ID           int64      `json:"id"`
	CustomerID   int64      `json:"customer_id"`
	Registration string     `json:"registration"`
	Make         string     `json:"make"`
	Model        string     `json:"model"`
	MOTExpiry    *time.Time `json:"mot_expiry,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Vehicle) TableName() string { return "vehicles" }

// ConsentRecord holds the per-channel consent flags stored for a customer.
// Each flag is tri-state: a flag that was never captured stays unset.
type ConsentRecord struct {
	CustomerID int64   `json:"customer_id"`
	WhatsApp   Consent `json:"whatsapp"`
	SMS        Consent `json:"sms"`
	Email      Consent `json:"email"`
	Marketing  Consent `json:"marketing"`
}

// For returns the service-communication consent for a channel.
func (r ConsentRecord) For(c Channel) Consent {
	switch c {
	case ChannelWhatsApp:
		return r.WhatsApp
	case ChannelSMS:
		return r.SMS
	case ChannelEmail:
		return r.Email
	}
	return ConsentUnset
}
