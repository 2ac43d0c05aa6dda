package repository

import (
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
)

type CorrespondenceEntity struct {
	ID                  int64     `db:"id"                   gorm:"primaryKey;autoIncrement;column:id"`
	CustomerID          int64     `db:"customer_id"          gorm:"column:customer_id;not null;index"`
	VehicleRegistration string    `db:"vehicle_registration" gorm:"column:vehicle_registration"`
	Channel             string    `db:"channel"              gorm:"column:channel;not null;index"`
	Direction           string    `db:"direction"            gorm:"column:direction;not null"`
	Subject             string    `db:"subject"              gorm:"column:subject"`
	Content             string    `db:"content"              gorm:"column:content"`
	ContactMethod       string    `db:"contact_method"       gorm:"column:contact_method"`
	ContactValue        string    `db:"contact_value"        gorm:"column:contact_value"`
	Category            string    `db:"category"             gorm:"column:category;not null;index"`
	Urgency             string    `db:"urgency"              gorm:"column:urgency"`
	Cost                float64   `db:"cost"                 gorm:"column:cost;not null;default:0"`
	Status              string    `db:"status"               gorm:"column:status;not null;index"`

	WhatsAppConversationID string `db:"whatsapp_conversation_id" gorm:"column:whatsapp_conversation_id"`
	SMSLogID               string `db:"sms_log_id"               gorm:"column:sms_log_id"`
	EmailMessageID         string `db:"email_message_id"         gorm:"column:email_message_id"`

	RequiresResponse bool      `db:"requires_response" gorm:"column:requires_response;not null;default:false"`
	CreatedAt        time.Time `db:"created_at"        gorm:"column:created_at;autoCreateTime;index"`
}

func (CorrespondenceEntity) TableName() string { return "correspondence" }

func toCorrespondenceEntity(m *model.CorrespondenceRecord) *CorrespondenceEntity {
	if m == nil {
		return nil
	}
	return &CorrespondenceEntity{
		ID:                     m.ID,
		CustomerID:             m.CustomerID,
		VehicleRegistration:    m.VehicleRegistration,
		Channel:                string(m.Channel),
		Direction:              m.Direction,
		Subject:                m.Subject,
		Content:                m.Content,
		ContactMethod:          m.ContactMethod,
		ContactValue:           m.ContactValue,
		Category:               m.Category,
		Urgency:                m.Urgency,
		Cost:                   m.Cost,
		Status:                 m.Status,
		WhatsAppConversationID: m.WhatsAppConversationID,
		SMSLogID:               m.SMSLogID,
		EmailMessageID:         m.EmailMessageID,
		RequiresResponse:       m.RequiresResponse,
		CreatedAt:              m.CreatedAt,
	}
}

func toCorrespondenceModel(e *CorrespondenceEntity) *model.CorrespondenceRecord {
	if e == nil {
		return nil
	}
	return &model.CorrespondenceRecord{
		ID:                     e.ID,
		CustomerID:             e.CustomerID,
		VehicleRegistration:    e.VehicleRegistration,
		Channel:                model.Channel(e.Channel),
		Direction:              e.Direction,
		Subject:                e.Subject,
		Content:                e.Content,
		ContactMethod:          e.ContactMethod,
		ContactValue:           e.ContactValue,
		Category:               e.Category,
		Urgency:                e.Urgency,
		Cost:                   e.Cost,
		Status:                 e.Status,
		WhatsAppConversationID: e.WhatsAppConversationID,
		SMSLogID:               e.SMSLogID,
		EmailMessageID:         e.EmailMessageID,
		RequiresResponse:       e.RequiresResponse,
		CreatedAt:              e.CreatedAt,
	}
}
