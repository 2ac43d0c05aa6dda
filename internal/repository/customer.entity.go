package repository

import (
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
)

type CustomerEntity struct {
	ID               int64      `db:"id"                gorm:"primaryKey;autoIncrement;column:id"`
	FirstName        string     `db:"first_name"        gorm:"column:first_name"`
	LastName         string     `db:"last_name"         gorm:"column:last_name"`
	Phone            string     `db:"phone"             gorm:"column:phone"`
	Email            string     `db:"email"             gorm:"column:email"`
	PreferredChannel string     `db:"preferred_channel" gorm:"column:preferred_channel"`
	OptOut           bool       `db:"opt_out"           gorm:"column:opt_out;not null;default:false"`
	OptOutAt         *time.Time `db:"opt_out_at"        gorm:"column:opt_out_at"`
	CreatedAt        time.Time  `db:"created_at"        gorm:"column:created_at;autoCreateTime"`
}

func (CustomerEntity) TableName() string { return "customers" }

type VehicleEntity struct {
	ID           int64      `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	CustomerID   int64      `db:"customer_id"  gorm:"column:customer_id;not null;index"`
	Registration string     `db:"registration" gorm:"column:registration;not null;index"`
	Make         string     `db:"make"         gorm:"column:make"`
	Model        string     `db:"model"        gorm:"column:model"`
	MOTExpiry    *time.Time `db:"mot_expiry"   gorm:"column:mot_expiry"`
	CreatedAt    time.Time  `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (VehicleEntity) TableName() string { return "vehicles" }

// ConsentEntity stores each flag as a nullable bool: NULL means the consent
// was never captured, which maps to the tri-state "unset".
type ConsentEntity struct {
	CustomerID int64     `db:"customer_id" gorm:"primaryKey;column:customer_id"`
	WhatsApp   *bool     `db:"whatsapp"    gorm:"column:whatsapp"`
	SMS        *bool     `db:"sms"         gorm:"column:sms"`
	Email      *bool     `db:"email"       gorm:"column:email"`
	Marketing  *bool     `db:"marketing"   gorm:"column:marketing"`
	UpdatedAt  time.Time `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (ConsentEntity) TableName() string { return "consents" }

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:               e.ID,
		FirstName:        e.FirstName,
		LastName:         e.LastName,
		Phone:            e.Phone,
		Email:            e.Email,
		PreferredChannel: e.PreferredChannel,
		OptOut:           e.OptOut,
		OptOutAt:         e.OptOutAt,
		CreatedAt:        e.CreatedAt,
	}
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		ID:               m.ID,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Phone:            m.Phone,
		Email:            m.Email,
		PreferredChannel: m.PreferredChannel,
		OptOut:           m.OptOut,
		OptOutAt:         m.OptOutAt,
		CreatedAt:        m.CreatedAt,
	}
}

func toVehicleModel(e *VehicleEntity) *model.Vehicle {
	if e == nil {
		return nil
	}
	return &model.Vehicle{
		ID:           e.ID,
		CustomerID:   e.CustomerID,
		Registration: e.Registration,
		Make:         e.Make,
		Model:        e.Model,
		MOTExpiry:    e.MOTExpiry,
		CreatedAt:    e.CreatedAt,
	}
}

func toConsentModel(customerID int64, e *ConsentEntity) model.ConsentRecord {
	rec := model.ConsentRecord{
		CustomerID: customerID,
		WhatsApp:   model.ConsentUnset,
		SMS:        model.ConsentUnset,
		Email:      model.ConsentUnset,
		Marketing:  model.ConsentUnset,
	}
	if e == nil {
		return rec
	}
	rec.WhatsApp = model.ConsentFromPtr(e.WhatsApp)
	rec.SMS = model.ConsentFromPtr(e.SMS)
	rec.Email = model.ConsentFromPtr(e.Email)
	rec.Marketing = model.ConsentFromPtr(e.Marketing)
	return rec
}
