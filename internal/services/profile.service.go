package services

import (
	"context"
	"errors"
	"time"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/pkg/logger"
)

var (
	ErrProfileNotFound = errors.New("communication profile not found")
)

// CustomerRepository is the storage surface the resolver reads from.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByVehicleRegistration(ctx context.Context, registration string) (*model.Customer, *model.Vehicle, error)
	GetLatestVehicle(ctx context.Context, customerID int64) (*model.Vehicle, error)
	GetConsent(ctx context.Context, customerID int64) (model.ConsentRecord, error)
}

// CorrespondenceHistory is the slice of correspondence storage the resolver
// needs: last-sent timestamps and prior WhatsApp evidence.
type CorrespondenceHistory interface {
	LastSentByChannel(ctx context.Context, customerID int64) (map[model.Channel]time.Time, error)
	HasPriorWhatsApp(ctx context.Context, customerID int64) (bool, error)
}

// ProfileService resolves a customer's communication profile: contact
// channels, consent flags and history, with capability derived per channel.
type ProfileService struct {
	customers      CustomerRepository
	correspondence CorrespondenceHistory
	caps           model.ProviderCapabilities
}

func NewProfileService(customers CustomerRepository, correspondence CorrespondenceHistory, caps model.ProviderCapabilities) *ProfileService {
	return &ProfileService{
		customers:      customers,
		correspondence: correspondence,
		caps:           caps,
	}
}

// ProfileRef identifies the customer: by id, or by vehicle registration
// resolving to the owning customer.
type ProfileRef struct {
	CustomerID          int64
	VehicleRegistration string
}

// Resolve builds a fresh CommunicationProfile. Storage errors fail closed:
// the caller sees not-found, never a partial profile.
func (s *ProfileService) Resolve(ctx context.Context, ref ProfileRef) (*model.CommunicationProfile, error) {
	if ref.CustomerID == 0 && ref.VehicleRegistration == "" {
		return nil, model.ErrMissingRecipient
	}

	var (
		customer *model.Customer
		vehicle  *model.Vehicle
		err      error
	)

	if ref.CustomerID != 0 {
		customer, err = s.customers.GetByID(ctx, ref.CustomerID)
		if err != nil {
			return nil, s.failClosed(err, "customer_id", ref.CustomerID)
		}
		vehicle, err = s.customers.GetLatestVehicle(ctx, customer.ID)
		if err != nil {
			return nil, s.failClosed(err, "customer_id", customer.ID)
		}
	} else {
		customer, vehicle, err = s.customers.GetByVehicleRegistration(ctx, ref.VehicleRegistration)
		if err != nil {
			return nil, s.failClosed(err, "registration", ref.VehicleRegistration)
		}
	}

	consent, err := s.customers.GetConsent(ctx, customer.ID)
	if err != nil {
		return nil, s.failClosed(err, "customer_id", customer.ID)
	}

	lastSent, err := s.correspondence.LastSentByChannel(ctx, customer.ID)
	if err != nil {
		return nil, s.failClosed(err, "customer_id", customer.ID)
	}

	hasWhatsApp, err := s.correspondence.HasPriorWhatsApp(ctx, customer.ID)
	if err != nil {
		return nil, s.failClosed(err, "customer_id", customer.ID)
	}

	profile := &model.CommunicationProfile{
		CustomerID:               customer.ID,
		CustomerName:             customer.FullName(),
		Phone:                    customer.Phone,
		Email:                    customer.Email,
		Vehicle:                  vehicle,
		Consent:                  consent,
		CustomerStoredPreference: customer.PreferredChannel,
		OptOut:                   customer.OptOut,
		OptOutAt:                 customer.OptOutAt,
		HasWhatsApp:              hasWhatsApp,
		LastSent:                 lastSent,
	}

	profile.EvaluateCapabilities(s.caps)

	return profile, nil
}

func (s *ProfileService) failClosed(err error, key string, value any) error {
	if errors.Is(err, ErrProfileNotFound) {
		return err
	}
	logger.Warn("profile resolution failed", key, value, "error", err)
	return ErrProfileNotFound
}
