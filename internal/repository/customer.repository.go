package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kaiteddy/garage-comms/internal/model"
	"github.com/kaiteddy/garage-comms/pkg/pg"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// GetByVehicleRegistration resolves a registration to its owning customer.
// Registrations are stored without spaces and compared case-insensitively.
func (r *CustomerRepository) GetByVehicleRegistration(ctx context.Context, registration string) (*model.Customer, *model.Vehicle, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(registration, " ", ""))

	var vehicle VehicleEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("registration = ?", normalized).
		Order("created_at DESC").
		First(&vehicle).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, err
	}

	var customer CustomerEntity
	err = r.Read(ctx).WithContext(ctx).
		Where("id = ?", vehicle.CustomerID).
		First(&customer).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, err
	}

	return toCustomerModel(&customer), toVehicleModel(&vehicle), nil
}

// GetLatestVehicle returns the customer's most recently associated vehicle,
// or nil when the customer has none.
func (r *CustomerRepository) GetLatestVehicle(ctx context.Context, customerID int64) (*model.Vehicle, error) {
	var entity VehicleEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toVehicleModel(&entity), nil
}

// GetConsent loads the consent row for a customer. A missing row is not an
// error: every flag simply stays unset.
func (r *CustomerRepository) GetConsent(ctx context.Context, customerID int64) (model.ConsentRecord, error) {
	var entity ConsentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return toConsentModel(customerID, nil), nil
		}
		return toConsentModel(customerID, nil), err
	}
	return toConsentModel(customerID, &entity), nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(customer)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toCustomerModel(entity), nil
}
