package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

var validate = validator.New()

type CustomerService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCustomerService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *CustomerService {
	return &CustomerService{store: store, eventBus: eventBus, logger: nopLogger(logger)}
}

func validateCustomer(c *models.Customer) error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.NationalID = strings.TrimSpace(c.NationalID)
	c.PassportNo = strings.TrimSpace(c.PassportNo)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)

	if c.FirstName == "" {
		return domain.Validation("first_name", "first name is required")
	}
	if c.LastName == "" {
		return domain.Validation("last_name", "last name is required")
	}
	if err := validate.Var(c.Email, "omitempty,email"); err != nil {
		return domain.Validation("email", "invalid email address %q", c.Email)
	}
	if !c.DateOfBirth.IsZero() && c.DateOfBirth.After(models.DateOf(time.Now())) {
		return domain.Validation("date_of_birth", "date of birth is in the future")
	}
	return nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, c *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		if err := tx.CreateCustomer(ctx, c); err != nil {
			return err
		}
		return enqueue(ctx, tx, events.EventCustomerCreated, c.ID, customerPayload(c))
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventCustomerCreated, customerPayload(c))
	s.logger.Info().Int64("customer_id", c.ID).Msg("customer created")
	return c, nil
}

// UpdateCustomer replaces the attributes of customer id. Cached calendars show
// customer names, so the update event invalidates projections.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, c *models.Customer) (*models.Customer, error) {
	if err := validateCustomer(c); err != nil {
		return nil, err
	}
	c.ID = id

	var updated *models.Customer
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		if err := tx.UpdateCustomer(ctx, c); err != nil {
			return err
		}
		got, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		updated = got
		return enqueue(ctx, tx, events.EventCustomerUpdated, id, customerPayload(got))
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventCustomerUpdated, customerPayload(updated))
	return updated, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	var deleted *models.Customer
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		c, err := tx.GetCustomer(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteCustomer(ctx, id); err != nil {
			return err
		}
		deleted = c
		return enqueue(ctx, tx, events.EventCustomerDeleted, id, customerPayload(c))
	})
	if err != nil {
		return err
	}

	publish(s.eventBus, s.logger, events.EventCustomerDeleted, customerPayload(deleted))
	s.logger.Info().Int64("customer_id", id).Msg("customer deleted")
	return nil
}

// SearchCustomers pages through customers matching query. page is 1-based.
func (s *CustomerService) SearchCustomers(ctx context.Context, query string, page, pageSize int) (*models.CustomerPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	items, total, err := s.store.SearchCustomers(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &models.CustomerPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func customerPayload(c *models.Customer) events.CustomerEventPayload {
	return events.CustomerEventPayload{
		CustomerID: c.ID,
		FullName:   c.FullName(),
		OccurredAt: time.Now().UTC(),
	}
}
