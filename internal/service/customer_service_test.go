package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

func TestCustomerService_Create(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	c, err := env.customers.CreateCustomer(ctx, &models.Customer{
		FirstName:  "  Ayse ",
		LastName:   "Yilmaz",
		NationalID: "12345678901",
		Email:      "ayse@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "Ayse", c.FirstName)

	got, err := env.customers.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ayse Yilmaz", got.FullName())
	assert.Equal(t, "12345678901", got.NationalID)

	_, err = env.customers.CreateCustomer(ctx, &models.Customer{FirstName: "Ali", LastName: "Demir", NationalID: "12345678901"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateKey))

	// empty identity documents never collide
	_, err = env.customers.CreateCustomer(ctx, &models.Customer{FirstName: "Ali", LastName: "Demir"})
	require.NoError(t, err)
	_, err = env.customers.CreateCustomer(ctx, &models.Customer{FirstName: "Can", LastName: "Aydin"})
	require.NoError(t, err)
}

func TestCustomerService_Validation(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		customer models.Customer
		field    string
	}{
		{"first name", models.Customer{LastName: "Yilmaz"}, "first_name"},
		{"last name", models.Customer{FirstName: "Ayse", LastName: " "}, "last_name"},
		{"email", models.Customer{FirstName: "Ayse", LastName: "Yilmaz", Email: "not-an-email"}, "email"},
		{"birthday", models.Customer{FirstName: "Ayse", LastName: "Yilmaz", DateOfBirth: models.DateOf(time.Now().AddDate(1, 0, 0))}, "date_of_birth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.customer
			_, err := env.customers.CreateCustomer(ctx, &c)
			e, ok := domain.AsError(err)
			require.True(t, ok)
			assert.Equal(t, domain.CodeValidation, e.Code)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestCustomerService_Update(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()
	c := env.customer(t, "Ayse", "Yilmaz")

	updated, err := env.customers.UpdateCustomer(ctx, c.ID, &models.Customer{
		FirstName: "Ayse",
		LastName:  "Kaya",
		Phone:     "+90 555 000 00 00",
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Kaya", updated.LastName)
	assert.Equal(t, "+90 555 000 00 00", updated.Phone)

	_, err = env.customers.UpdateCustomer(ctx, 999, &models.Customer{FirstName: "X", LastName: "Y"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCustomerService_Delete(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()
	room := env.room(t, "101", 2)
	primary := env.customer(t, "Ayse", "Yilmaz")
	companion := env.customer(t, "Ali", "Demir")
	free := env.customer(t, "Can", "Aydin")

	a := env.book(t, room, primary, "2025-06-01", "2025-06-04", models.StatusConfirmed)
	_, err := env.reservations.AddGuest(ctx, a.ID, companion.ID)
	require.NoError(t, err)

	assert.True(t, errors.Is(env.customers.DeleteCustomer(ctx, primary.ID), domain.ErrCustomerInUse))
	assert.True(t, errors.Is(env.customers.DeleteCustomer(ctx, companion.ID), domain.ErrCustomerInUse))

	require.NoError(t, env.customers.DeleteCustomer(ctx, free.ID))
	_, err = env.customers.GetCustomer(ctx, free.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCustomerService_Search(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := env.customers.CreateCustomer(ctx, &models.Customer{
			FirstName: fmt.Sprintf("Guest%02d", i),
			LastName:  "Ozturk",
		})
		require.NoError(t, err)
	}
	_, err := env.customers.CreateCustomer(ctx, &models.Customer{FirstName: "Zeynep", LastName: "Arslan", Email: "zeynep@example.com"})
	require.NoError(t, err)

	page, err := env.customers.SearchCustomers(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 26, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)
	require.Len(t, page.Items, defaultPageSize)
	assert.Equal(t, "Arslan", page.Items[0].LastName)

	page, err = env.customers.SearchCustomers(ctx, "ozt", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Items, 5)

	page, err = env.customers.SearchCustomers(ctx, "ZEYNEP@", 1, 500)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Zeynep", page.Items[0].FirstName)

	page, err = env.customers.SearchCustomers(ctx, "guest0%", 1, 20)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)
}

func TestCustomerService_WritesOutboxAndPublishes(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	var received []string
	env.bus.SubscribeMany([]string{
		events.EventCustomerCreated, events.EventCustomerUpdated, events.EventCustomerDeleted,
	}, func(e *events.Event) error {
		received = append(received, e.Type)
		return nil
	})

	c := env.customer(t, "Ayse", "Yilmaz")
	_, err := env.customers.UpdateCustomer(ctx, c.ID, &models.Customer{FirstName: "Ayse", LastName: "Kaya"})
	require.NoError(t, err)
	require.NoError(t, env.customers.DeleteCustomer(ctx, c.ID))

	// rejected writes publish nothing
	_, err = env.customers.UpdateCustomer(ctx, 999, &models.Customer{FirstName: "X", LastName: "Y"})
	require.Error(t, err)

	want := []string{events.EventCustomerCreated, events.EventCustomerUpdated, events.EventCustomerDeleted}
	assert.Equal(t, want, received)

	pending, err := env.db.FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, msg := range pending {
		assert.Equal(t, want[i], msg.EventType)
		assert.Equal(t, c.ID, msg.AggregateID)
	}
	assert.Contains(t, string(pending[1].Payload), `"full_name":"Ayse Kaya"`)
}
