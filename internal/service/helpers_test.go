package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/availability"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/database"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

// fixedNow is 2025-06-03 10:00 UTC.
var fixedNow = time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	db           *database.DB
	bus          *events.EventBus
	rooms        *RoomService
	customers    *CustomerService
	reservations *ReservationService
	queries      *QueryService
}

func newTestEnv(t *testing.T, opts ReservationOptions) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "service.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	bus := events.NewEventBus()
	queries := NewQueryService(db, nil, time.Minute, time.UTC, &logger)
	queries.now = opts.Now
	return &testEnv{
		db:           db,
		bus:          bus,
		rooms:        NewRoomService(db, bus, false, &logger),
		customers:    NewCustomerService(db, bus, &logger),
		reservations: NewReservationService(db, bus, opts, &logger),
		queries:      queries,
	}
}

func defaultEnv(t *testing.T) *testEnv {
	return newTestEnv(t, ReservationOptions{Policy: availability.Policy{}})
}

func (e *testEnv) room(t *testing.T, number string, capacity int) *models.Room {
	t.Helper()
	room, err := e.rooms.CreateRoom(context.Background(), &models.Room{
		Number:      number,
		Type:        models.RoomTypeDouble,
		Capacity:    capacity,
		NightlyRate: models.NewMoney(750, 0),
	})
	require.NoError(t, err)
	return room
}

func (e *testEnv) customer(t *testing.T, first, last string) *models.Customer {
	t.Helper()
	c, err := e.customers.CreateCustomer(context.Background(), &models.Customer{FirstName: first, LastName: last})
	require.NoError(t, err)
	return c
}

func (e *testEnv) book(t *testing.T, room *models.Room, customer *models.Customer, in, out string, status models.ReservationStatus) *models.Reservation {
	t.Helper()
	r, err := e.reservations.Create(context.Background(), stay(room, customer, in, out, status))
	require.NoError(t, err)
	return r
}

func stay(room *models.Room, customer *models.Customer, in, out string, status models.ReservationStatus) CreateReservationInput {
	return CreateReservationInput{
		CustomerID:   customer.ID,
		RoomID:       room.ID,
		CheckInDate:  models.MustDate(in),
		CheckOutDate: models.MustDate(out),
		GuestCount:   1,
		TotalAmount:  models.NewMoney(2250, 0),
		Status:       status,
	}
}
