package domain

import (
	"context"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	UpdateRoomStatus(ctx context.Context, id int64, status models.RoomStatus) error
	CountRoomsByStatus(ctx context.Context) (map[models.RoomStatus]int, error)
}

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	SearchCustomers(ctx context.Context, query string, limit, offset int) ([]models.Customer, int, error)
}

type ReservationRepository interface {
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	InsertReservation(ctx context.Context, r *models.Reservation) error
	// UpdateReservation writes r if its stored version still equals r.Version and bumps it.
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	// ListRoomReservations returns stays on roomID with a status in statuses overlapping rng.
	ListRoomReservations(ctx context.Context, roomID int64, rng models.DateRange, statuses []models.ReservationStatus) ([]models.Reservation, error)
	// CheckedInOnRoom returns the id of a checked-in stay on roomID other than excludeID, or 0.
	CheckedInOnRoom(ctx context.Context, roomID, excludeID int64) (int64, error)
	ListReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	CountReservations(ctx context.Context, filter models.ReservationFilter) (int, error)
	ListGuests(ctx context.Context, reservationID int64) ([]models.ReservationGuest, error)
	InsertGuest(ctx context.Context, g *models.ReservationGuest) error
	DeleteGuest(ctx context.Context, reservationID, customerID int64) error
}

type OutboxRepository interface {
	EnqueueOutbox(ctx context.Context, msg *models.OutboxMessage) error
}

// Tx is the unit of work handed to RunInTx callbacks.
type Tx interface {
	RoomRepository
	CustomerRepository
	ReservationRepository
	OutboxRepository
}

// Store is the transactional relational store. Reads outside RunInTx see committed state.
type Store interface {
	Tx
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
	Health(ctx context.Context) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ProjectionCache stores read-model projections (dashboard, calendar).
// Get reports the generation it looked under and Set stores only for that
// generation, so a projection read before an Invalidate is never served after it.
// Invalidate drops every entry at once.
type ProjectionCache interface {
	Get(ctx context.Context, key string, dest any) (hit bool, gen int64, err error)
	Set(ctx context.Context, key string, gen int64, value any, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
