package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const (
	EventReservationCreated    = "reservation.created"
	EventReservationUpdated    = "reservation.updated"
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationCancelled  = "reservation.cancelled"
	EventReservationNoShow     = "reservation.no_show"
	EventGuestAdded            = "reservation.guest_added"
	EventGuestRemoved          = "reservation.guest_removed"
	EventPaymentRecorded       = "reservation.payment_recorded"

	EventRoomCreated       = "room.created"
	EventRoomUpdated       = "room.updated"
	EventRoomStatusChanged = "room.status_changed"
	EventRoomDeleted       = "room.deleted"

	EventCustomerCreated = "customer.created"
	EventCustomerUpdated = "customer.updated"
	EventCustomerDeleted = "customer.deleted"
)

// ProjectionEvents change something a dashboard or calendar shows.
var ProjectionEvents = []string{
	EventReservationCreated,
	EventReservationUpdated,
	EventReservationConfirmed,
	EventReservationCheckedIn,
	EventReservationCheckedOut,
	EventReservationCancelled,
	EventReservationNoShow,
	EventGuestAdded,
	EventGuestRemoved,
	EventPaymentRecorded,
	EventRoomCreated,
	EventRoomUpdated,
	EventRoomStatusChanged,
	EventRoomDeleted,
	EventCustomerUpdated,
}

// ReservationEventPayload describes the reservation snapshot for event consumers.
type ReservationEventPayload struct {
	ReservationID  int64                    `json:"reservation_id"`
	RoomID         int64                    `json:"room_id"`
	CustomerID     int64                    `json:"customer_id"`
	Status         models.ReservationStatus `json:"status"`
	PreviousStatus models.ReservationStatus `json:"previous_status,omitempty"`
	CheckInDate    models.Date              `json:"check_in_date"`
	CheckOutDate   models.Date              `json:"check_out_date"`
	TotalAmount    models.Money             `json:"total_amount"`
	PaidAmount     models.Money             `json:"paid_amount"`
	GuestID        int64                    `json:"guest_id,omitempty"`
	Version        int64                    `json:"version"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

func NewReservationPayload(r *models.Reservation, previous models.ReservationStatus, at time.Time) ReservationEventPayload {
	return ReservationEventPayload{
		ReservationID:  r.ID,
		RoomID:         r.RoomID,
		CustomerID:     r.CustomerID,
		Status:         r.Status,
		PreviousStatus: previous,
		CheckInDate:    r.CheckInDate,
		CheckOutDate:   r.CheckOutDate,
		TotalAmount:    r.TotalAmount,
		PaidAmount:     r.PaidAmount,
		Version:        r.Version,
		OccurredAt:     at,
	}
}

type RoomEventPayload struct {
	RoomID         int64             `json:"room_id"`
	RoomNumber     string            `json:"room_number"`
	Status         models.RoomStatus `json:"status"`
	PreviousStatus models.RoomStatus `json:"previous_status,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

type CustomerEventPayload struct {
	CustomerID int64     `json:"customer_id"`
	FullName   string    `json:"full_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     func(event *Event, err error)
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeMany registers one handler for several event types.
func (b *EventBus) SubscribeMany(eventTypes []string, handler EventHandler) {
	for _, t := range eventTypes {
		b.Subscribe(t, handler)
	}
}

// OnError installs a callback for handler failures. Failures never stop delivery.
func (b *EventBus) OnError(fn func(event *Event, err error)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = fn
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
