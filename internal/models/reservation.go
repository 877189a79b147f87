package models

import "time"

type Reservation struct {
	ID             int64              `json:"id"`
	RoomID         int64              `json:"room_id"`
	RoomNumber     string             `json:"room_number,omitempty"`
	CustomerID     int64              `json:"customer_id"`
	CustomerName   string             `json:"customer_name,omitempty"`
	CheckInDate    Date               `json:"check_in_date"`
	CheckOutDate   Date               `json:"check_out_date"`
	GuestCount     int                `json:"guest_count"`
	TotalAmount    Money              `json:"total_amount"`
	PaidAmount     Money              `json:"paid_amount"`
	Notes          string             `json:"notes"`
	Status         ReservationStatus  `json:"status"`
	ActualCheckIn  *time.Time         `json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time         `json:"actual_check_out,omitempty"`
	CancelReason   string             `json:"cancel_reason,omitempty"`
	Version        int64              `json:"version"`
	Guests         []ReservationGuest `json:"guests,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (r *Reservation) Range() DateRange {
	return DateRange{Start: r.CheckInDate, End: r.CheckOutDate}
}

func (r *Reservation) Nights() int {
	return r.CheckInDate.DaysUntil(r.CheckOutDate)
}

// Remaining may be negative when the guest has overpaid.
func (r *Reservation) Remaining() Money {
	return r.TotalAmount - r.PaidAmount
}

func (r *Reservation) IsActive() bool {
	return r.Status.Active()
}

type GuestRole string

const (
	RolePrimary GuestRole = "primary"
	RoleGuest   GuestRole = "guest"
)

// ReservationGuest is one row of a reservation's guest list.
type ReservationGuest struct {
	ReservationID int64     `json:"reservation_id"`
	CustomerID    int64     `json:"customer_id"`
	CustomerName  string    `json:"customer_name,omitempty"`
	Role          GuestRole `json:"role"`
	OrderIndex    int       `json:"order_index"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReservationFilter drives listing and counting. Zero values mean "no constraint".
// From/To select reservations whose stay overlaps [From, To).
type ReservationFilter struct {
	CustomerName string
	RoomNumber   string
	RoomID       int64
	CustomerID   int64
	Statuses     []ReservationStatus
	From         Date
	To           Date
	CheckInOn    Date
	CheckOutOn   Date
	Limit        int
	Offset       int
}

type ReservationPage struct {
	Items    []Reservation `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}
