package models

type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no_show"
)

var AllReservationStatuses = []ReservationStatus{
	StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow,
}

func (s ReservationStatus) Valid() bool {
	for _, v := range AllReservationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s ReservationStatus) Terminal() bool {
	return s == StatusCheckedOut || s == StatusCancelled || s == StatusNoShow
}

// Active reservations hold the room: Confirmed or CheckedIn.
func (s ReservationStatus) Active() bool {
	return s == StatusConfirmed || s == StatusCheckedIn
}

// ReservationEvent names a lifecycle operation.
type ReservationEvent string

const (
	EventConfirm  ReservationEvent = "confirm"
	EventCheckIn  ReservationEvent = "check_in"
	EventCheckOut ReservationEvent = "check_out"
	EventCancel   ReservationEvent = "cancel"
	EventNoShow   ReservationEvent = "no_show"
)

type transitionKey struct {
	from  ReservationStatus
	event ReservationEvent
}

// transitions is the complete lifecycle table. Terminal states have no entries.
var transitions = map[transitionKey]ReservationStatus{
	{StatusPending, EventConfirm}:    StatusConfirmed,
	{StatusPending, EventCancel}:     StatusCancelled,
	{StatusConfirmed, EventCheckIn}:  StatusCheckedIn,
	{StatusConfirmed, EventCancel}:   StatusCancelled,
	{StatusConfirmed, EventNoShow}:   StatusNoShow,
	{StatusCheckedIn, EventCheckOut}: StatusCheckedOut,
}

// NextStatus resolves (from, event). ok is false when the transition is illegal.
func NextStatus(from ReservationStatus, event ReservationEvent) (ReservationStatus, bool) {
	next, ok := transitions[transitionKey{from: from, event: event}]
	return next, ok
}

// InitialStatusAllowed reports whether a reservation may be created in s.
func InitialStatusAllowed(s ReservationStatus) bool {
	return s == StatusPending || s == StatusConfirmed
}
