// Package availability decides whether a room can take a stay over a date range.
// It holds no state; callers feed it the room and its candidate reservations,
// normally read inside the transaction that will perform the write.
package availability

import (
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const (
	ReasonOverlap      = "overlapping reservation"
	ReasonRoomStatus   = "room is not bookable in its current status"
	ReasonInvalidRange = "check-out must be after check-in"
)

// Policy carries the configurable parts of the availability rule.
type Policy struct {
	// PendingBlocks makes Pending reservations hold the room like Confirmed ones.
	PendingBlocks bool
	// IgnoreRoomStatus allows booking rooms in Maintenance or OutOfOrder.
	IgnoreRoomStatus bool
}

// BlockingStatuses lists reservation statuses that occupy a room's dates.
func (p Policy) BlockingStatuses() []models.ReservationStatus {
	statuses := []models.ReservationStatus{models.StatusConfirmed, models.StatusCheckedIn}
	if p.PendingBlocks {
		statuses = append(statuses, models.StatusPending)
	}
	return statuses
}

func (p Policy) blocks(s models.ReservationStatus) bool {
	for _, b := range p.BlockingStatuses() {
		if b == s {
			return true
		}
	}
	return false
}

type Result struct {
	Available             bool
	ConflictReservationID int64
	Reason                string
}

// Check evaluates the candidate range against existing reservations on room.
// excludeID skips the reservation being edited. Reservations on other rooms are ignored.
func (p Policy) Check(room *models.Room, existing []models.Reservation, rng models.DateRange, excludeID int64) Result {
	if !rng.Valid() {
		return Result{Reason: ReasonInvalidRange}
	}
	if !p.IgnoreRoomStatus && !room.Status.Bookable() {
		return Result{Reason: ReasonRoomStatus}
	}

	for i := range existing {
		r := &existing[i]
		if r.RoomID != room.ID || (excludeID != 0 && r.ID == excludeID) {
			continue
		}
		if !p.blocks(r.Status) {
			continue
		}
		if rng.Overlaps(r.Range()) {
			return Result{ConflictReservationID: r.ID, Reason: ReasonOverlap}
		}
	}

	return Result{Available: true}
}
