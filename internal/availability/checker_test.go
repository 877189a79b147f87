package availability

import (
	"testing"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"

	"github.com/stretchr/testify/assert"
)

func stay(id int64, in, out string, status models.ReservationStatus) models.Reservation {
	return models.Reservation{
		ID:           id,
		RoomID:       1,
		CheckInDate:  models.MustDate(in),
		CheckOutDate: models.MustDate(out),
		Status:       status,
	}
}

func rng(in, out string) models.DateRange {
	return models.NewDateRange(models.MustDate(in), models.MustDate(out))
}

func TestCheck(t *testing.T) {
	room := &models.Room{ID: 1, Number: "101", Capacity: 1, Status: models.RoomAvailable}
	existing := []models.Reservation{
		stay(10, "2025-06-01", "2025-06-04", models.StatusConfirmed),
		stay(11, "2025-06-10", "2025-06-12", models.StatusPending),
		stay(12, "2025-06-20", "2025-06-25", models.StatusCancelled),
	}
	policy := Policy{}

	t.Run("OverlapRejected", func(t *testing.T) {
		res := policy.Check(room, existing, rng("2025-06-03", "2025-06-05"), 0)
		assert.False(t, res.Available)
		assert.Equal(t, int64(10), res.ConflictReservationID)
		assert.Equal(t, ReasonOverlap, res.Reason)
	})

	t.Run("AdjacentAllowed", func(t *testing.T) {
		assert.True(t, policy.Check(room, existing, rng("2025-06-04", "2025-06-06"), 0).Available)
		assert.True(t, policy.Check(room, existing, rng("2025-05-29", "2025-06-01"), 0).Available)
	})

	t.Run("ExcludeSelf", func(t *testing.T) {
		assert.True(t, policy.Check(room, existing, rng("2025-06-02", "2025-06-05"), 10).Available)
	})

	t.Run("PendingAdvisoryByDefault", func(t *testing.T) {
		assert.True(t, policy.Check(room, existing, rng("2025-06-10", "2025-06-11"), 0).Available)

		strict := Policy{PendingBlocks: true}
		res := strict.Check(room, existing, rng("2025-06-10", "2025-06-11"), 0)
		assert.False(t, res.Available)
		assert.Equal(t, int64(11), res.ConflictReservationID)
	})

	t.Run("TerminalIgnored", func(t *testing.T) {
		assert.True(t, policy.Check(room, existing, rng("2025-06-21", "2025-06-23"), 0).Available)
	})

	t.Run("RoomStatusBlocks", func(t *testing.T) {
		broken := *room
		broken.Status = models.RoomOutOfOrder
		res := policy.Check(&broken, nil, rng("2025-07-01", "2025-07-02"), 0)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonRoomStatus, res.Reason)

		lenient := Policy{IgnoreRoomStatus: true}
		assert.True(t, lenient.Check(&broken, nil, rng("2025-07-01", "2025-07-02"), 0).Available)
	})

	t.Run("InvalidRange", func(t *testing.T) {
		res := policy.Check(room, nil, rng("2025-07-02", "2025-07-02"), 0)
		assert.False(t, res.Available)
		assert.Equal(t, ReasonInvalidRange, res.Reason)
	})
}
