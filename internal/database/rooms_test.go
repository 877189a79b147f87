package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

func TestRoomCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	room := &models.Room{
		Number:      "101",
		Type:        models.RoomTypeFamily,
		Capacity:    4,
		NightlyRate: models.NewMoney(1250, 50),
		Amenities:   []models.Amenity{models.AmenityWiFi, models.AmenityBalcony},
		Description: "garden side",
	}
	require.NoError(t, db.CreateRoom(ctx, room))
	assert.NotZero(t, room.ID)
	assert.Equal(t, models.RoomAvailable, room.Status)

	got, err := db.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "101", got.Number)
	assert.Equal(t, models.NewMoney(1250, 50), got.NightlyRate)
	assert.ElementsMatch(t, room.Amenities, got.Amenities)

	got.Description = "sea side"
	got.Capacity = 3
	require.NoError(t, db.UpdateRoom(ctx, got))

	got, err = db.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "sea side", got.Description)
	assert.Equal(t, 3, got.Capacity)

	require.NoError(t, db.UpdateRoomStatus(ctx, room.ID, models.RoomCleaning))
	got, err = db.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomCleaning, got.Status)

	require.NoError(t, db.DeleteRoom(ctx, room.ID))
	_, err = db.GetRoom(ctx, room.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateRoom_DuplicateNumber(t *testing.T) {
	db := setupTestDB(t)
	seedRoom(t, db, "101")

	err := db.CreateRoom(context.Background(), &models.Room{Number: "101", Type: models.RoomTypeSingle, Capacity: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDuplicateKey))

	e, ok := domain.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "room_number", e.Field)
}

func TestDeleteRoom_InUse(t *testing.T) {
	db := setupTestDB(t)
	room := seedRoom(t, db, "101")
	customer := seedCustomer(t, db, "Ayse", "Yilmaz")
	seedReservation(t, db, room, customer, "2025-06-01", "2025-06-03", models.StatusConfirmed)

	err := db.DeleteRoom(context.Background(), room.ID)
	assert.True(t, errors.Is(err, domain.ErrRoomInUse))

	// the failed delete leaves the room in place
	_, err = db.GetRoom(context.Background(), room.ID)
	assert.NoError(t, err)
}

func TestInsertReservation_MissingRoom(t *testing.T) {
	db := setupTestDB(t)
	customer := seedCustomer(t, db, "Ayse", "Yilmaz")

	err := db.InsertReservation(context.Background(), &models.Reservation{
		RoomID:       999,
		CustomerID:   customer.ID,
		CheckInDate:  models.MustDate("2025-06-01"),
		CheckOutDate: models.MustDate("2025-06-03"),
		GuestCount:   1,
		Status:       models.StatusConfirmed,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListRooms_Filter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedRoom(t, db, "102")
	seedRoom(t, db, "101")
	suite := &models.Room{Number: "301", Type: models.RoomTypeSuite, Capacity: 2}
	require.NoError(t, db.CreateRoom(ctx, suite))
	require.NoError(t, db.UpdateRoomStatus(ctx, suite.ID, models.RoomMaintenance))

	all, err := db.ListRooms(ctx, models.RoomFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "101", all[0].Number)

	byType, err := db.ListRooms(ctx, models.RoomFilter{Type: models.RoomTypeSuite})
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	byStatus, err := db.ListRooms(ctx, models.RoomFilter{Status: models.RoomAvailable})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	counts, err := db.CountRoomsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[models.RoomAvailable])
	assert.Equal(t, 1, counts[models.RoomMaintenance])
	assert.Equal(t, 0, counts[models.RoomOccupied])
}

func TestRoomNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.True(t, errors.Is(db.UpdateRoom(ctx, &models.Room{ID: 42, Number: "x", Type: models.RoomTypeSingle, Capacity: 1}), domain.ErrNotFound))
	assert.True(t, errors.Is(db.UpdateRoomStatus(ctx, 42, models.RoomCleaning), domain.ErrNotFound))
	assert.True(t, errors.Is(db.DeleteRoom(ctx, 42), domain.ErrNotFound))
}
