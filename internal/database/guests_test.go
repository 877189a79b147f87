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

func TestGuests(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	room := seedRoom(t, db, "101")
	ayse := seedCustomer(t, db, "Ayse", "Yilmaz")
	ali := seedCustomer(t, db, "Ali", "Demir")
	r := seedReservation(t, db, room, ayse, "2025-06-01", "2025-06-03", models.StatusConfirmed)

	require.NoError(t, db.InsertGuest(ctx, &models.ReservationGuest{ReservationID: r.ID, CustomerID: ayse.ID, Role: models.RolePrimary}))
	require.NoError(t, db.InsertGuest(ctx, &models.ReservationGuest{ReservationID: r.ID, CustomerID: ali.ID, Role: models.RoleGuest, OrderIndex: 1}))

	guests, err := db.ListGuests(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, guests, 2)
	assert.Equal(t, models.RolePrimary, guests[0].Role)
	assert.Equal(t, "Ali Demir", guests[1].CustomerName)

	err = db.InsertGuest(ctx, &models.ReservationGuest{ReservationID: r.ID, CustomerID: ali.ID, Role: models.RoleGuest, OrderIndex: 2})
	assert.True(t, errors.Is(err, domain.ErrDuplicateGuest))

	err = db.InsertGuest(ctx, &models.ReservationGuest{ReservationID: r.ID, CustomerID: 999, Role: models.RoleGuest, OrderIndex: 2})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, db.DeleteGuest(ctx, r.ID, ali.ID))
	err = db.DeleteGuest(ctx, r.ID, ali.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	guests, err = db.ListGuests(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, guests, 1)
}
