package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

func (c conn) ListGuests(ctx context.Context, reservationID int64) ([]models.ReservationGuest, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT g.reservation_id, g.customer_id, c.first_name || ' ' || c.last_name, g.role, g.order_index, g.created_at
         FROM reservation_customers g
         JOIN customers c ON c.id = g.customer_id
         WHERE g.reservation_id = ?
         ORDER BY g.order_index, g.id`, reservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	guests := []models.ReservationGuest{}
	for rows.Next() {
		var g models.ReservationGuest
		if err := rows.Scan(&g.ReservationID, &g.CustomerID, &g.CustomerName, &g.Role, &g.OrderIndex, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (c conn) InsertGuest(ctx context.Context, g *models.ReservationGuest) error {
	now := time.Now().UTC()
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO reservation_customers (reservation_id, customer_id, role, order_index, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		g.ReservationID, g.CustomerID, g.Role, g.OrderIndex, now,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NotFound("customer", g.CustomerID)
		}
		err = translate(err)
		if errors.Is(err, domain.ErrDuplicateKey) {
			return domain.DuplicateGuest(g.ReservationID, g.CustomerID)
		}
		return fmt.Errorf("failed to add guest: %w", err)
	}
	g.CreatedAt = now
	return nil
}

func (c conn) DeleteGuest(ctx context.Context, reservationID, customerID int64) error {
	result, err := c.q.ExecContext(ctx,
		`DELETE FROM reservation_customers WHERE reservation_id = ? AND customer_id = ?`,
		reservationID, customerID)
	if err != nil {
		return fmt.Errorf("failed to remove guest: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &domain.Error{
			Code:    domain.CodeNotFound,
			Message: fmt.Sprintf("customer %d is not on reservation %d", customerID, reservationID),
		}
	}
	return nil
}
