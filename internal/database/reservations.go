package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const reservationSelect = `SELECT r.id, r.room_id, rm.room_number, r.customer_id,
        c.first_name || ' ' || c.last_name,
        r.check_in_date, r.check_out_date, r.guest_count, r.total_amount, r.paid_amount,
        r.notes, r.status, r.actual_check_in, r.actual_check_out, r.cancel_reason,
        r.version, r.created_at, r.updated_at
    FROM reservations r
    JOIN rooms rm ON rm.id = r.room_id
    JOIN customers c ON c.id = r.customer_id`

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	var (
		r                   models.Reservation
		actualIn, actualOut sql.NullTime
	)
	err := row.Scan(
		&r.ID, &r.RoomID, &r.RoomNumber, &r.CustomerID, &r.CustomerName,
		&r.CheckInDate, &r.CheckOutDate, &r.GuestCount, &r.TotalAmount, &r.PaidAmount,
		&r.Notes, &r.Status, &actualIn, &actualOut, &r.CancelReason,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if actualIn.Valid {
		t := actualIn.Time
		r.ActualCheckIn = &t
	}
	if actualOut.Valid {
		t := actualOut.Time
		r.ActualCheckOut = &t
	}
	return &r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (c conn) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := c.q.QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id)
	r, err := scanReservation(row)
	if err != nil {
		return nil, notFoundOr(err, "reservation", id)
	}
	return r, nil
}

func (c conn) InsertReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now().UTC()
	result, err := c.q.ExecContext(ctx,
		`INSERT INTO reservations (
            room_id, customer_id, check_in_date, check_out_date, guest_count, total_amount, paid_amount,
            notes, status, actual_check_in, actual_check_out, cancel_reason, version, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoomID, r.CustomerID, r.CheckInDate, r.CheckOutDate, r.GuestCount, r.TotalAmount, r.PaidAmount,
		r.Notes, r.Status, nullTime(r.ActualCheckIn), nullTime(r.ActualCheckOut), r.CancelReason, 1, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	r.ID = id
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (c conn) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	now := time.Now().UTC()
	result, err := c.q.ExecContext(ctx,
		`UPDATE reservations SET
            room_id = ?, check_in_date = ?, check_out_date = ?, guest_count = ?, total_amount = ?, paid_amount = ?,
            notes = ?, status = ?, actual_check_in = ?, actual_check_out = ?, cancel_reason = ?,
            version = version + 1, updated_at = ?
         WHERE id = ? AND version = ?`,
		r.RoomID, r.CheckInDate, r.CheckOutDate, r.GuestCount, r.TotalAmount, r.PaidAmount,
		r.Notes, r.Status, nullTime(r.ActualCheckIn), nullTime(r.ActualCheckOut), r.CancelReason,
		now, r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", translate(err))
	}

	if n, _ := result.RowsAffected(); n == 0 {
		var current int64
		err := c.q.QueryRowContext(ctx, `SELECT version FROM reservations WHERE id = ?`, r.ID).Scan(&current)
		if err != nil {
			return notFoundOr(err, "reservation", r.ID)
		}
		return domain.ConcurrentModification("reservation", r.ID, r.Version, current)
	}

	r.Version++
	r.UpdatedAt = now
	return nil
}

func statusArgs(statuses []models.ReservationStatus) []any {
	args := make([]any, len(statuses))
	for i, s := range statuses {
		args[i] = s
	}
	return args
}

func (c conn) ListRoomReservations(ctx context.Context, roomID int64, rng models.DateRange, statuses []models.ReservationStatus) ([]models.Reservation, error) {
	if len(statuses) == 0 {
		return []models.Reservation{}, nil
	}

	query := reservationSelect + `
        WHERE r.room_id = ?
          AND r.check_in_date < ? AND ? < r.check_out_date
          AND r.status IN (` + placeholders(len(statuses)) + `)
        ORDER BY r.check_in_date`
	args := append([]any{roomID, rng.End, rng.Start}, statusArgs(statuses)...)

	return c.queryReservations(ctx, query, args...)
}

func (c conn) CheckedInOnRoom(ctx context.Context, roomID, excludeID int64) (int64, error) {
	var id int64
	err := c.q.QueryRowContext(ctx,
		`SELECT id FROM reservations WHERE room_id = ? AND status = ? AND id != ? ORDER BY id LIMIT 1`,
		roomID, models.StatusCheckedIn, excludeID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to check room occupancy: %w", err)
	}
	return id, nil
}

func buildReservationWhere(f models.ReservationFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if name := strings.TrimSpace(f.CustomerName); name != "" {
		clauses = append(clauses, `lower(c.first_name || ' ' || c.last_name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(name))+"%")
	}
	if num := strings.TrimSpace(f.RoomNumber); num != "" {
		clauses = append(clauses, `rm.room_number LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(num)+"%")
	}
	if f.RoomID != 0 {
		clauses = append(clauses, `r.room_id = ?`)
		args = append(args, f.RoomID)
	}
	if f.CustomerID != 0 {
		clauses = append(clauses, `(r.customer_id = ? OR EXISTS (
            SELECT 1 FROM reservation_customers g WHERE g.reservation_id = r.id AND g.customer_id = ?))`)
		args = append(args, f.CustomerID, f.CustomerID)
	}
	if len(f.Statuses) > 0 {
		clauses = append(clauses, `r.status IN (`+placeholders(len(f.Statuses))+`)`)
		args = append(args, statusArgs(f.Statuses)...)
	}
	if !f.From.IsZero() {
		clauses = append(clauses, `r.check_out_date > ?`)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		clauses = append(clauses, `r.check_in_date < ?`)
		args = append(args, f.To)
	}
	if !f.CheckInOn.IsZero() {
		clauses = append(clauses, `r.check_in_date = ?`)
		args = append(args, f.CheckInOn)
	}
	if !f.CheckOutOn.IsZero() {
		clauses = append(clauses, `r.check_out_date = ?`)
		args = append(args, f.CheckOutOn)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (c conn) ListReservations(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	where, args := buildReservationWhere(filter)
	query := reservationSelect + where + ` ORDER BY r.check_in_date, rm.room_number, r.id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}
	return c.queryReservations(ctx, query, args...)
}

func (c conn) CountReservations(ctx context.Context, filter models.ReservationFilter) (int, error) {
	where, args := buildReservationWhere(filter)
	query := `SELECT COUNT(*) FROM reservations r
        JOIN rooms rm ON rm.id = r.room_id
        JOIN customers c ON c.id = r.customer_id` + where

	var n int
	if err := c.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return n, nil
}

func (c conn) queryReservations(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	list := []models.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		list = append(list, *r)
	}
	return list, rows.Err()
}
