package database

import (
	"context"
	"fmt"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const roomColumns = `id, room_number, room_type, capacity, nightly_rate, amenities, description, status, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }) (*models.Room, error) {
	var (
		room      models.Room
		amenities string
	)
	err := row.Scan(
		&room.ID, &room.Number, &room.Type, &room.Capacity, &room.NightlyRate,
		&amenities, &room.Description, &room.Status, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	room.Amenities = models.SplitAmenities(amenities)
	return &room, nil
}

func (c conn) CreateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now().UTC()
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}

	result, err := c.q.ExecContext(ctx,
		`INSERT INTO rooms (room_number, room_type, capacity, nightly_rate, amenities, description, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.Number, room.Type, room.Capacity, room.NightlyRate,
		models.JoinAmenities(room.Amenities), room.Description, room.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	room.ID = id
	room.CreatedAt = now
	room.UpdatedAt = now
	return nil
}

// UpdateRoom writes the static attributes. Status is changed only via UpdateRoomStatus.
func (c conn) UpdateRoom(ctx context.Context, room *models.Room) error {
	now := time.Now().UTC()
	result, err := c.q.ExecContext(ctx,
		`UPDATE rooms SET room_number = ?, room_type = ?, capacity = ?, nightly_rate = ?, amenities = ?, description = ?, updated_at = ?
         WHERE id = ?`,
		room.Number, room.Type, room.Capacity, room.NightlyRate,
		models.JoinAmenities(room.Amenities), room.Description, now, room.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NotFound("room", room.ID)
	}
	room.UpdatedAt = now
	return nil
}

func (c conn) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	room, err := scanRoom(row)
	if err != nil {
		return nil, notFoundOr(err, "room", id)
	}
	return room, nil
}

func (c conn) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE 1=1`
	var args []any
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		query += ` AND room_type = ?`
		args = append(args, filter.Type)
	}
	query += ` ORDER BY room_number`

	rows, err := c.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	return rooms, rows.Err()
}

func (c conn) DeleteRoom(ctx context.Context, id int64) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.Error{Code: domain.CodeRoomInUse, Message: fmt.Sprintf("room %d has reservations", id), Err: err}
		}
		return fmt.Errorf("failed to delete room: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NotFound("room", id)
	}
	return nil
}

func (c conn) UpdateRoomStatus(ctx context.Context, id int64, status models.RoomStatus) error {
	result, err := c.q.ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update room status: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NotFound("room", id)
	}
	return nil
}

func (c conn) CountRoomsByStatus(ctx context.Context) (map[models.RoomStatus]int, error) {
	rows, err := c.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM rooms GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RoomStatus]int, len(models.AllRoomStatuses))
	for _, s := range models.AllRoomStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var (
			status models.RoomStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan room count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
