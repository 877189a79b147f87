package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const (
	minCapacity      = 1
	maxCapacity      = 20
	maxRoomNumberLen = 20
)

type RoomService struct {
	store         domain.Store
	eventBus      domain.EventPublisher
	allowOverride bool
	logger        *zerolog.Logger
}

// NewRoomService builds the room registry. allowOverride disables the
// occupied-room guard on manual status changes.
func NewRoomService(store domain.Store, eventBus domain.EventPublisher, allowOverride bool, logger *zerolog.Logger) *RoomService {
	return &RoomService{
		store:         store,
		eventBus:      eventBus,
		allowOverride: allowOverride,
		logger:        nopLogger(logger),
	}
}

func validateRoom(room *models.Room) error {
	room.Number = strings.TrimSpace(room.Number)
	room.Description = strings.TrimSpace(room.Description)

	if room.Number == "" {
		return domain.Validation("room_number", "room number is required")
	}
	if len(room.Number) > maxRoomNumberLen {
		return domain.Validation("room_number", "room number must be at most %d characters", maxRoomNumberLen)
	}
	if !room.Type.Valid() {
		return domain.Validation("room_type", "unknown room type %q", room.Type)
	}
	if room.Capacity < minCapacity || room.Capacity > maxCapacity {
		return domain.Validation("capacity", "capacity must be between %d and %d", minCapacity, maxCapacity)
	}
	if room.NightlyRate < 0 || room.NightlyRate > models.MaxNightlyRate {
		return domain.Validation("nightly_rate", "nightly rate must be between 0 and %s", models.MaxNightlyRate)
	}

	seen := make(map[models.Amenity]bool, len(room.Amenities))
	amenities := make([]models.Amenity, 0, len(room.Amenities))
	for _, a := range room.Amenities {
		if !a.Valid() {
			return domain.Validation("amenities", "unknown amenity %q", a)
		}
		if !seen[a] {
			seen[a] = true
			amenities = append(amenities, a)
		}
	}
	room.Amenities = amenities
	return nil
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	if !room.Status.Valid() || room.Status == models.RoomOccupied {
		return nil, domain.Validation("status", "a new room cannot start in status %q", room.Status)
	}

	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		return enqueue(ctx, tx, events.EventRoomCreated, room.ID, roomPayload(room, ""))
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventRoomCreated, roomPayload(room, ""))
	s.logger.Info().Int64("room_id", room.ID).Str("room_number", room.Number).Msg("room created")
	return room, nil
}

// UpdateRoom replaces the static attributes of room id. Status is left untouched.
func (s *RoomService) UpdateRoom(ctx context.Context, id int64, attrs *models.Room) (*models.Room, error) {
	if err := validateRoom(attrs); err != nil {
		return nil, err
	}

	var updated *models.Room
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		room, err := tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		room.Number = attrs.Number
		room.Type = attrs.Type
		room.Capacity = attrs.Capacity
		room.NightlyRate = attrs.NightlyRate
		room.Amenities = attrs.Amenities
		room.Description = attrs.Description
		if err := tx.UpdateRoom(ctx, room); err != nil {
			return err
		}
		updated = room
		return enqueue(ctx, tx, events.EventRoomUpdated, room.ID, roomPayload(room, ""))
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventRoomUpdated, roomPayload(updated, ""))
	return updated, nil
}

// SetStatus is the manual staff override. Occupied is owned by check-in and
// check-out and cannot be set here.
func (s *RoomService) SetStatus(ctx context.Context, id int64, status models.RoomStatus) (*models.Room, error) {
	if !status.Valid() {
		return nil, domain.Validation("status", "unknown room status %q", status)
	}
	if status == models.RoomOccupied {
		return nil, domain.Validation("status", "occupied is set by check-in and cannot be assigned manually")
	}

	var (
		room     *models.Room
		previous models.RoomStatus
	)
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		r, err := tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		if !s.allowOverride {
			occupant, err := tx.CheckedInOnRoom(ctx, id, 0)
			if err != nil {
				return err
			}
			if occupant != 0 {
				return domain.RoomOccupied(id, occupant)
			}
		}
		previous = r.Status
		if err := tx.UpdateRoomStatus(ctx, id, status); err != nil {
			return err
		}
		r.Status = status
		r.UpdatedAt = time.Now().UTC()
		room = r
		return enqueue(ctx, tx, events.EventRoomStatusChanged, id, roomPayload(r, previous))
	})
	if err != nil {
		return nil, err
	}

	publish(s.eventBus, s.logger, events.EventRoomStatusChanged, roomPayload(room, previous))
	s.logger.Info().
		Int64("room_id", id).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("room status changed manually")
	return room, nil
}

func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *RoomService) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Validation("status", "unknown room status %q", filter.Status)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Validation("room_type", "unknown room type %q", filter.Type)
	}
	return s.store.ListRooms(ctx, filter)
}

func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	var room *models.Room
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		r, err := tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteRoom(ctx, id); err != nil {
			return err
		}
		room = r
		return enqueue(ctx, tx, events.EventRoomDeleted, id, roomPayload(r, ""))
	})
	if err != nil {
		return err
	}

	publish(s.eventBus, s.logger, events.EventRoomDeleted, roomPayload(room, ""))
	s.logger.Info().Int64("room_id", id).Msg("room deleted")
	return nil
}

func roomPayload(room *models.Room, previous models.RoomStatus) events.RoomEventPayload {
	return events.RoomEventPayload{
		RoomID:         room.ID,
		RoomNumber:     room.Number,
		Status:         room.Status,
		PreviousStatus: previous,
		OccurredAt:     time.Now().UTC(),
	}
}
