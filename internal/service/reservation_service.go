package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/availability"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/metrics"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

// Operations outside the transition table, used for error messages and metrics.
const (
	opCreate        models.ReservationEvent = "create"
	opUpdate        models.ReservationEvent = "update"
	opAddGuest      models.ReservationEvent = "add_guest"
	opRemoveGuest   models.ReservationEvent = "remove_guest"
	opRecordPayment models.ReservationEvent = "record_payment"
)

type ReservationOptions struct {
	Policy             availability.Policy
	CheckoutRoomStatus models.RoomStatus
	// Location decides what "today" means for no-show handling.
	Location *time.Location
	Now      func() time.Time
}

type ReservationService struct {
	store          domain.Store
	eventBus       domain.EventPublisher
	policy         availability.Policy
	checkoutStatus models.RoomStatus
	loc            *time.Location
	now            func() time.Time
	logger         *zerolog.Logger
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, opts ReservationOptions, logger *zerolog.Logger) *ReservationService {
	if opts.CheckoutRoomStatus == "" {
		opts.CheckoutRoomStatus = models.RoomCleaning
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ReservationService{
		store:          store,
		eventBus:       eventBus,
		policy:         opts.Policy,
		checkoutStatus: opts.CheckoutRoomStatus,
		loc:            opts.Location,
		now:            opts.Now,
		logger:         nopLogger(logger),
	}
}

type CreateReservationInput struct {
	CustomerID         int64
	RoomID             int64
	CheckInDate        models.Date
	CheckOutDate       models.Date
	GuestCount         int
	TotalAmount        models.Money
	PaidAmount         models.Money
	Notes              string
	AdditionalGuestIDs []int64
	// Status is Pending or Confirmed; empty means Pending.
	Status models.ReservationStatus
}

// UpdateReservationInput is a patch; nil fields are left unchanged.
type UpdateReservationInput struct {
	RoomID          *int64
	CheckInDate     *models.Date
	CheckOutDate    *models.Date
	GuestCount      *int
	TotalAmount     *models.Money
	PaidAmount      *models.Money
	Notes           *string
	ExpectedVersion int64
}

type CheckInInput struct {
	At              *time.Time
	Notes           string
	ExpectedVersion int64
}

type CheckOutInput struct {
	At                *time.Time
	AdditionalCharges models.Money
	Notes             string
	ExpectedVersion   int64
}

func (s *ReservationService) today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if err := validateCreate(in, status); err != nil {
		return nil, err
	}

	var created *models.Reservation
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		room, err := tx.GetRoom(ctx, in.RoomID)
		if err != nil {
			return err
		}
		if _, err := tx.GetCustomer(ctx, in.CustomerID); err != nil {
			return err
		}
		for _, id := range in.AdditionalGuestIDs {
			if _, err := tx.GetCustomer(ctx, id); err != nil {
				return err
			}
		}

		rng := models.NewDateRange(in.CheckInDate, in.CheckOutDate)
		if err := s.ensureAvailable(ctx, tx, room, rng, 0); err != nil {
			return err
		}
		s.warnCapacity(room, in.GuestCount)

		r := &models.Reservation{
			RoomID:       room.ID,
			CustomerID:   in.CustomerID,
			CheckInDate:  in.CheckInDate,
			CheckOutDate: in.CheckOutDate,
			GuestCount:   in.GuestCount,
			TotalAmount:  in.TotalAmount,
			PaidAmount:   in.PaidAmount,
			Notes:        strings.TrimSpace(in.Notes),
			Status:       status,
		}
		if err := tx.InsertReservation(ctx, r); err != nil {
			return err
		}

		primary := &models.ReservationGuest{ReservationID: r.ID, CustomerID: in.CustomerID, Role: models.RolePrimary}
		if err := tx.InsertGuest(ctx, primary); err != nil {
			return err
		}
		for i, id := range in.AdditionalGuestIDs {
			g := &models.ReservationGuest{ReservationID: r.ID, CustomerID: id, Role: models.RoleGuest, OrderIndex: i + 1}
			if err := tx.InsertGuest(ctx, g); err != nil {
				return err
			}
		}

		fresh, err := reload(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		created = fresh
		return enqueue(ctx, tx, events.EventReservationCreated, fresh.ID, events.NewReservationPayload(fresh, "", s.now().UTC()))
	})
	if err != nil {
		s.logger.Debug().Err(err).Int64("room_id", in.RoomID).Msg("reservation create rejected")
		return nil, err
	}

	metrics.IncTransition(string(opCreate))
	publish(s.eventBus, s.logger, events.EventReservationCreated, events.NewReservationPayload(created, "", s.now().UTC()))
	s.logger.Info().
		Int64("reservation_id", created.ID).
		Int64("room_id", created.RoomID).
		Str("status", string(created.Status)).
		Str("check_in", created.CheckInDate.String()).
		Str("check_out", created.CheckOutDate.String()).
		Msg("reservation created")
	return created, nil
}

func validateCreate(in CreateReservationInput, status models.ReservationStatus) error {
	if in.RoomID <= 0 {
		return domain.Validation("room_id", "room is required")
	}
	if in.CustomerID <= 0 {
		return domain.Validation("customer_id", "customer is required")
	}
	if !models.InitialStatusAllowed(status) {
		return domain.Validation("status", "a reservation can only start as pending or confirmed")
	}
	if err := validateStay(in.CheckInDate, in.CheckOutDate); err != nil {
		return err
	}
	if err := validateAmounts(in.GuestCount, in.TotalAmount, in.PaidAmount); err != nil {
		return err
	}

	seen := map[int64]bool{in.CustomerID: true}
	for _, id := range in.AdditionalGuestIDs {
		if seen[id] {
			return &domain.Error{
				Code:    domain.CodeDuplicateGuest,
				Field:   "additional_guest_ids",
				Message: fmt.Sprintf("customer %d appears more than once in the guest list", id),
			}
		}
		seen[id] = true
	}
	return nil
}

func validateStay(checkIn, checkOut models.Date) error {
	if checkIn.IsZero() {
		return domain.Validation("check_in_date", "check-in date is required")
	}
	if checkOut.IsZero() {
		return domain.Validation("check_out_date", "check-out date is required")
	}
	if !checkOut.After(checkIn) {
		return domain.Validation("check_out_date", "%s", availability.ReasonInvalidRange)
	}
	return nil
}

func validateAmounts(guestCount int, total, paid models.Money) error {
	if guestCount < 1 {
		return domain.Validation("guest_count", "guest count must be at least 1")
	}
	if total < 0 || total > models.MaxAmount {
		return domain.Validation("total_amount", "total amount must be between 0 and %s", models.MaxAmount)
	}
	if paid < 0 || paid > models.MaxAmount {
		return domain.Validation("paid_amount", "paid amount must be between 0 and %s", models.MaxAmount)
	}
	return nil
}

// Update applies a patch. Room and date changes are re-checked against other stays.
func (s *ReservationService) Update(ctx context.Context, id int64, in UpdateReservationInput) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: opUpdate, id: id, expectedVersion: in.ExpectedVersion, eventType: events.EventReservationUpdated},
		func(tx domain.Tx, r *models.Reservation) error {
			if r.Status.Terminal() {
				return domain.InvalidTransition(r.Status, opUpdate)
			}

			roomID, checkIn, checkOut := r.RoomID, r.CheckInDate, r.CheckOutDate
			if in.RoomID != nil {
				roomID = *in.RoomID
			}
			if in.CheckInDate != nil {
				checkIn = *in.CheckInDate
			}
			if in.CheckOutDate != nil {
				checkOut = *in.CheckOutDate
			}
			if r.Status == models.StatusCheckedIn && (roomID != r.RoomID || !checkIn.Equal(r.CheckInDate)) {
				return &domain.Error{
					Code:    domain.CodeInvalidTransition,
					Message: "room and check-in date of a checked-in reservation cannot change",
				}
			}
			if err := validateStay(checkIn, checkOut); err != nil {
				return err
			}

			guestCount, total, paid := r.GuestCount, r.TotalAmount, r.PaidAmount
			if in.GuestCount != nil {
				guestCount = *in.GuestCount
			}
			if in.TotalAmount != nil {
				total = *in.TotalAmount
			}
			if in.PaidAmount != nil {
				paid = *in.PaidAmount
			}
			if err := validateAmounts(guestCount, total, paid); err != nil {
				return err
			}

			room, err := tx.GetRoom(ctx, roomID)
			if err != nil {
				return err
			}
			changed := roomID != r.RoomID || !checkIn.Equal(r.CheckInDate) || !checkOut.Equal(r.CheckOutDate)
			if changed {
				if err := s.ensureAvailable(ctx, tx, room, models.NewDateRange(checkIn, checkOut), r.ID); err != nil {
					return err
				}
			}
			s.warnCapacity(room, guestCount)

			r.RoomID = roomID
			r.CheckInDate = checkIn
			r.CheckOutDate = checkOut
			r.GuestCount = guestCount
			r.TotalAmount = total
			r.PaidAmount = paid
			if in.Notes != nil {
				r.Notes = strings.TrimSpace(*in.Notes)
			}
			return nil
		})
}

// Confirm re-checks availability since pending stays may not have held the room.
func (s *ReservationService) Confirm(ctx context.Context, id, expectedVersion int64) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: models.EventConfirm, id: id, expectedVersion: expectedVersion, eventType: events.EventReservationConfirmed},
		func(tx domain.Tx, r *models.Reservation) error {
			next, err := advance(r.Status, models.EventConfirm)
			if err != nil {
				return err
			}
			room, err := tx.GetRoom(ctx, r.RoomID)
			if err != nil {
				return err
			}
			if err := s.ensureAvailable(ctx, tx, room, r.Range(), r.ID); err != nil {
				return err
			}
			r.Status = next
			return nil
		})
}

func (s *ReservationService) CheckIn(ctx context.Context, id int64, in CheckInInput) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: models.EventCheckIn, id: id, expectedVersion: in.ExpectedVersion, eventType: events.EventReservationCheckedIn},
		func(tx domain.Tx, r *models.Reservation) error {
			next, err := advance(r.Status, models.EventCheckIn)
			if err != nil {
				return err
			}
			room, err := tx.GetRoom(ctx, r.RoomID)
			if err != nil {
				return err
			}
			if !s.policy.IgnoreRoomStatus && !room.Status.Bookable() {
				metrics.IncAvailabilityConflict("room_status")
				return domain.RoomUnavailable(room.ID, 0, availability.ReasonRoomStatus)
			}
			occupant, err := tx.CheckedInOnRoom(ctx, room.ID, r.ID)
			if err != nil {
				return err
			}
			if occupant != 0 {
				return domain.RoomOccupied(room.ID, occupant)
			}

			at := s.now().UTC()
			if in.At != nil {
				at = in.At.UTC()
			}
			r.ActualCheckIn = &at
			r.Notes = appendNote(r.Notes, in.Notes)
			r.Status = next
			return tx.UpdateRoomStatus(ctx, room.ID, models.RoomOccupied)
		})
}

func (s *ReservationService) CheckOut(ctx context.Context, id int64, in CheckOutInput) (*models.Reservation, error) {
	if in.AdditionalCharges < 0 || in.AdditionalCharges > models.MaxAmount {
		return nil, domain.Validation("additional_charges", "additional charges must be between 0 and %s", models.MaxAmount)
	}
	return s.mutate(ctx, mutation{op: models.EventCheckOut, id: id, expectedVersion: in.ExpectedVersion, eventType: events.EventReservationCheckedOut},
		func(tx domain.Tx, r *models.Reservation) error {
			next, err := advance(r.Status, models.EventCheckOut)
			if err != nil {
				return err
			}

			at := s.now().UTC()
			if in.At != nil {
				at = in.At.UTC()
			}
			if r.ActualCheckIn != nil && at.Before(*r.ActualCheckIn) {
				return domain.Validation("checked_out_at", "check-out time is before the check-in time")
			}

			total, ok := r.TotalAmount.Add(in.AdditionalCharges)
			if !ok {
				return domain.Validation("additional_charges", "total amount would exceed %s", models.MaxAmount)
			}
			r.ActualCheckOut = &at
			r.TotalAmount = total
			r.Notes = appendNote(r.Notes, in.Notes)
			r.Status = next

			occupant, err := tx.CheckedInOnRoom(ctx, r.RoomID, r.ID)
			if err != nil {
				return err
			}
			if occupant != 0 {
				s.logger.Warn().Int64("room_id", r.RoomID).Int64("occupant", occupant).Msg("room still has a checked-in stay, status kept")
				return nil
			}
			return tx.UpdateRoomStatus(ctx, r.RoomID, s.checkoutStatus)
		})
}

func (s *ReservationService) Cancel(ctx context.Context, id int64, reason string, expectedVersion int64) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: models.EventCancel, id: id, expectedVersion: expectedVersion, eventType: events.EventReservationCancelled},
		func(_ domain.Tx, r *models.Reservation) error {
			next, err := advance(r.Status, models.EventCancel)
			if err != nil {
				return err
			}
			r.Status = next
			r.CancelReason = strings.TrimSpace(reason)
			return nil
		})
}

// MarkNoShow is allowed once the check-in date has arrived.
func (s *ReservationService) MarkNoShow(ctx context.Context, id, expectedVersion int64) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: models.EventNoShow, id: id, expectedVersion: expectedVersion, eventType: events.EventReservationNoShow},
		func(_ domain.Tx, r *models.Reservation) error {
			next, err := advance(r.Status, models.EventNoShow)
			if err != nil {
				return err
			}
			if r.CheckInDate.After(s.today()) {
				return &domain.Error{
					Code:    domain.CodeInvalidTransition,
					Message: fmt.Sprintf("check-in date %s has not arrived yet", r.CheckInDate),
				}
			}
			r.Status = next
			return nil
		})
}

func (s *ReservationService) AddGuest(ctx context.Context, id, customerID int64) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: opAddGuest, id: id, eventType: events.EventGuestAdded, guestID: customerID},
		func(tx domain.Tx, r *models.Reservation) error {
			if r.Status.Terminal() {
				return domain.InvalidTransition(r.Status, opAddGuest)
			}
			if _, err := tx.GetCustomer(ctx, customerID); err != nil {
				return err
			}
			guests, err := tx.ListGuests(ctx, r.ID)
			if err != nil {
				return err
			}
			next := 0
			for _, g := range guests {
				if g.CustomerID == customerID {
					return domain.DuplicateGuest(r.ID, customerID)
				}
				if g.OrderIndex >= next {
					next = g.OrderIndex + 1
				}
			}
			return tx.InsertGuest(ctx, &models.ReservationGuest{
				ReservationID: r.ID,
				CustomerID:    customerID,
				Role:          models.RoleGuest,
				OrderIndex:    next,
			})
		})
}

func (s *ReservationService) RemoveGuest(ctx context.Context, id, customerID int64) (*models.Reservation, error) {
	return s.mutate(ctx, mutation{op: opRemoveGuest, id: id, eventType: events.EventGuestRemoved, guestID: customerID},
		func(tx domain.Tx, r *models.Reservation) error {
			if r.Status.Terminal() {
				return domain.InvalidTransition(r.Status, opRemoveGuest)
			}
			guests, err := tx.ListGuests(ctx, r.ID)
			if err != nil {
				return err
			}
			for _, g := range guests {
				if g.CustomerID != customerID {
					continue
				}
				if g.Role == models.RolePrimary {
					return domain.Validation("customer_id", "the primary guest cannot be removed")
				}
				return tx.DeleteGuest(ctx, r.ID, customerID)
			}
			return &domain.Error{
				Code:    domain.CodeNotFound,
				Message: fmt.Sprintf("customer %d is not on reservation %d", customerID, r.ID),
			}
		})
}

// RecordPayment adds amount to the paid total. Overpayment is kept as is.
func (s *ReservationService) RecordPayment(ctx context.Context, id int64, amount models.Money, expectedVersion int64) (*models.Reservation, error) {
	if amount <= 0 || amount > models.MaxAmount {
		return nil, domain.Validation("amount", "payment amount must be between 0.01 and %s", models.MaxAmount)
	}
	return s.mutate(ctx, mutation{op: opRecordPayment, id: id, expectedVersion: expectedVersion, eventType: events.EventPaymentRecorded},
		func(_ domain.Tx, r *models.Reservation) error {
			if r.Status == models.StatusCancelled || r.Status == models.StatusNoShow {
				return domain.InvalidTransition(r.Status, opRecordPayment)
			}
			paid, ok := r.PaidAmount.Add(amount)
			if !ok {
				return domain.Validation("amount", "paid amount would exceed %s", models.MaxAmount)
			}
			r.PaidAmount = paid
			return nil
		})
}

// SweepNoShows marks confirmed stays whose check-in date is already past.
// It returns the number of reservations marked.
func (s *ReservationService) SweepNoShows(ctx context.Context) (int, error) {
	overdue, err := s.store.ListReservations(ctx, models.ReservationFilter{
		Statuses: []models.ReservationStatus{models.StatusConfirmed},
		To:       s.today(),
	})
	if err != nil {
		return 0, err
	}

	var (
		marked int
		errs   []error
	)
	for i := range overdue {
		r := &overdue[i]
		if _, err := s.MarkNoShow(ctx, r.ID, r.Version); err != nil {
			code := domain.CodeOf(err)
			if code == domain.CodeConcurrentModification || code == domain.CodeInvalidTransition {
				s.logger.Debug().Err(err).Int64("reservation_id", r.ID).Msg("no-show skipped")
				continue
			}
			errs = append(errs, fmt.Errorf("reservation %d: %w", r.ID, err))
			continue
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info().Int("count", marked).Msg("no-show sweep finished")
	}
	return marked, errors.Join(errs...)
}

// CheckAvailability answers a pre-flight query for one room without writing anything.
func (s *ReservationService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut models.Date, excludeID int64) (*models.RoomAvailability, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	rng := models.NewDateRange(checkIn, checkOut)
	existing, err := s.store.ListRoomReservations(ctx, roomID, rng, s.policy.BlockingStatuses())
	if err != nil {
		return nil, err
	}
	res := s.policy.Check(room, existing, rng, excludeID)
	return &models.RoomAvailability{
		RoomID:                room.ID,
		RoomNumber:            room.Number,
		CheckInDate:           checkIn,
		CheckOutDate:          checkOut,
		Available:             res.Available,
		Reason:                res.Reason,
		ConflictReservationID: res.ConflictReservationID,
	}, nil
}

// FindAvailableRooms lists rooms free for the whole stay with at least guests beds.
// guests <= 0 skips the capacity filter.
func (s *ReservationService) FindAvailableRooms(ctx context.Context, checkIn, checkOut models.Date, guests int) ([]models.Room, error) {
	if err := validateStay(checkIn, checkOut); err != nil {
		return nil, err
	}
	rooms, err := s.store.ListRooms(ctx, models.RoomFilter{})
	if err != nil {
		return nil, err
	}

	rng := models.NewDateRange(checkIn, checkOut)
	free := []models.Room{}
	for i := range rooms {
		room := &rooms[i]
		if guests > 0 && room.Capacity < guests {
			continue
		}
		existing, err := s.store.ListRoomReservations(ctx, room.ID, rng, s.policy.BlockingStatuses())
		if err != nil {
			return nil, err
		}
		if s.policy.Check(room, existing, rng, 0).Available {
			free = append(free, *room)
		}
	}
	return free, nil
}

type mutation struct {
	op              models.ReservationEvent
	id              int64
	expectedVersion int64
	eventType       string
	guestID         int64
}

// mutate loads reservation m.id inside a transaction, lets apply change it,
// then persists it with an outbox row. The version check happens before apply.
func (s *ReservationService) mutate(ctx context.Context, m mutation, apply func(tx domain.Tx, r *models.Reservation) error) (*models.Reservation, error) {
	var (
		result   *models.Reservation
		previous models.ReservationStatus
	)
	err := runInTx(ctx, s.store, s.logger, func(tx domain.Tx) error {
		r, err := tx.GetReservation(ctx, m.id)
		if err != nil {
			return err
		}
		if m.expectedVersion != 0 && r.Version != m.expectedVersion {
			return domain.ConcurrentModification("reservation", r.ID, m.expectedVersion, r.Version)
		}
		previous = r.Status

		if err := apply(tx, r); err != nil {
			return err
		}
		if err := tx.UpdateReservation(ctx, r); err != nil {
			return err
		}

		fresh, err := reload(ctx, tx, r.ID)
		if err != nil {
			return err
		}
		result = fresh
		return enqueue(ctx, tx, m.eventType, fresh.ID, s.payload(fresh, previous, m.guestID))
	})
	if err != nil {
		s.logger.Debug().Err(err).Int64("reservation_id", m.id).Str("operation", string(m.op)).Msg("reservation operation rejected")
		return nil, err
	}

	metrics.IncTransition(string(m.op))
	publish(s.eventBus, s.logger, m.eventType, s.payload(result, previous, m.guestID))
	s.logger.Info().
		Int64("reservation_id", result.ID).
		Str("operation", string(m.op)).
		Str("from", string(previous)).
		Str("to", string(result.Status)).
		Int64("version", result.Version).
		Msg("reservation updated")
	return result, nil
}

func (s *ReservationService) payload(r *models.Reservation, previous models.ReservationStatus, guestID int64) events.ReservationEventPayload {
	p := events.NewReservationPayload(r, previous, s.now().UTC())
	p.GuestID = guestID
	return p
}

func (s *ReservationService) ensureAvailable(ctx context.Context, tx domain.Tx, room *models.Room, rng models.DateRange, excludeID int64) error {
	existing, err := tx.ListRoomReservations(ctx, room.ID, rng, s.policy.BlockingStatuses())
	if err != nil {
		return err
	}

	res := s.policy.Check(room, existing, rng, excludeID)
	if res.Available {
		return nil
	}
	switch res.Reason {
	case availability.ReasonInvalidRange:
		return domain.Validation("check_out_date", "%s", res.Reason)
	case availability.ReasonRoomStatus:
		metrics.IncAvailabilityConflict("room_status")
		return domain.RoomUnavailable(room.ID, 0, res.Reason)
	default:
		metrics.IncAvailabilityConflict("overlap")
		return domain.RoomUnavailable(room.ID, res.ConflictReservationID, res.Reason)
	}
}

func (s *ReservationService) warnCapacity(room *models.Room, guestCount int) {
	if guestCount > room.Capacity {
		s.logger.Warn().
			Int64("room_id", room.ID).
			Int("capacity", room.Capacity).
			Int("guest_count", guestCount).
			Msg("guest count exceeds room capacity")
	}
}

func advance(from models.ReservationStatus, event models.ReservationEvent) (models.ReservationStatus, error) {
	next, ok := models.NextStatus(from, event)
	if !ok {
		return "", domain.InvalidTransition(from, event)
	}
	return next, nil
}

func reload(ctx context.Context, tx domain.Tx, id int64) (*models.Reservation, error) {
	r, err := tx.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	guests, err := tx.ListGuests(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Guests = guests
	return r, nil
}

func appendNote(notes, extra string) string {
	extra = strings.TrimSpace(extra)
	switch {
	case extra == "":
		return notes
	case notes == "":
		return extra
	default:
		return notes + "\n" + extra
	}
}
