package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/events"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

// calendarStatuses are the stays that occupy a night on the calendar.
var calendarStatuses = []models.ReservationStatus{
	models.StatusPending, models.StatusConfirmed, models.StatusCheckedIn, models.StatusCheckedOut,
}

// QueryService serves read-only projections. It never writes to the store.
type QueryService struct {
	store    domain.Store
	cache    domain.ProjectionCache
	cacheTTL time.Duration
	loc      *time.Location
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewQueryService(store domain.Store, cache domain.ProjectionCache, cacheTTL time.Duration, loc *time.Location, logger *zerolog.Logger) *QueryService {
	if loc == nil {
		loc = time.UTC
	}
	return &QueryService{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		loc:      loc,
		now:      time.Now,
		logger:   nopLogger(logger),
	}
}

// Today is the current calendar day in the pension's time zone.
func (q *QueryService) Today() models.Date {
	return models.DateOf(q.now().In(q.loc))
}

// SubscribeInvalidation drops cached projections whenever a reservation or room changes.
func (q *QueryService) SubscribeInvalidation(bus *events.EventBus) {
	if q.cache == nil || bus == nil {
		return
	}
	bus.SubscribeMany(events.ProjectionEvents, func(*events.Event) error {
		return q.cache.Invalidate(context.Background())
	})
}

func (q *QueryService) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	r, err := q.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	guests, err := q.store.ListGuests(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Guests = guests
	return r, nil
}

func (q *QueryService) ListReservations(ctx context.Context, filter models.ReservationFilter, page, pageSize int) (*models.ReservationPage, error) {
	for _, s := range filter.Statuses {
		if !s.Valid() {
			return nil, domain.Validation("status", "unknown reservation status %q", s)
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return nil, domain.Validation("to", "to must be after from")
	}

	page, pageSize = normalizePage(page, pageSize)
	total, err := q.store.CountReservations(ctx, filter)
	if err != nil {
		return nil, err
	}

	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	items, err := q.store.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &models.ReservationPage{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Arrivals lists stays expected to check in on date.
func (q *QueryService) Arrivals(ctx context.Context, date models.Date) ([]models.Reservation, error) {
	if date.IsZero() {
		date = q.Today()
	}
	return q.store.ListReservations(ctx, models.ReservationFilter{
		Statuses:  []models.ReservationStatus{models.StatusPending, models.StatusConfirmed, models.StatusCheckedIn},
		CheckInOn: date,
	})
}

// Departures lists stays due to check out on date.
func (q *QueryService) Departures(ctx context.Context, date models.Date) ([]models.Reservation, error) {
	if date.IsZero() {
		date = q.Today()
	}
	return q.store.ListReservations(ctx, models.ReservationFilter{
		Statuses:   []models.ReservationStatus{models.StatusCheckedIn, models.StatusCheckedOut},
		CheckOutOn: date,
	})
}

func validateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return domain.Validation("month", "month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return domain.Validation("year", "year %d is out of range", year)
	}
	return nil
}

func (q *QueryService) GetCalendar(ctx context.Context, year, month int) (*models.Calendar, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("calendar:%04d-%02d", year, month)
	var cached models.Calendar
	gen, hit := q.cacheGet(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	rng := models.MonthRange(year, time.Month(month))
	reservations, err := q.store.ListReservations(ctx, models.ReservationFilter{
		Statuses: calendarStatuses,
		From:     rng.Start,
		To:       rng.End,
	})
	if err != nil {
		return nil, err
	}

	cal := buildCalendar(year, month, rng, reservations)
	q.cacheSet(ctx, key, gen, cal)
	return cal, nil
}

func buildCalendar(year, month int, rng models.DateRange, reservations []models.Reservation) *models.Calendar {
	days := rng.Days()
	cal := &models.Calendar{Year: year, Month: month, Days: make([]models.CalendarDay, 0, len(days))}
	for _, d := range days {
		day := models.CalendarDay{Date: d, Reservations: []models.CalendarEntry{}}
		for i := range reservations {
			r := &reservations[i]
			if !r.Range().Contains(d) {
				continue
			}
			day.Reservations = append(day.Reservations, models.CalendarEntry{
				ReservationID: r.ID,
				RoomID:        r.RoomID,
				RoomNumber:    r.RoomNumber,
				CustomerName:  r.CustomerName,
				Status:        r.Status,
				CheckInDate:   r.CheckInDate,
				CheckOutDate:  r.CheckOutDate,
			})
		}
		cal.Days = append(cal.Days, day)
	}
	return cal
}

// GetDashboard summarizes the front desk for date; the zero date means today.
func (q *QueryService) GetDashboard(ctx context.Context, date models.Date) (*models.DashboardSummary, error) {
	if date.IsZero() {
		date = q.Today()
	}

	key := "dashboard:" + date.String()
	var cached models.DashboardSummary
	gen, hit := q.cacheGet(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	summary := &models.DashboardSummary{Date: date}
	counts := []struct {
		dst    *int
		filter models.ReservationFilter
	}{
		{&summary.TodayCheckIns, models.ReservationFilter{
			Statuses: []models.ReservationStatus{models.StatusConfirmed, models.StatusCheckedIn}, CheckInOn: date,
		}},
		{&summary.TodayCheckOuts, models.ReservationFilter{
			Statuses: []models.ReservationStatus{models.StatusCheckedIn, models.StatusCheckedOut}, CheckOutOn: date,
		}},
		{&summary.ActiveReservations, models.ReservationFilter{
			Statuses: []models.ReservationStatus{models.StatusConfirmed, models.StatusCheckedIn},
		}},
		{&summary.PendingCount, models.ReservationFilter{
			Statuses: []models.ReservationStatus{models.StatusPending},
		}},
	}
	for _, c := range counts {
		n, err := q.store.CountReservations(ctx, c.filter)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	byStatus, err := q.store.CountRoomsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	summary.RoomsByStatus = byStatus
	for _, n := range byStatus {
		summary.TotalRooms += n
	}
	summary.OccupiedRooms = byStatus[models.RoomOccupied]
	if summary.TotalRooms > 0 {
		rate := float64(summary.OccupiedRooms) / float64(summary.TotalRooms)
		summary.OccupancyRate = math.Round(rate*10000) / 10000
	}

	q.cacheSet(ctx, key, gen, summary)
	return summary, nil
}

// cacheGet must run before the store is read: the returned generation ties the
// later cacheSet to the state the projection was built from.
func (q *QueryService) cacheGet(ctx context.Context, key string, dest any) (int64, bool) {
	if q.cache == nil {
		return 0, false
	}
	ok, gen, err := q.cache.Get(ctx, key, dest)
	if err != nil {
		q.logger.Warn().Err(err).Str("key", key).Msg("projection cache read failed")
		return gen, false
	}
	return gen, ok
}

func (q *QueryService) cacheSet(ctx context.Context, key string, gen int64, value any) {
	if q.cache == nil {
		return
	}
	if err := q.cache.Set(ctx, key, gen, value, q.cacheTTL); err != nil {
		q.logger.Warn().Err(err).Str("key", key).Msg("projection cache write failed")
	}
}
