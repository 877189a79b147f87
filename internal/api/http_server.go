package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/config"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/service"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Rooms        *service.RoomService
	Customers    *service.CustomerService
	Reservations *service.ReservationService
	Queries      *service.QueryService
	Store        domain.Store
}

// HTTPServer exposes the reservation engine as a JSON API under /api/v1.
type HTTPServer struct {
	cfg     config.APIConfig
	svc     Services
	auth    *HTTPAuth
	handler http.Handler
	server  *http.Server
	logger  *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{cfg: cfg, svc: svc, auth: NewHTTPAuth(cfg), logger: logger}

	mux := http.NewServeMux()
	srv.routes(mux)
	srv.handler = chain(mux,
		requestIDMiddleware(logger),
		recoverMiddleware,
		loggingMiddleware,
	)

	readTimeout := cfg.HTTP.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 5 * time.Second
	}
	writeTimeout := cfg.HTTP.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 15 * time.Second
	}
	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.handler,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	handle := func(pattern, permission string, h http.HandlerFunc) {
		mux.Handle(pattern, s.auth.Require(permission, h))
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	handle("POST /api/v1/rooms", permWriteRooms, s.handleCreateRoom)
	handle("GET /api/v1/rooms", permReadRooms, s.handleListRooms)
	handle("GET /api/v1/rooms/available", permReadAvailability, s.handleFindAvailableRooms)
	handle("GET /api/v1/rooms/{id}", permReadRooms, s.handleGetRoom)
	handle("PUT /api/v1/rooms/{id}", permWriteRooms, s.handleUpdateRoom)
	handle("PATCH /api/v1/rooms/{id}/status", permWriteRooms, s.handleSetRoomStatus)
	handle("DELETE /api/v1/rooms/{id}", permWriteRooms, s.handleDeleteRoom)
	handle("GET /api/v1/rooms/{id}/availability", permReadAvailability, s.handleCheckAvailability)

	handle("POST /api/v1/customers", permWriteCustomers, s.handleCreateCustomer)
	handle("GET /api/v1/customers", permReadCustomers, s.handleSearchCustomers)
	handle("GET /api/v1/customers/{id}", permReadCustomers, s.handleGetCustomer)
	handle("PUT /api/v1/customers/{id}", permWriteCustomers, s.handleUpdateCustomer)
	handle("DELETE /api/v1/customers/{id}", permWriteCustomers, s.handleDeleteCustomer)

	handle("POST /api/v1/reservations", permWriteReservations, s.handleCreateReservation)
	handle("GET /api/v1/reservations", permReadReservations, s.handleListReservations)
	handle("GET /api/v1/reservations/arrivals", permReadReservations, s.handleArrivals)
	handle("GET /api/v1/reservations/departures", permReadReservations, s.handleDepartures)
	handle("GET /api/v1/reservations/{id}", permReadReservations, s.handleGetReservation)
	handle("PUT /api/v1/reservations/{id}", permWriteReservations, s.handleUpdateReservation)
	handle("POST /api/v1/reservations/{id}/confirm", permWriteReservations, s.handleConfirm)
	handle("POST /api/v1/reservations/{id}/check-in", permWriteReservations, s.handleCheckIn)
	handle("POST /api/v1/reservations/{id}/check-out", permWriteReservations, s.handleCheckOut)
	handle("POST /api/v1/reservations/{id}/cancel", permWriteReservations, s.handleCancel)
	handle("POST /api/v1/reservations/{id}/no-show", permWriteReservations, s.handleNoShow)
	handle("POST /api/v1/reservations/{id}/payments", permWriteReservations, s.handleRecordPayment)
	handle("POST /api/v1/reservations/{id}/guests", permWriteReservations, s.handleAddGuest)
	handle("DELETE /api/v1/reservations/{id}/guests/{customerId}", permWriteReservations, s.handleRemoveGuest)

	handle("GET /api/v1/calendar", permReadReservations, s.handleCalendar)
	handle("GET /api/v1/calendar/export", permReadReservations, s.handleCalendarExport)
	handle("GET /api/v1/dashboard", permReadReservations, s.handleDashboard)
}

// Handler returns the fully wrapped router.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Store.Health(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail renders a service or decoding error with the request-scoped logger.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	writeDomainError(w, zerolog.Ctx(r.Context()), err)
}
