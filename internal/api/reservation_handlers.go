package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/service"
)

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := decodeJSON(r, &req, false); err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Reservations.Create(r.Context(), req.toInput())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ReservationFilter{
		CustomerName: strings.TrimSpace(q.Get("customer")),
		RoomNumber:   strings.TrimSpace(q.Get("room")),
	}
	for _, st := range splitCSV(q.Get("status")) {
		filter.Statuses = append(filter.Statuses, models.ReservationStatus(st))
	}

	var err error
	if filter.From, err = queryDate(r, "from"); err != nil {
		fail(w, r, err)
		return
	}
	if filter.To, err = queryDate(r, "to"); err != nil {
		fail(w, r, err)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		fail(w, r, err)
		return
	}
	size, err := queryInt(r, "page_size")
	if err != nil {
		fail(w, r, err)
		return
	}

	result, err := s.svc.Queries.ListReservations(r.Context(), filter, page, size)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Queries.GetReservation(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	var req updateReservationRequest
	s.mutateReservation(w, r, &req, false, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.Update(ctx, id, req.toInput())
	})
}

func (s *HTTPServer) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req versionRequest
	s.mutateReservation(w, r, &req, true, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.Confirm(ctx, id, req.Version)
	})
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	s.mutateReservation(w, r, &req, true, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.CheckIn(ctx, id, service.CheckInInput{
			At:              req.At,
			Notes:           req.Notes,
			ExpectedVersion: req.Version,
		})
	})
}

func (s *HTTPServer) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req checkOutRequest
	s.mutateReservation(w, r, &req, true, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.CheckOut(ctx, id, service.CheckOutInput{
			At:                req.At,
			AdditionalCharges: req.AdditionalCharges,
			Notes:             req.Notes,
			ExpectedVersion:   req.Version,
		})
	})
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	s.mutateReservation(w, r, &req, true, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.Cancel(ctx, id, req.Reason, req.Version)
	})
}

func (s *HTTPServer) handleNoShow(w http.ResponseWriter, r *http.Request) {
	var req versionRequest
	s.mutateReservation(w, r, &req, true, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.MarkNoShow(ctx, id, req.Version)
	})
}

func (s *HTTPServer) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	s.mutateReservation(w, r, &req, false, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.RecordPayment(ctx, id, req.Amount, req.Version)
	})
}

func (s *HTTPServer) handleAddGuest(w http.ResponseWriter, r *http.Request) {
	var req guestRequest
	s.mutateReservation(w, r, &req, false, func(ctx context.Context, id int64) (*models.Reservation, error) {
		return s.svc.Reservations.AddGuest(ctx, id, req.CustomerID)
	})
}

func (s *HTTPServer) handleRemoveGuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	customerID, err := pathID(r, "customerId")
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Reservations.RemoveGuest(r.Context(), id, customerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// mutateReservation parses the path id and body, then runs op and renders the
// updated reservation.
func (s *HTTPServer) mutateReservation(
	w http.ResponseWriter,
	r *http.Request,
	body any,
	allowEmpty bool,
	op func(ctx context.Context, id int64) (*models.Reservation, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := decodeJSON(r, body, allowEmpty); err != nil {
		fail(w, r, err)
		return
	}
	res, err := op(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
