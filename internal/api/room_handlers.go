package api

import (
	"net/http"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := decodeJSON(r, &req, false); err != nil {
		fail(w, r, err)
		return
	}
	room, err := s.svc.Rooms.CreateRoom(r.Context(), req.toModel())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.RoomFilter{
		Status: models.RoomStatus(q.Get("status")),
		Type:   models.RoomType(q.Get("type")),
	}
	rooms, err := s.svc.Rooms.ListRooms(r.Context(), filter)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rooms})
}

func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	room, err := s.svc.Rooms.GetRoom(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req roomRequest
	if err := decodeJSON(r, &req, false); err != nil {
		fail(w, r, err)
		return
	}
	room, err := s.svc.Rooms.UpdateRoom(r.Context(), id, req.toModel())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleSetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	var req roomStatusRequest
	if err := decodeJSON(r, &req, false); err != nil {
		fail(w, r, err)
		return
	}
	room, err := s.svc.Rooms.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.svc.Rooms.DeleteRoom(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stayParams reads the check_in/check_out query pair shared by the availability endpoints.
func stayParams(r *http.Request) (models.Date, models.Date, error) {
	checkIn, err := queryDate(r, "check_in")
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	checkOut, err := queryDate(r, "check_out")
	if err != nil {
		return models.Date{}, models.Date{}, err
	}
	if checkIn.IsZero() {
		return models.Date{}, models.Date{}, domain.Validation("check_in", "check_in is required")
	}
	if checkOut.IsZero() {
		return models.Date{}, models.Date{}, domain.Validation("check_out", "check_out is required")
	}
	return checkIn, checkOut, nil
}

func (s *HTTPServer) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, err)
		return
	}
	checkIn, checkOut, err := stayParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	exclude, err := queryInt64(r, "exclude_reservation_id")
	if err != nil {
		fail(w, r, err)
		return
	}
	result, err := s.svc.Reservations.CheckAvailability(r.Context(), id, checkIn, checkOut, exclude)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleFindAvailableRooms(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, err := stayParams(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	guests, err := queryInt(r, "guests")
	if err != nil {
		fail(w, r, err)
		return
	}
	rooms, err := s.svc.Reservations.FindAvailableRooms(r.Context(), checkIn, checkOut, guests)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rooms})
}
