package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
)

type errorBody struct {
	Code                  string `json:"code"`
	Message               string `json:"message"`
	Field                 string `json:"field,omitempty"`
	ConflictReservationID int64  `json:"conflict_reservation_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeValidation:             http.StatusBadRequest,
	domain.CodeInvalidTransition:      http.StatusBadRequest,
	domain.CodeNotFound:               http.StatusNotFound,
	domain.CodeDuplicateKey:           http.StatusConflict,
	domain.CodeRoomUnavailable:        http.StatusConflict,
	domain.CodeRoomOccupied:           http.StatusConflict,
	domain.CodeDuplicateGuest:         http.StatusConflict,
	domain.CodeRoomInUse:              http.StatusConflict,
	domain.CodeCustomerInUse:          http.StatusConflict,
	domain.CodeConcurrentModification: http.StatusConflict,
	domain.CodeInternal:               http.StatusInternalServerError,
}

// httpStatus maps a domain error code to its HTTP status.
func httpStatus(code domain.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeDomainError renders err with the status of its code. Untyped errors
// are logged and hidden behind a generic message.
func writeDomainError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	e, ok := domain.AsError(err)
	if !ok || e.Code == domain.CodeInternal {
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, string(domain.CodeInternal), "internal error")
		return
	}

	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	writeJSON(w, httpStatus(e.Code), errorResponse{Error: errorBody{
		Code:                  string(e.Code),
		Message:               msg,
		Field:                 e.Field,
		ConflictReservationID: e.ConflictID,
	}})
}
