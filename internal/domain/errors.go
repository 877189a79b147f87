package domain

import (
	"errors"
	"fmt"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

// ErrorCode is the stable machine-readable identifier returned to API clients.
type ErrorCode string

const (
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeDuplicateKey           ErrorCode = "DUPLICATE_KEY"
	CodeRoomUnavailable        ErrorCode = "ROOM_UNAVAILABLE"
	CodeInvalidTransition      ErrorCode = "INVALID_TRANSITION"
	CodeRoomOccupied           ErrorCode = "ROOM_OCCUPIED"
	CodeDuplicateGuest         ErrorCode = "DUPLICATE_GUEST"
	CodeRoomInUse              ErrorCode = "ROOM_IN_USE"
	CodeCustomerInUse          ErrorCode = "CUSTOMER_IN_USE"
	CodeConcurrentModification ErrorCode = "CONCURRENT_MODIFICATION"
	CodeInternal               ErrorCode = "INTERNAL"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrValidation             = &Error{Code: CodeValidation}
	ErrNotFound               = &Error{Code: CodeNotFound}
	ErrDuplicateKey           = &Error{Code: CodeDuplicateKey}
	ErrRoomUnavailable        = &Error{Code: CodeRoomUnavailable}
	ErrInvalidTransition      = &Error{Code: CodeInvalidTransition}
	ErrRoomOccupied           = &Error{Code: CodeRoomOccupied}
	ErrDuplicateGuest         = &Error{Code: CodeDuplicateGuest}
	ErrRoomInUse              = &Error{Code: CodeRoomInUse}
	ErrCustomerInUse          = &Error{Code: CodeCustomerInUse}
	ErrConcurrentModification = &Error{Code: CodeConcurrentModification}
)

// ErrTxConflict marks a transaction that could not acquire the write lock.
// Callers may retry the whole operation once.
var ErrTxConflict = errors.New("transaction conflict")

// Error is the typed error surfaced by registries and the lifecycle manager.
type Error struct {
	Code       ErrorCode
	Message    string
	Field      string
	ConflictID int64
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field %s)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsError extracts the typed error, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of err or CodeInternal for untyped errors.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return CodeInternal
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id int64) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %d not found", entity, id)}
}

func DuplicateKey(field string, err error) *Error {
	return &Error{Code: CodeDuplicateKey, Field: field, Message: fmt.Sprintf("%s already exists", field), Err: err}
}

func RoomUnavailable(roomID, conflictID int64, reason string) *Error {
	msg := fmt.Sprintf("room %d is not available for the requested dates", roomID)
	if reason != "" {
		msg = fmt.Sprintf("room %d is not available: %s", roomID, reason)
	}
	return &Error{Code: CodeRoomUnavailable, ConflictID: conflictID, Message: msg}
}

func InvalidTransition(from models.ReservationStatus, event models.ReservationEvent) *Error {
	return &Error{
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot %s a reservation in status %s", event, from),
	}
}

func RoomOccupied(roomID, reservationID int64) *Error {
	return &Error{
		Code:       CodeRoomOccupied,
		ConflictID: reservationID,
		Message:    fmt.Sprintf("room %d has a checked-in stay", roomID),
	}
}

func DuplicateGuest(reservationID, customerID int64) *Error {
	return &Error{
		Code:    CodeDuplicateGuest,
		Field:   "customer_id",
		Message: fmt.Sprintf("customer %d is already on reservation %d", customerID, reservationID),
	}
}

func ConcurrentModification(entity string, id, expected, actual int64) *Error {
	return &Error{
		Code:    CodeConcurrentModification,
		Field:   "version",
		Message: fmt.Sprintf("%s %d was modified: expected version %d, found %d", entity, id, expected, actual),
	}
}
