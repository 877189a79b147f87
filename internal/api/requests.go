package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/service"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type roomRequest struct {
	Number      string            `json:"room_number" validate:"required,max=20"`
	Type        models.RoomType   `json:"room_type" validate:"required,oneof=single double triple family suite"`
	Capacity    int               `json:"capacity" validate:"required,min=1,max=20"`
	NightlyRate models.Money      `json:"nightly_rate" validate:"min=0"`
	Amenities   []models.Amenity  `json:"amenities"`
	Description string            `json:"description" validate:"max=1000"`
	Status      models.RoomStatus `json:"status" validate:"omitempty,oneof=available occupied cleaning maintenance out_of_order"`
}

func (r roomRequest) toModel() *models.Room {
	return &models.Room{
		Number:      r.Number,
		Type:        r.Type,
		Capacity:    r.Capacity,
		NightlyRate: r.NightlyRate,
		Amenities:   r.Amenities,
		Description: r.Description,
		Status:      r.Status,
	}
}

type roomStatusRequest struct {
	Status models.RoomStatus `json:"status" validate:"required"`
}

type customerRequest struct {
	FirstName   string      `json:"first_name" validate:"required,max=100"`
	LastName    string      `json:"last_name" validate:"required,max=100"`
	NationalID  string      `json:"national_id" validate:"max=20"`
	PassportNo  string      `json:"passport_no" validate:"max=20"`
	Phone       string      `json:"phone" validate:"max=30"`
	Email       string      `json:"email" validate:"omitempty,email"`
	Address     string      `json:"address" validate:"max=500"`
	Nationality string      `json:"nationality" validate:"max=50"`
	DateOfBirth models.Date `json:"date_of_birth"`
	Notes       string      `json:"notes" validate:"max=1000"`
}

func (r customerRequest) toModel() *models.Customer {
	return &models.Customer{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		NationalID:  r.NationalID,
		PassportNo:  r.PassportNo,
		Phone:       r.Phone,
		Email:       r.Email,
		Address:     r.Address,
		Nationality: r.Nationality,
		DateOfBirth: r.DateOfBirth,
		Notes:       r.Notes,
	}
}

type createReservationRequest struct {
	CustomerID   int64                    `json:"customer_id" validate:"required,gt=0"`
	RoomID       int64                    `json:"room_id" validate:"required,gt=0"`
	CheckInDate  models.Date              `json:"check_in_date"`
	CheckOutDate models.Date              `json:"check_out_date"`
	GuestCount   int                      `json:"guest_count" validate:"required,min=1"`
	TotalAmount  models.Money             `json:"total_amount" validate:"min=0"`
	PaidAmount   models.Money             `json:"paid_amount" validate:"min=0"`
	Notes        string                   `json:"notes" validate:"max=1000"`
	GuestIDs     []int64                  `json:"guest_ids" validate:"omitempty,dive,gt=0"`
	Status       models.ReservationStatus `json:"status" validate:"omitempty,oneof=pending confirmed"`
}

func (r createReservationRequest) toInput() service.CreateReservationInput {
	return service.CreateReservationInput{
		CustomerID:         r.CustomerID,
		RoomID:             r.RoomID,
		CheckInDate:        r.CheckInDate,
		CheckOutDate:       r.CheckOutDate,
		GuestCount:         r.GuestCount,
		TotalAmount:        r.TotalAmount,
		PaidAmount:         r.PaidAmount,
		Notes:              r.Notes,
		AdditionalGuestIDs: r.GuestIDs,
		Status:             r.Status,
	}
}

type updateReservationRequest struct {
	RoomID       *int64        `json:"room_id" validate:"omitempty,gt=0"`
	CheckInDate  *models.Date  `json:"check_in_date"`
	CheckOutDate *models.Date  `json:"check_out_date"`
	GuestCount   *int          `json:"guest_count" validate:"omitempty,min=1"`
	TotalAmount  *models.Money `json:"total_amount" validate:"omitempty,min=0"`
	PaidAmount   *models.Money `json:"paid_amount" validate:"omitempty,min=0"`
	Notes        *string       `json:"notes" validate:"omitempty,max=1000"`
	Version      int64         `json:"version" validate:"min=0"`
}

func (r updateReservationRequest) toInput() service.UpdateReservationInput {
	return service.UpdateReservationInput{
		RoomID:          r.RoomID,
		CheckInDate:     r.CheckInDate,
		CheckOutDate:    r.CheckOutDate,
		GuestCount:      r.GuestCount,
		TotalAmount:     r.TotalAmount,
		PaidAmount:      r.PaidAmount,
		Notes:           r.Notes,
		ExpectedVersion: r.Version,
	}
}

// versionRequest is the body of transitions that carry nothing but the
// optional optimistic version.
type versionRequest struct {
	Version int64 `json:"version" validate:"min=0"`
}

type checkInRequest struct {
	At      *time.Time `json:"at"`
	Notes   string     `json:"notes" validate:"max=1000"`
	Version int64      `json:"version" validate:"min=0"`
}

type checkOutRequest struct {
	At                *time.Time   `json:"at"`
	AdditionalCharges models.Money `json:"additional_charges" validate:"min=0"`
	Notes             string       `json:"notes" validate:"max=1000"`
	Version           int64        `json:"version" validate:"min=0"`
}

type cancelRequest struct {
	Reason  string `json:"reason" validate:"max=500"`
	Version int64  `json:"version" validate:"min=0"`
}

type paymentRequest struct {
	Amount  models.Money `json:"amount" validate:"gt=0"`
	Version int64        `json:"version" validate:"min=0"`
}

type guestRequest struct {
	CustomerID int64 `json:"customer_id" validate:"required,gt=0"`
}

// decodeJSON reads a strict JSON body into dst and validates it. An empty body
// is accepted when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return domain.Validation("body", "invalid JSON body: %v", err)
		}
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Param() != "" {
			return domain.Validation(fe.Field(), "failed %s=%s check", fe.Tag(), fe.Param())
		}
		return domain.Validation(fe.Field(), "failed %s check", fe.Tag())
	}
	return domain.Validation("body", "%v", err)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (models.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, domain.Validation(name, "invalid date format; expected YYYY-MM-DD")
	}
	return d, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation(name, "must be an integer")
	}
	return n, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Validation(name, "must be an integer")
	}
	return n, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
