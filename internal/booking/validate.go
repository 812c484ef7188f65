package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateBookingRequest is the input of Service.CreateBooking. UserID comes
// from the identity layer; the rest from the client payload.
type CreateBookingRequest struct {
	UserID       uint64 `validate:"required"`
	RestaurantID uint64 `validate:"required"`
	TableID      uint64 `validate:"required"`
	Time         string `validate:"required"`
}

// CancelBookingRequest is the input of Service.CancelBooking.
type CancelBookingRequest struct {
	UserID    uint64 `validate:"required"`
	BookingID uint64 `validate:"required"`
}

// requestValidator translates validator/v10 failures into ValidationError
// with one detail entry per field.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) check(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationError("invalid request", nil)
	}

	details := make(map[string]string, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			details[name] = fmt.Sprintf("%s is required", name)
		default:
			details[name] = fmt.Sprintf("%s failed %s", name, fe.Tag())
		}
		fields = append(fields, name)
	}
	return validationError("missing or invalid fields: "+strings.Join(fields, ", "), details)
}

// fieldName maps struct field names to the snake_case names clients send.
func fieldName(f string) string {
	switch f {
	case "UserID":
		return "user_id"
	case "RestaurantID":
		return "restaurant_id"
	case "TableID":
		return "table_id"
	case "BookingID":
		return "booking_id"
	case "Time":
		return "time"
	default:
		return strings.ToLower(f)
	}
}
