package booking

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by Service wraps exactly one of them,
// so callers classify with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrSlotTaken  = errors.New("slot already booked")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrStorage    = errors.New("storage failure")
)

// Stable codes shown to API clients, one per kind.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeSlotTaken  = "SLOT_TAKEN"
	CodeNotFound   = "NOT_FOUND"
	CodeForbidden  = "FORBIDDEN"
	CodeStorage    = "STORAGE_ERROR"
)

// Error is the classified error returned by the engine. Message is safe to
// show to end users; Err holds the internal cause and is only logged.
type Error struct {
	Kind    error
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code(), e.Message)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Code maps the kind to its stable client-facing code.
func (e *Error) Code() string {
	switch e.Kind {
	case ErrValidation:
		return CodeValidation
	case ErrSlotTaken:
		return CodeSlotTaken
	case ErrNotFound:
		return CodeNotFound
	case ErrForbidden:
		return CodeForbidden
	default:
		return CodeStorage
	}
}

func validationError(msg string, details map[string]string) *Error {
	return &Error{Kind: ErrValidation, Message: msg, Details: details}
}

func slotTakenError() *Error {
	return &Error{Kind: ErrSlotTaken, Message: "this table is already booked for the requested time"}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func forbiddenError(msg string) *Error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func storageError(op string, err error) *Error {
	return &Error{Kind: ErrStorage, Message: "internal storage error", Err: fmt.Errorf("%s: %w", op, err)}
}

// msgNoAccess is shared by not-found and not-owner cancellations so the
// response does not reveal whether a booking id exists.
const msgNoAccess = "no access or booking not found"

// msgNoRestaurantAccess does the same for the owner bookings view.
const msgNoRestaurantAccess = "no access or restaurant not found"

// AsError returns the classified error inside err. Unclassified errors are
// reported as storage failures.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return storageError("unclassified", err)
}
