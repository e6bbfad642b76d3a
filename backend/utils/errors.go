package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrValidation = errors.New("invalid or missing input")
var ErrUnauthenticated = errors.New("authentication required")
var ErrForbidden = errors.New("forbidden")
var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("already exists")
var ErrStorage = errors.New("media storage failure")
var ErrProcessing = errors.New("processing failure")

// StatusError carries a caller-facing message and unwraps to one of the
// sentinels above so ErrorStatus can map it.
type StatusError struct {
	Kind    error
	Message string
}

func (e *StatusError) Error() string { return e.Message }
func (e *StatusError) Unwrap() error { return e.Kind }

// Wrap ties a message to a sentinel for status mapping.
func Wrap(kind error, message string) error {
	return &StatusError{Kind: kind, Message: message}
}

// ErrorStatus maps a sentinel error to the HTTP status code it surfaces as.
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
