package errors

import "errors"

var (
	ErrNotFound = errors.New("slot not found")

	ErrInvalidID = errors.New("invalid slot ID format")

	// ErrUnavailable means the slot exists but is already claimed by a
	// confirmed booking.
	ErrUnavailable = errors.New("slot is not available")
)
