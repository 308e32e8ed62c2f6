package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrSlotUnavailable means the requested slot was already claimed when
	// the reservation transaction ran.
	ErrSlotUnavailable = errors.New("slot is no longer available")

	// ErrAlreadyCancelled rejects a repeated cancellation so the caller
	// learns the first one already went through.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrNotCancellable means the booking is in a terminal state other
	// than confirmed.
	ErrNotCancellable = errors.New("booking cannot be cancelled")
)
