package services

import "errors"

// Every engine failure is recoverable and reported to the caller; none is
// fatal to the process. Handlers branch with errors.Is and map each sentinel
// to an HTTP status. Only storage unavailability maps to ErrUnavailable.
var (
	// Conflict
	ErrRoomNotAvailable     = errors.New("room is not available")
	ErrAlreadyTerminal      = errors.New("booking is already cancelled or expired")
	ErrProofAlreadyReviewed = errors.New("payment proof has already been reviewed")
	ErrInvalidTransition    = errors.New("invalid room state transition")
	ErrActiveBookings       = errors.New("house has active bookings")
	ErrBookingLimitReached  = errors.New("consecutive booking limit reached")

	// Expired
	ErrReservationExpired = errors.New("reservation has expired")

	// Unauthorized
	ErrNotAuthorized = errors.New("not authorized for this operation")

	// NotFound
	ErrNotFound = errors.New("record not found")

	// Storage layer unreachable; caller decides retry/backoff.
	ErrUnavailable = errors.New("storage unavailable")
)
