package bookingrepo

import "errors"

var (
	ErrNotFound      = errors.New("booking not found")
	ErrAlreadyExists = errors.New("booking already exists")

	// ErrAlreadyBooked signals the (user, trip) uniqueness constraint.
	ErrAlreadyBooked = errors.New("user already has a booking for this trip")

	ErrInsufficientCapacity = errors.New("not enough available spots")

	// ErrNotPending is returned when confirming a booking that is not PENDING.
	ErrNotPending = errors.New("booking is not pending")
	// ErrAlreadyCancelled is returned when cancelling a CANCELLED booking.
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrTripNotFound is returned by capacity-guarded writes when the trip row
	// backing the booking no longer exists.
	ErrTripNotFound = errors.New("trip not found")
)
