package bookingrepo

import (
	"context"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Booking is the persistence shape used by the booking repository.
// It is not an HTTP DTO.
type Booking struct {
	ID     domain.BookingID
	TripID domain.TripID
	UserID domain.UserID

	Status       Status
	Participants int
	// TotalPrice is the immutable creation-time snapshot.
	TotalPrice domain.Cents

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted bookings.
//
// The capacity-guarded methods bundle the availability check and the write
// into one operation, which every implementation must make atomic per trip:
// the in-memory adapter serializes under its lock, the Postgres adapter locks
// the trip row for the duration of the transaction. Capacity is measured in
// confirmed participants.
//
// List methods return results ordered by creation time ascending, then ID.
type Repository interface {
	// CreateIfAvailable inserts b only when b.Participants still fits within
	// capacity minus the trip's confirmed participant head-count.
	CreateIfAvailable(ctx context.Context, b Booking, capacity int) error

	// ConfirmIfAvailable moves a PENDING booking to CONFIRMED when its
	// participants still fit within capacity at confirmation time.
	ConfirmIfAvailable(ctx context.Context, id domain.BookingID, capacity int, now time.Time) (Booking, error)

	// Cancel moves a PENDING or CONFIRMED booking to CANCELLED.
	// CANCELLED is terminal.
	Cancel(ctx context.Context, id domain.BookingID, now time.Time) (Booking, error)

	GetByID(ctx context.Context, id domain.BookingID) (Booking, error)
	GetByUserAndTrip(ctx context.Context, user domain.UserID, trip domain.TripID) (Booking, error)

	ListByUser(ctx context.Context, user domain.UserID) ([]Booking, error)
	ListByTrip(ctx context.Context, trip domain.TripID) ([]Booking, error)

	// ConfirmedParticipants sums participants over CONFIRMED bookings of a trip.
	ConfirmedParticipants(ctx context.Context, trip domain.TripID) (int, error)
	// ConfirmedRevenue sums the TotalPrice snapshots over CONFIRMED bookings.
	ConfirmedRevenue(ctx context.Context, trip domain.TripID) (domain.Cents, error)

	DeleteByTrip(ctx context.Context, trip domain.TripID) error
	DeleteByUser(ctx context.Context, user domain.UserID) error
}
