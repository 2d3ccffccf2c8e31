package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID     BookingID
	TripID TripID
	UserID UserID

	Participants int
	// TotalPrice is snapshotted at creation (participants x the trip's price
	// per person at that moment) and never recomputed afterwards.
	TotalPrice Cents
	Status     BookingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransition reports whether a booking may move from one status to another.
// PENDING may be confirmed or cancelled; CONFIRMED may only be cancelled;
// CANCELLED is terminal.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusPending:
		return to == BookingStatusConfirmed || to == BookingStatusCancelled
	case BookingStatusConfirmed:
		return to == BookingStatusCancelled
	default:
		return false
	}
}
