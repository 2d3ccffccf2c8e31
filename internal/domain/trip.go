package domain

import "time"

type TripStatus string

const (
	TripStatusDraft     TripStatus = "DRAFT"
	TripStatusPublished TripStatus = "PUBLISHED"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// ValidTripStatus reports whether s is one of the known trip statuses.
func ValidTripStatus(s TripStatus) bool {
	switch s {
	case TripStatusDraft, TripStatusPublished, TripStatusCompleted, TripStatusCancelled:
		return true
	default:
		return false
	}
}

type TripSummary struct {
	ID        TripID
	CreatorID UserID

	Title       string
	Destination string

	StartDate time.Time // date-only semantics at the edges
	EndDate   time.Time // date-only semantics at the edges

	MaxParticipants int
	PricePerPerson  Cents
	Status          TripStatus

	// AvailableSpots is clamped at zero for display; the raw signed value
	// only matters to capacity-guarded writes.
	AvailableSpots int
	IsAvailable    bool
}

// TripDetails is the full trip read model.
type TripDetails struct {
	TripSummary

	Description string

	// TotalRevenue is populated only for the trip creator; nil means "omitted".
	TotalRevenue *Cents

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailableSpots returns maxParticipants minus the confirmed participant
// head-count. The result can go negative when capacity was lowered after
// confirmations; clamp with ClampedSpots before showing it to anyone.
func AvailableSpots(maxParticipants, confirmedParticipants int) int {
	return maxParticipants - confirmedParticipants
}

func ClampedSpots(spots int) int {
	if spots < 0 {
		return 0
	}
	return spots
}

func IsAvailable(spots int) bool {
	return spots > 0
}
