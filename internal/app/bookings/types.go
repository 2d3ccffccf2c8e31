package bookings

import "github.com/sharetrip-app/sharetrip-api/internal/domain"

type CreateBookingInput struct {
	TripID       domain.TripID
	Participants int
}
