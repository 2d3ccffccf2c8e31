package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/clock"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
)

// Service is the booking ledger: availability, price snapshotting and status
// transitions. Capacity-guarded writes are delegated to the repository so the
// check and the write cannot interleave with a concurrent booking.
type Service struct {
	bookings bookingrepo.Repository
	trips    triprepo.Repository
	clk      clock.Clock

	newBookingID func() domain.BookingID
}

func NewService(bookingsRepo bookingrepo.Repository, tripsRepo triprepo.Repository, clk clock.Clock) *Service {
	return &Service{
		bookings: bookingsRepo,
		trips:    tripsRepo,
		clk:      clk,
		newBookingID: func() domain.BookingID {
			return domain.BookingID(uuid.NewString())
		},
	}
}

// SetNewBookingIDForTest overrides booking ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewBookingIDForTest(fn func() domain.BookingID) {
	if fn != nil {
		s.newBookingID = fn
	}
}

// CreateBooking books spots on a published trip for the actor. The total
// price is snapshotted here from the trip's current price per person and
// never changes afterwards, even if the trip is repriced.
func (s *Service) CreateBooking(ctx context.Context, actor domain.UserID, in CreateBookingInput) (domain.Booking, error) {
	t, err := s.trips.GetByID(ctx, in.TripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Booking{}, &Error{Status: 400, Code: "TRIP_UNAVAILABLE", Message: "trip does not exist or is not open for booking"}
		}
		return domain.Booking{}, err
	}
	if t.Status != triprepo.StatusPublished {
		return domain.Booking{}, &Error{Status: 400, Code: "TRIP_UNAVAILABLE", Message: "trip does not exist or is not open for booking"}
	}
	if t.CreatorID == actor {
		return domain.Booking{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid booking", Details: map[string]any{"tripId": "creators cannot book their own trip"}}
	}
	if in.Participants < 1 {
		return domain.Booking{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid participants", Details: map[string]any{"participants": "must be >= 1"}}
	}

	now := s.clk.Now().UTC()
	b := bookingrepo.Booking{
		ID:           s.newBookingID(),
		TripID:       t.ID,
		UserID:       actor,
		Status:       bookingrepo.StatusPending,
		Participants: in.Participants,
		TotalPrice:   t.PricePerPerson.Mul(in.Participants),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.bookings.CreateIfAvailable(ctx, b, t.MaxParticipants); err != nil {
		switch {
		case errors.Is(err, bookingrepo.ErrAlreadyBooked):
			return domain.Booking{}, &Error{Status: 400, Code: "DUPLICATE_BOOKING", Message: "a booking for this trip already exists"}
		case errors.Is(err, bookingrepo.ErrInsufficientCapacity):
			return domain.Booking{}, s.insufficientCapacityError(ctx, t)
		case errors.Is(err, bookingrepo.ErrTripNotFound):
			return domain.Booking{}, &Error{Status: 400, Code: "TRIP_UNAVAILABLE", Message: "trip does not exist or is not open for booking"}
		case errors.Is(err, bookingrepo.ErrAlreadyExists):
			return domain.Booking{}, &Error{Status: 409, Code: "BOOKING_ID_CONFLICT", Message: "booking id conflict"}
		}
		return domain.Booking{}, err
	}
	return toDomainBooking(b), nil
}

// ConfirmBooking moves a pending booking to CONFIRMED. Only the trip creator
// may confirm, and capacity is re-checked atomically at confirmation time so
// overlapping pending bookings cannot push confirmations past capacity.
func (s *Service) ConfirmBooking(ctx context.Context, actor domain.UserID, tripID domain.TripID, bookingID domain.BookingID) (domain.Booking, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.Booking{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.Booking{}, err
	}
	// Hide the trip's booking list from everyone but the creator.
	if t.CreatorID != actor {
		return domain.Booking{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		return domain.Booking{}, err
	}
	if b.TripID != t.ID {
		return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
	}

	confirmed, err := s.bookings.ConfirmIfAvailable(ctx, bookingID, t.MaxParticipants, s.clk.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, bookingrepo.ErrNotPending):
			return domain.Booking{}, &Error{Status: 400, Code: "INVALID_TRANSITION", Message: "only pending bookings can be confirmed", Details: map[string]any{"status": string(b.Status)}}
		case errors.Is(err, bookingrepo.ErrInsufficientCapacity):
			return domain.Booking{}, s.insufficientCapacityError(ctx, t)
		case errors.Is(err, bookingrepo.ErrNotFound):
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		return domain.Booking{}, err
	}
	return toDomainBooking(confirmed), nil
}

// CancelBooking moves a booking to CANCELLED. The booker and the trip creator
// may cancel; anyone else gets a 403 since the booking's existence is not a
// secret to its own booker. Cancelled capacity is immediately bookable again.
func (s *Service) CancelBooking(ctx context.Context, actor domain.UserID, bookingID domain.BookingID) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		return domain.Booking{}, err
	}
	if b.UserID != actor {
		t, err := s.trips.GetByID(ctx, b.TripID)
		if err != nil && !errors.Is(err, triprepo.ErrNotFound) {
			return domain.Booking{}, err
		}
		if err != nil || t.CreatorID != actor {
			return domain.Booking{}, &Error{Status: 403, Code: "FORBIDDEN", Message: "not allowed to cancel this booking"}
		}
	}

	cancelled, err := s.bookings.Cancel(ctx, bookingID, s.clk.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, bookingrepo.ErrAlreadyCancelled):
			return domain.Booking{}, &Error{Status: 400, Code: "INVALID_TRANSITION", Message: "booking is already cancelled"}
		case errors.Is(err, bookingrepo.ErrNotFound):
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		return domain.Booking{}, err
	}
	return toDomainBooking(cancelled), nil
}

// GetBooking returns a booking to its booker or the trip creator; anyone else
// sees a 404.
func (s *Service) GetBooking(ctx context.Context, actor domain.UserID, bookingID domain.BookingID) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
		return domain.Booking{}, err
	}
	if b.UserID != actor {
		t, err := s.trips.GetByID(ctx, b.TripID)
		if err != nil && !errors.Is(err, triprepo.ErrNotFound) {
			return domain.Booking{}, err
		}
		if err != nil || t.CreatorID != actor {
			return domain.Booking{}, &Error{Status: 404, Code: "BOOKING_NOT_FOUND", Message: "booking not found"}
		}
	}
	return toDomainBooking(b), nil
}

func (s *Service) ListMyBookings(ctx context.Context, actor domain.UserID) ([]domain.Booking, error) {
	bs, err := s.bookings.ListByUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(bs))
	for _, b := range bs {
		out = append(out, toDomainBooking(b))
	}
	return out, nil
}

// ListTripBookings returns every booking on a trip to its creator.
func (s *Service) ListTripBookings(ctx context.Context, actor domain.UserID, tripID domain.TripID) ([]domain.Booking, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return nil, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return nil, err
	}
	if t.CreatorID != actor {
		return nil, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	bs, err := s.bookings.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(bs))
	for _, b := range bs {
		out = append(out, toDomainBooking(b))
	}
	return out, nil
}

// TripRevenue sums the snapshotted totals of confirmed bookings. A confirmed
// booking keeps contributing its own snapshot even after the trip is repriced.
func (s *Service) TripRevenue(ctx context.Context, actor domain.UserID, tripID domain.TripID) (domain.Cents, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return 0, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return 0, err
	}
	if t.CreatorID != actor {
		return 0, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	return s.bookings.ConfirmedRevenue(ctx, tripID)
}

func (s *Service) insufficientCapacityError(ctx context.Context, t triprepo.Trip) error {
	details := map[string]any{}
	if confirmed, err := s.bookings.ConfirmedParticipants(ctx, t.ID); err == nil {
		details["availableSpots"] = domain.ClampedSpots(domain.AvailableSpots(t.MaxParticipants, confirmed))
	}
	return &Error{Status: 400, Code: "INSUFFICIENT_CAPACITY", Message: "not enough available spots", Details: details}
}

func toDomainBooking(b bookingrepo.Booking) domain.Booking {
	return domain.Booking{
		ID:           b.ID,
		TripID:       b.TripID,
		UserID:       b.UserID,
		Participants: b.Participants,
		TotalPrice:   b.TotalPrice,
		Status:       domain.BookingStatus(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
