package trips

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/clock"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

type Service struct {
	trips    triprepo.Repository
	users    userrepo.Repository
	bookings bookingrepo.Repository
	clk      clock.Clock

	newTripID func() domain.TripID
}

func NewService(tripsRepo triprepo.Repository, usersRepo userrepo.Repository, bookingsRepo bookingrepo.Repository, clk clock.Clock) *Service {
	return &Service{
		trips:    tripsRepo,
		users:    usersRepo,
		bookings: bookingsRepo,
		clk:      clk,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
	}
}

// SetNewTripIDForTest overrides trip ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewTripIDForTest(fn func() domain.TripID) {
	if fn != nil {
		s.newTripID = fn
	}
}

func (s *Service) CreateTrip(ctx context.Context, actor domain.UserID, in CreateTripInput) (domain.TripDetails, error) {
	// Validate the actor exists.
	if _, err := s.users.GetByID(ctx, actor); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid actor", Details: map[string]any{"userId": "actor does not exist"}}
		}
		return domain.TripDetails{}, err
	}

	title := domain.NormalizeText(in.Title)
	if title == "" {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
	}
	destination := domain.NormalizeText(in.Destination)
	if destination == "" {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid destination", Details: map[string]any{"destination": "must be non-empty"}}
	}
	if !in.StartDate.Before(in.EndDate) {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be after startDate"}}
	}
	if in.MaxParticipants < 1 {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid maxParticipants", Details: map[string]any{"maxParticipants": "must be >= 1"}}
	}
	if in.PricePerPerson < 0 {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid pricePerPerson", Details: map[string]any{"pricePerPerson": "must be >= 0"}}
	}

	status := triprepo.StatusDraft
	switch in.Status {
	case "", domain.TripStatusDraft:
		// default
	case domain.TripStatusPublished:
		status = triprepo.StatusPublished
	default:
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "must be DRAFT or PUBLISHED at creation"}}
	}

	now := s.clk.Now().UTC()
	t := triprepo.Trip{
		ID:              s.newTripID(),
		CreatorID:       actor,
		Status:          status,
		Title:           title,
		Description:     in.Description,
		Destination:     destination,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		MaxParticipants: in.MaxParticipants,
		PricePerPerson:  in.PricePerPerson,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.trips.Create(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			return domain.TripDetails{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return domain.TripDetails{}, err
	}
	return s.detailsForTrip(ctx, t, actor)
}

// GetTrip returns the trip detail read model. caller may be empty for
// anonymous reads; only PUBLISHED trips are visible to non-creators.
func (s *Service) GetTrip(ctx context.Context, caller domain.UserID, tripID domain.TripID) (domain.TripDetails, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.TripDetails{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.TripDetails{}, err
	}
	if !isTripVisibleToCaller(t, caller) {
		// Hide the existence of non-published trips.
		return domain.TripDetails{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	return s.detailsForTrip(ctx, t, caller)
}

func (s *Service) ListPublishedTrips(ctx context.Context, caller domain.UserID) ([]domain.TripSummary, error) {
	ts, err := s.trips.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TripSummary, 0, len(ts))
	for _, t := range ts {
		sum, err := s.summaryForTrip(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) ListMyTrips(ctx context.Context, actor domain.UserID) ([]domain.TripSummary, error) {
	ts, err := s.trips.ListByCreator(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TripSummary, 0, len(ts))
	for _, t := range ts {
		sum, err := s.summaryForTrip(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) UpdateTrip(ctx context.Context, actor domain.UserID, tripID domain.TripID, in UpdateTripInput) (domain.TripDetails, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return domain.TripDetails{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return domain.TripDetails{}, err
	}
	// Only the creator may mutate; everyone else sees a 404.
	if t.CreatorID != actor {
		return domain.TripDetails{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}

	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "cannot be null"}}
		}
		title := domain.NormalizeText(in.Title.Value())
		if title == "" {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
		}
		t.Title = title
	}
	if in.Description.IsSpecified() {
		if in.Description.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid description", Details: map[string]any{"description": "cannot be null"}}
		}
		t.Description = in.Description.Value()
	}
	if in.Destination.IsSpecified() {
		if in.Destination.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid destination", Details: map[string]any{"destination": "cannot be null"}}
		}
		destination := domain.NormalizeText(in.Destination.Value())
		if destination == "" {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid destination", Details: map[string]any{"destination": "must be non-empty"}}
		}
		t.Destination = destination
	}
	if in.StartDate.IsSpecified() {
		if in.StartDate.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid startDate", Details: map[string]any{"startDate": "cannot be null"}}
		}
		t.StartDate = in.StartDate.Value().UTC()
	}
	if in.EndDate.IsSpecified() {
		if in.EndDate.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid endDate", Details: map[string]any{"endDate": "cannot be null"}}
		}
		t.EndDate = in.EndDate.Value().UTC()
	}
	if !t.StartDate.Before(t.EndDate) {
		return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be after startDate"}}
	}

	if in.PricePerPerson.IsSpecified() {
		if in.PricePerPerson.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid pricePerPerson", Details: map[string]any{"pricePerPerson": "cannot be null"}}
		}
		v := in.PricePerPerson.Value()
		if v < 0 {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid pricePerPerson", Details: map[string]any{"pricePerPerson": "must be >= 0"}}
		}
		// Existing bookings keep their snapshotted totals.
		t.PricePerPerson = v
	}

	if in.Status.IsSpecified() {
		if in.Status.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "cannot be null"}}
		}
		next := in.Status.Value()
		if !domain.ValidTripStatus(next) {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "must be one of DRAFT, PUBLISHED, COMPLETED, CANCELLED"}}
		}
		if t.Status == triprepo.StatusPublished && next == domain.TripStatusDraft {
			confirmed, err := s.bookings.ConfirmedParticipants(ctx, t.ID)
			if err != nil {
				return domain.TripDetails{}, err
			}
			if confirmed > 0 {
				return domain.TripDetails{}, &Error{Status: 400, Code: "INVALID_TRANSITION", Message: "cannot unpublish a trip with confirmed bookings", Details: map[string]any{"confirmedParticipants": confirmed}}
			}
		}
		t.Status = triprepo.Status(next)
	}

	if in.MaxParticipants.IsSpecified() {
		if in.MaxParticipants.IsNull() {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid maxParticipants", Details: map[string]any{"maxParticipants": "cannot be null"}}
		}
		v := in.MaxParticipants.Value()
		if v < 1 {
			return domain.TripDetails{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid maxParticipants", Details: map[string]any{"maxParticipants": "must be >= 1"}}
		}
		// Published invariant: capacity cannot drop below confirmed participants.
		if t.Status == triprepo.StatusPublished {
			confirmed, err := s.bookings.ConfirmedParticipants(ctx, t.ID)
			if err != nil {
				return domain.TripDetails{}, err
			}
			if v < confirmed {
				return domain.TripDetails{}, &Error{Status: 400, Code: "CAPACITY_BELOW_CONFIRMED", Message: "capacity cannot be reduced below confirmed participants", Details: map[string]any{"confirmedParticipants": confirmed}}
			}
		}
		t.MaxParticipants = v
	}

	t.UpdatedAt = s.clk.Now().UTC()
	if err := s.trips.Save(ctx, t); err != nil {
		return domain.TripDetails{}, err
	}
	return s.detailsForTrip(ctx, t, actor)
}

// DeleteTrip removes a trip and every booking made against it.
func (s *Service) DeleteTrip(ctx context.Context, actor domain.UserID, tripID domain.TripID) error {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return err
	}
	if t.CreatorID != actor {
		return &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	if err := s.bookings.DeleteByTrip(ctx, t.ID); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, t.ID); err != nil && !errors.Is(err, triprepo.ErrNotFound) {
		return err
	}
	return nil
}

func isTripVisibleToCaller(t triprepo.Trip, caller domain.UserID) bool {
	if t.Status == triprepo.StatusPublished {
		return true
	}
	return caller != "" && t.CreatorID == caller
}

func (s *Service) summaryForTrip(ctx context.Context, t triprepo.Trip) (domain.TripSummary, error) {
	confirmed, err := s.bookings.ConfirmedParticipants(ctx, t.ID)
	if err != nil {
		return domain.TripSummary{}, err
	}
	spots := domain.AvailableSpots(t.MaxParticipants, confirmed)
	return domain.TripSummary{
		ID:              t.ID,
		CreatorID:       t.CreatorID,
		Title:           t.Title,
		Destination:     t.Destination,
		StartDate:       t.StartDate,
		EndDate:         t.EndDate,
		MaxParticipants: t.MaxParticipants,
		PricePerPerson:  t.PricePerPerson,
		Status:          domain.TripStatus(t.Status),
		AvailableSpots:  domain.ClampedSpots(spots),
		IsAvailable:     domain.IsAvailable(spots),
	}, nil
}

func (s *Service) detailsForTrip(ctx context.Context, t triprepo.Trip, caller domain.UserID) (domain.TripDetails, error) {
	sum, err := s.summaryForTrip(ctx, t)
	if err != nil {
		return domain.TripDetails{}, err
	}
	d := domain.TripDetails{
		TripSummary: sum,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if caller != "" && caller == t.CreatorID {
		rev, err := s.bookings.ConfirmedRevenue(ctx, t.ID)
		if err != nil {
			return domain.TripDetails{}, err
		}
		d.TotalRevenue = &rev
	}
	return d, nil
}
