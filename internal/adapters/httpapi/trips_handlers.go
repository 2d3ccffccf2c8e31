package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	var req CreateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	price, err := domain.ParseCents(req.PricePerPerson)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid pricePerPerson", map[string]any{"pricePerPerson": "must be a decimal amount with at most two decimal places"})
		return
	}
	in := trips.CreateTripInput{
		Title:           req.Title,
		Description:     req.Description,
		Destination:     req.Destination,
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		MaxParticipants: req.MaxParticipants,
		PricePerPerson:  price,
	}
	if req.Status != nil {
		in.Status = domain.TripStatus(*req.Status)
	}

	t, err := s.trips.CreateTrip(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTripResponse(t))
}

func (s *Server) handleListPublishedTrips(w http.ResponseWriter, r *http.Request) {
	caller := s.optionalActorFromRequest(r)
	ts, err := s.trips.ListPublishedTrips(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]TripSummaryResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTripSummaryResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	caller := s.optionalActorFromRequest(r)
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	t, err := s.trips.GetTrip(r.Context(), caller, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(t))
}

func (s *Server) handleListMyTrips(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	ts, err := s.trips.ListMyTrips(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]TripSummaryResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTripSummaryResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	var req UpdateTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := trips.UpdateTripInput{
		Title:           tripsOptString(req.Title),
		Description:     tripsOptString(req.Description),
		Destination:     tripsOptString(req.Destination),
		StartDate:       tripsOptDate(req.StartDate),
		EndDate:         tripsOptDate(req.EndDate),
		MaxParticipants: tripsOptInt(req.MaxParticipants),
	}
	if req.PricePerPerson.IsSpecified() {
		if req.PricePerPerson.IsNull() {
			in.PricePerPerson = trips.Null[domain.Cents]()
		} else {
			price, err := domain.ParseCents(req.PricePerPerson.MustGet())
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid pricePerPerson", map[string]any{"pricePerPerson": "must be a decimal amount with at most two decimal places"})
				return
			}
			in.PricePerPerson = trips.Some(price)
		}
	}
	if req.Status.IsSpecified() {
		if req.Status.IsNull() {
			in.Status = trips.Null[domain.TripStatus]()
		} else {
			in.Status = trips.Some(domain.TripStatus(req.Status.MustGet()))
		}
	}

	t, err := s.trips.UpdateTrip(r.Context(), actor, tripID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTripResponse(t))
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))
	if err := s.trips.DeleteTrip(r.Context(), actor, tripID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTripRevenue(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))
	rev, err := s.bookings.TripRevenue(r.Context(), actor, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TripRevenueResponse{
		TripID:       string(tripID),
		TotalRevenue: domain.FormatCents(rev),
	})
}
