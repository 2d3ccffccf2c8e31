package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharetrip-app/sharetrip-api/internal/app/bookings"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.bookings.CreateBooking(r.Context(), actor, bookings.CreateBookingInput{
		TripID:       domain.TripID(req.TripID),
		Participants: req.Participants,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (s *Server) handleListMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	bs, err := s.bookings.ListMyBookings(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	bookingID := domain.BookingID(chi.URLParam(r, "bookingID"))
	b, err := s.bookings.GetBooking(r.Context(), actor, bookingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	bookingID := domain.BookingID(chi.URLParam(r, "bookingID"))
	b, err := s.bookings.CancelBooking(r.Context(), actor, bookingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (s *Server) handleListTripBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))
	bs, err := s.bookings.ListTripBookings(r.Context(), actor, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actorFromRequest(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))
	bookingID := domain.BookingID(chi.URLParam(r, "bookingID"))
	b, err := s.bookings.ConfirmBooking(r.Context(), actor, tripID, bookingID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(b))
}
