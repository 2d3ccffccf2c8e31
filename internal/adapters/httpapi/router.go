package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// RouterOptions carries the cross-cutting pieces the router composes around
// the handlers. AuthMiddleware gates the authenticated routes;
// OptionalAuthMiddleware runs on public routes so a logged-in caller still
// gets owner-aware responses.
type RouterOptions struct {
	AuthMiddleware         func(http.Handler) http.Handler
	OptionalAuthMiddleware func(http.Handler) http.Handler
	CORS                   *cors.Cors
}

// NewRouter constructs the API HTTP router.
//
// The handlers stay thin: decode, call a service, translate the result.
// Everything policy-shaped (auth, request IDs, panic recovery, CORS) is
// middleware wired here.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint sits outside the auth groups (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public browse surface. Auth is optional here: anonymous callers see
	// published trips only, authenticated creators also see revenue on their
	// own trips.
	r.Group(func(r chi.Router) {
		if opts.OptionalAuthMiddleware != nil {
			r.Use(opts.OptionalAuthMiddleware)
		}
		r.Get("/trips", s.handleListPublishedTrips)
		r.Get("/trips/{tripID}", s.handleGetTrip)
	})

	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}

		r.Post("/users", s.handleCreateMyProfile)
		r.Get("/users/me", s.handleGetMyProfile)
		r.Patch("/users/me", s.handleUpdateMyProfile)
		r.Delete("/users/me", s.handleDeleteMyProfile)

		r.Post("/trips", s.handleCreateTrip)
		r.Get("/trips/mine", s.handleListMyTrips)
		r.Patch("/trips/{tripID}", s.handleUpdateTrip)
		r.Delete("/trips/{tripID}", s.handleDeleteTrip)
		r.Get("/trips/{tripID}/revenue", s.handleTripRevenue)
		r.Get("/trips/{tripID}/bookings", s.handleListTripBookings)
		r.Post("/trips/{tripID}/bookings/{bookingID}/confirm", s.handleConfirmBooking)

		r.Post("/bookings", s.handleCreateBooking)
		r.Get("/bookings", s.handleListMyBookings)
		r.Get("/bookings/{bookingID}", s.handleGetBooking)
		r.Post("/bookings/{bookingID}/cancel", s.handleCancelBooking)
	})

	if opts.CORS != nil {
		return opts.CORS.Handler(r)
	}
	return r
}
