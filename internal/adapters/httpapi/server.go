package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sharetrip-app/sharetrip-api/internal/app/bookings"
	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/app/users"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

// Server holds the application services behind the HTTP handlers.
type Server struct {
	users    *users.Service
	trips    *trips.Service
	bookings *bookings.Service
}

func NewServer(usersSvc *users.Service, tripsSvc *trips.Service, bookingsSvc *bookings.Service) *Server {
	return &Server{
		users:    usersSvc,
		trips:    tripsSvc,
		bookings: bookingsSvc,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", nil)
		return false
	}
	return true
}

// subjectFromRequest reads the authenticated subject; 401 when missing.
func subjectFromRequest(w http.ResponseWriter, r *http.Request) (domain.SubjectID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing authenticated subject", nil)
		return "", false
	}
	return domain.SubjectID(sub), true
}

// actorFromRequest resolves the subject to its user ID; requests without a
// provisioned profile are rejected by the users service.
func (s *Server) actorFromRequest(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	sub, ok := subjectFromRequest(w, r)
	if !ok {
		return "", false
	}
	actor, err := s.users.ResolveActor(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return "", false
	}
	return actor, true
}

// optionalActorFromRequest resolves the caller on public routes. Anonymous
// requests and authenticated subjects without a profile read as "".
func (s *Server) optionalActorFromRequest(r *http.Request) domain.UserID {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		return ""
	}
	actor, err := s.users.ResolveActor(r.Context(), domain.SubjectID(sub))
	if err != nil {
		return ""
	}
	return actor
}
