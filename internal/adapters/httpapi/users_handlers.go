package httpapi

import (
	"net/http"

	"github.com/sharetrip-app/sharetrip-api/internal/app/users"
)

func (s *Server) handleCreateMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := users.CreateUserInput{
		Handle: req.Handle,
		Email:  string(req.Email),
		Phone:  valueFromNullable(req.Phone),
		Bio:    valueFromNullable(req.Bio),
	}
	if d := valueFromNullable(req.DateOfBirth); d != nil {
		in.DateOfBirth = &d.Time
	}

	u, err := s.users.CreateMyProfile(r.Context(), sub, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *Server) handleGetMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}
	u, err := s.users.GetMyProfile(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleUpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := users.UpdateUserInput{
		Handle:      usersOptString(req.Handle),
		Email:       usersOptEmail(req.Email),
		Phone:       usersOptString(req.Phone),
		Bio:         usersOptString(req.Bio),
		DateOfBirth: usersOptDate(req.DateOfBirth),
	}
	u, err := s.users.UpdateMyProfile(r.Context(), sub, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleDeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := subjectFromRequest(w, r)
	if !ok {
		return
	}
	if err := s.users.DeleteMyProfile(r.Context(), sub); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
