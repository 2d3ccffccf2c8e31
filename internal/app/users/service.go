package users

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/clock"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

type Service struct {
	users    userrepo.Repository
	trips    triprepo.Repository
	bookings bookingrepo.Repository
	clk      clock.Clock

	newUserID func() domain.UserID
}

func NewService(usersRepo userrepo.Repository, tripsRepo triprepo.Repository, bookingsRepo bookingrepo.Repository, clk clock.Clock) *Service {
	return &Service{
		users:    usersRepo,
		trips:    tripsRepo,
		bookings: bookingsRepo,
		clk:      clk,
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
	}
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

// ResolveActor maps an authenticated subject to its user ID. Endpoints other
// than profile creation require a provisioned profile.
func (s *Service) ResolveActor(ctx context.Context, subject domain.SubjectID) (domain.UserID, error) {
	u, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return "", &Error{Status: 403, Code: "PROFILE_REQUIRED", Message: "no profile for authenticated subject"}
		}
		return "", err
	}
	return u.ID, nil
}

func (s *Service) CreateMyProfile(ctx context.Context, subject domain.SubjectID, in CreateUserInput) (domain.User, error) {
	if subject == "" {
		return domain.User{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "missing subject"}
	}

	handle := domain.NormalizeHandle(in.Handle)
	if err := validateHandle(handle); err != nil {
		return domain.User{}, err
	}
	email := domain.NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}

	now := s.clk.Now().UTC()
	if in.DateOfBirth != nil && !in.DateOfBirth.Before(now) {
		return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid dateOfBirth", Details: map[string]any{"dateOfBirth": "must be in the past"}}
	}

	u := userrepo.User{
		ID:          s.newUserID(),
		Subject:     subject,
		Handle:      handle,
		Email:       email,
		Phone:       cloneStringPtr(in.Phone),
		Bio:         cloneStringPtr(in.Bio),
		DateOfBirth: cloneTimePtr(in.DateOfBirth),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrSubjectAlreadyBound):
			return domain.User{}, &Error{Status: 409, Code: "PROFILE_EXISTS", Message: "a profile already exists for this subject"}
		case errors.Is(err, userrepo.ErrHandleTaken):
			return domain.User{}, &Error{Status: 409, Code: "HANDLE_TAKEN", Message: "handle already taken", Details: map[string]any{"handle": handle}}
		case errors.Is(err, userrepo.ErrEmailTaken):
			return domain.User{}, &Error{Status: 409, Code: "EMAIL_TAKEN", Message: "email already taken"}
		case errors.Is(err, userrepo.ErrAlreadyExists):
			return domain.User{}, &Error{Status: 409, Code: "USER_ID_CONFLICT", Message: "user id conflict"}
		}
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

func (s *Service) GetMyProfile(ctx context.Context, subject domain.SubjectID) (domain.User, error) {
	u, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 404, Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
		}
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

func (s *Service) UpdateMyProfile(ctx context.Context, subject domain.SubjectID, in UpdateUserInput) (domain.User, error) {
	u, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return domain.User{}, &Error{Status: 404, Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
		}
		return domain.User{}, err
	}

	if in.Handle.IsSpecified() {
		if in.Handle.IsNull() {
			return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid handle", Details: map[string]any{"handle": "cannot be null"}}
		}
		handle := domain.NormalizeHandle(in.Handle.Value())
		if err := validateHandle(handle); err != nil {
			return domain.User{}, err
		}
		u.Handle = handle
	}
	if in.Email.IsSpecified() {
		if in.Email.IsNull() {
			return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid email", Details: map[string]any{"email": "cannot be null"}}
		}
		email := domain.NormalizeEmail(in.Email.Value())
		if err := validateEmail(email); err != nil {
			return domain.User{}, err
		}
		u.Email = email
	}

	applyNullableString(&u.Phone, in.Phone)
	applyNullableString(&u.Bio, in.Bio)

	now := s.clk.Now().UTC()
	if in.DateOfBirth.IsSpecified() {
		if in.DateOfBirth.IsNull() {
			u.DateOfBirth = nil
		} else {
			v := in.DateOfBirth.Value().UTC()
			if !v.Before(now) {
				return domain.User{}, &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid dateOfBirth", Details: map[string]any{"dateOfBirth": "must be in the past"}}
			}
			u.DateOfBirth = &v
		}
	}

	u.UpdatedAt = now
	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, userrepo.ErrHandleTaken):
			return domain.User{}, &Error{Status: 409, Code: "HANDLE_TAKEN", Message: "handle already taken", Details: map[string]any{"handle": u.Handle}}
		case errors.Is(err, userrepo.ErrEmailTaken):
			return domain.User{}, &Error{Status: 409, Code: "EMAIL_TAKEN", Message: "email already taken"}
		case errors.Is(err, userrepo.ErrNotFound):
			return domain.User{}, &Error{Status: 404, Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
		}
		return domain.User{}, err
	}
	return toDomainUser(u), nil
}

// DeleteMyProfile removes the profile together with everything hanging off it:
// trips the user created (and their bookings), then bookings the user holds on
// other trips. Orchestrated through the ports so every backend behaves the
// same; the Postgres schema additionally enforces it with ON DELETE CASCADE.
func (s *Service) DeleteMyProfile(ctx context.Context, subject domain.SubjectID) error {
	u, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return &Error{Status: 404, Code: "PROFILE_NOT_FOUND", Message: "profile not found"}
		}
		return err
	}

	owned, err := s.trips.ListByCreator(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, t := range owned {
		if err := s.bookings.DeleteByTrip(ctx, t.ID); err != nil {
			return err
		}
		if err := s.trips.Delete(ctx, t.ID); err != nil && !errors.Is(err, triprepo.ErrNotFound) {
			return err
		}
	}
	if err := s.bookings.DeleteByUser(ctx, u.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, u.ID); err != nil && !errors.Is(err, userrepo.ErrNotFound) {
		return err
	}
	return nil
}

func validateHandle(handle string) error {
	if handle == "" {
		return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid handle", Details: map[string]any{"handle": "must be non-empty"}}
	}
	if len(handle) > 50 {
		return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid handle", Details: map[string]any{"handle": "must be at most 50 characters"}}
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &Error{Status: 400, Code: "VALIDATION_ERROR", Message: "invalid email", Details: map[string]any{"email": "must be a valid email address"}}
	}
	return nil
}

func applyNullableString(dst **string, o Optional[string]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = &v
}

func toDomainUser(u userrepo.User) domain.User {
	return domain.User{
		ID:          u.ID,
		Handle:      u.Handle,
		Email:       u.Email,
		Phone:       cloneStringPtr(u.Phone),
		Bio:         cloneStringPtr(u.Bio),
		DateOfBirth: cloneTimePtr(u.DateOfBirth),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
