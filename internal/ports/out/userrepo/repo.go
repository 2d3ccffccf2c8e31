package userrepo

import (
	"context"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

// User is the persistence shape used by the user repository. It carries the
// auth subject binding; it is not an HTTP DTO.
type User struct {
	ID      domain.UserID
	Subject domain.SubjectID

	// Handle and Email are stored normalized (lowercase, trimmed) and are
	// unique across users.
	Handle string
	Email  string

	Phone       *string
	Bio         *string
	DateOfBirth *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted users.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error

	GetByID(ctx context.Context, id domain.UserID) (User, error)
	GetBySubject(ctx context.Context, subject domain.SubjectID) (User, error)

	Delete(ctx context.Context, id domain.UserID) error
}
