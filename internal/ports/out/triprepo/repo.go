package triprepo

import (
	"context"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID        domain.TripID
	CreatorID domain.UserID

	Status Status

	Title       string
	Description string
	Destination string

	// Dates carry date-only semantics at the edges.
	StartDate time.Time
	EndDate   time.Time

	MaxParticipants int
	PricePerPerson  domain.Cents

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trips.
//
// List methods return results ordered by start date ascending, then ID, to
// keep behavior deterministic across backends.
type Repository interface {
	Create(ctx context.Context, t Trip) error
	Save(ctx context.Context, t Trip) error

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)

	ListPublished(ctx context.Context) ([]Trip, error)
	ListByCreator(ctx context.Context, creator domain.UserID) ([]Trip, error)

	Delete(ctx context.Context, id domain.TripID) error
}
