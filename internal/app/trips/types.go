package trips

import (
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreateTripInput struct {
	Title       string
	Description string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	MaxParticipants int
	PricePerPerson  domain.Cents

	// Status is optional; empty means DRAFT. Only DRAFT and PUBLISHED are
	// accepted at creation time.
	Status domain.TripStatus
}

type UpdateTripInput struct {
	// None of the scalar trip fields are nullable; specifying null is a
	// validation error.
	Title       Optional[string]
	Description Optional[string]
	Destination Optional[string]

	StartDate Optional[time.Time]
	EndDate   Optional[time.Time]

	MaxParticipants Optional[int]
	PricePerPerson  Optional[domain.Cents]

	Status Optional[domain.TripStatus]
}
