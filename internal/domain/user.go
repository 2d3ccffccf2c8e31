package domain

import "time"

// User is the domain read model for a profile. The auth subject binding is a
// persistence concern and stays out of this shape.
type User struct {
	ID     UserID
	Handle string
	Email  string

	Phone       *string
	Bio         *string
	DateOfBirth *time.Time // date-only semantics at the edges

	CreatedAt time.Time
	UpdatedAt time.Time
}
