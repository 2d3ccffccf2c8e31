package users

import "time"

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

type CreateUserInput struct {
	Handle string
	Email  string

	Phone       *string
	Bio         *string
	DateOfBirth *time.Time
}

type UpdateUserInput struct {
	// Handle and Email are optional and cannot be null.
	Handle Optional[string]
	Email  Optional[string]

	Phone       Optional[string]
	Bio         Optional[string]
	DateOfBirth Optional[time.Time]
}
