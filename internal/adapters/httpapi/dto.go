package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/oapi-codegen/runtime/types"

	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/app/users"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
)

// Wire DTOs. Dates cross the wire as YYYY-MM-DD, money as two-decimal
// strings, and PATCH bodies use tri-state nullable fields so "omitted" and
// "null" stay distinguishable.

type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestID nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}

// --- users ---

type UserResponse struct {
	ID          string      `json:"id"`
	Handle      string      `json:"handle"`
	Email       types.Email `json:"email"`
	Phone       *string     `json:"phone"`
	Bio         *string     `json:"bio"`
	DateOfBirth *types.Date `json:"dateOfBirth"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type CreateUserRequest struct {
	Handle      string                        `json:"handle"`
	Email       types.Email                   `json:"email"`
	Phone       nullable.Nullable[string]     `json:"phone,omitempty"`
	Bio         nullable.Nullable[string]     `json:"bio,omitempty"`
	DateOfBirth nullable.Nullable[types.Date] `json:"dateOfBirth,omitempty"`
}

type UpdateUserRequest struct {
	Handle      nullable.Nullable[string]      `json:"handle,omitempty"`
	Email       nullable.Nullable[types.Email] `json:"email,omitempty"`
	Phone       nullable.Nullable[string]      `json:"phone,omitempty"`
	Bio         nullable.Nullable[string]      `json:"bio,omitempty"`
	DateOfBirth nullable.Nullable[types.Date]  `json:"dateOfBirth,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	out := UserResponse{
		ID:        string(u.ID),
		Handle:    u.Handle,
		Email:     types.Email(u.Email),
		Phone:     u.Phone,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.DateOfBirth != nil {
		d := types.Date{Time: *u.DateOfBirth}
		out.DateOfBirth = &d
	}
	return out
}

// --- trips ---

type TripSummaryResponse struct {
	ID              string     `json:"id"`
	CreatorID       string     `json:"creatorId"`
	Title           string     `json:"title"`
	Destination     string     `json:"destination"`
	StartDate       types.Date `json:"startDate"`
	EndDate         types.Date `json:"endDate"`
	MaxParticipants int        `json:"maxParticipants"`
	PricePerPerson  string     `json:"pricePerPerson"`
	Status          string     `json:"status"`
	AvailableSpots  int        `json:"availableSpots"`
	IsAvailable     bool       `json:"isAvailable"`
}

type TripResponse struct {
	TripSummaryResponse

	Description  string    `json:"description"`
	TotalRevenue *string   `json:"totalRevenue,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateTripRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Destination     string     `json:"destination"`
	StartDate       types.Date `json:"startDate"`
	EndDate         types.Date `json:"endDate"`
	MaxParticipants int        `json:"maxParticipants"`
	PricePerPerson  string     `json:"pricePerPerson"`
	Status          *string    `json:"status,omitempty"`
}

type UpdateTripRequest struct {
	Title           nullable.Nullable[string]     `json:"title,omitempty"`
	Description     nullable.Nullable[string]     `json:"description,omitempty"`
	Destination     nullable.Nullable[string]     `json:"destination,omitempty"`
	StartDate       nullable.Nullable[types.Date] `json:"startDate,omitempty"`
	EndDate         nullable.Nullable[types.Date] `json:"endDate,omitempty"`
	MaxParticipants nullable.Nullable[int]        `json:"maxParticipants,omitempty"`
	PricePerPerson  nullable.Nullable[string]     `json:"pricePerPerson,omitempty"`
	Status          nullable.Nullable[string]     `json:"status,omitempty"`
}

type TripRevenueResponse struct {
	TripID       string `json:"tripId"`
	TotalRevenue string `json:"totalRevenue"`
}

func toTripSummaryResponse(t domain.TripSummary) TripSummaryResponse {
	return TripSummaryResponse{
		ID:              string(t.ID),
		CreatorID:       string(t.CreatorID),
		Title:           t.Title,
		Destination:     t.Destination,
		StartDate:       types.Date{Time: t.StartDate},
		EndDate:         types.Date{Time: t.EndDate},
		MaxParticipants: t.MaxParticipants,
		PricePerPerson:  domain.FormatCents(t.PricePerPerson),
		Status:          string(t.Status),
		AvailableSpots:  t.AvailableSpots,
		IsAvailable:     t.IsAvailable,
	}
}

func toTripResponse(t domain.TripDetails) TripResponse {
	out := TripResponse{
		TripSummaryResponse: toTripSummaryResponse(t.TripSummary),
		Description:         t.Description,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
	}
	if t.TotalRevenue != nil {
		s := domain.FormatCents(*t.TotalRevenue)
		out.TotalRevenue = &s
	}
	return out
}

// --- bookings ---

type BookingResponse struct {
	ID           string    `json:"id"`
	TripID       string    `json:"tripId"`
	UserID       string    `json:"userId"`
	Participants int       `json:"participants"`
	TotalPrice   string    `json:"totalPrice"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateBookingRequest struct {
	TripID       string `json:"tripId"`
	Participants int    `json:"participants"`
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           string(b.ID),
		TripID:       string(b.TripID),
		UserID:       string(b.UserID),
		Participants: b.Participants,
		TotalPrice:   domain.FormatCents(b.TotalPrice),
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// --- nullable -> tri-state conversions ---

func usersOptString(n nullable.Nullable[string]) users.Optional[string] {
	if !n.IsSpecified() {
		return users.Unspecified[string]()
	}
	if n.IsNull() {
		return users.Null[string]()
	}
	return users.Some(n.MustGet())
}

func usersOptEmail(n nullable.Nullable[types.Email]) users.Optional[string] {
	if !n.IsSpecified() {
		return users.Unspecified[string]()
	}
	if n.IsNull() {
		return users.Null[string]()
	}
	return users.Some(string(n.MustGet()))
}

func usersOptDate(n nullable.Nullable[types.Date]) users.Optional[time.Time] {
	if !n.IsSpecified() {
		return users.Unspecified[time.Time]()
	}
	if n.IsNull() {
		return users.Null[time.Time]()
	}
	return users.Some(n.MustGet().Time)
}

func tripsOptString(n nullable.Nullable[string]) trips.Optional[string] {
	if !n.IsSpecified() {
		return trips.Unspecified[string]()
	}
	if n.IsNull() {
		return trips.Null[string]()
	}
	return trips.Some(n.MustGet())
}

func tripsOptDate(n nullable.Nullable[types.Date]) trips.Optional[time.Time] {
	if !n.IsSpecified() {
		return trips.Unspecified[time.Time]()
	}
	if n.IsNull() {
		return trips.Null[time.Time]()
	}
	return trips.Some(n.MustGet().Time)
}

func tripsOptInt(n nullable.Nullable[int]) trips.Optional[int] {
	if !n.IsSpecified() {
		return trips.Unspecified[int]()
	}
	if n.IsNull() {
		return trips.Null[int]()
	}
	return trips.Some(n.MustGet())
}

func valueFromNullable[T any](n nullable.Nullable[T]) *T {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v := n.MustGet()
	return &v
}
