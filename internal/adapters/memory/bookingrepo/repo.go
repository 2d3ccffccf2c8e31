package bookingrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	"github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
)

// Repo is an in-memory implementation of bookingrepo.Repository.
//
// A single mutex serializes every capacity-guarded write, which is the
// in-memory analogue of the Postgres trip-row lock: the availability check
// and the insert/transition can never interleave across goroutines.
type Repo struct {
	mu   sync.Mutex
	byID map[domain.BookingID]bookingrepo.Booking
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.BookingID]bookingrepo.Booking),
	}
}

func (r *Repo) CreateIfAvailable(ctx context.Context, b bookingrepo.Booking, capacity int) error {
	_ = ctx
	if b.ID == "" {
		return bookingrepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[b.ID]; ok {
		return bookingrepo.ErrAlreadyExists
	}
	for _, other := range r.byID {
		if other.TripID == b.TripID && other.UserID == b.UserID {
			return bookingrepo.ErrAlreadyBooked
		}
	}
	if b.Participants > capacity-r.confirmedParticipantsLocked(b.TripID) {
		return bookingrepo.ErrInsufficientCapacity
	}
	r.byID[b.ID] = b
	return nil
}

func (r *Repo) ConfirmIfAvailable(ctx context.Context, id domain.BookingID, capacity int, now time.Time) (bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	if !domain.CanTransition(domain.BookingStatus(b.Status), domain.BookingStatusConfirmed) {
		return bookingrepo.Booking{}, bookingrepo.ErrNotPending
	}
	if b.Participants > capacity-r.confirmedParticipantsLocked(b.TripID) {
		return bookingrepo.Booking{}, bookingrepo.ErrInsufficientCapacity
	}
	b.Status = bookingrepo.StatusConfirmed
	b.UpdatedAt = now
	r.byID[id] = b
	return b, nil
}

func (r *Repo) Cancel(ctx context.Context, id domain.BookingID, now time.Time) (bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	if !domain.CanTransition(domain.BookingStatus(b.Status), domain.BookingStatusCancelled) {
		return bookingrepo.Booking{}, bookingrepo.ErrAlreadyCancelled
	}
	b.Status = bookingrepo.StatusCancelled
	b.UpdatedAt = now
	r.byID[id] = b
	return b, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.BookingID) (bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	if !ok {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	return b, nil
}

func (r *Repo) GetByUserAndTrip(ctx context.Context, user domain.UserID, trip domain.TripID) (bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.byID {
		if b.UserID == user && b.TripID == trip {
			return b, nil
		}
	}
	return bookingrepo.Booking{}, bookingrepo.ErrNotFound
}

func (r *Repo) ListByUser(ctx context.Context, user domain.UserID) ([]bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bookingrepo.Booking, 0)
	for _, b := range r.byID {
		if b.UserID == user {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *Repo) ListByTrip(ctx context.Context, trip domain.TripID) ([]bookingrepo.Booking, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bookingrepo.Booking, 0)
	for _, b := range r.byID {
		if b.TripID == trip {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *Repo) ConfirmedParticipants(ctx context.Context, trip domain.TripID) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmedParticipantsLocked(trip), nil
}

func (r *Repo) ConfirmedRevenue(ctx context.Context, trip domain.TripID) (domain.Cents, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	var total domain.Cents
	for _, b := range r.byID {
		if b.TripID == trip && b.Status == bookingrepo.StatusConfirmed {
			total += b.TotalPrice
		}
	}
	return total, nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, trip domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.byID {
		if b.TripID == trip {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *Repo) DeleteByUser(ctx context.Context, user domain.UserID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.byID {
		if b.UserID == user {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *Repo) confirmedParticipantsLocked(trip domain.TripID) int {
	n := 0
	for _, b := range r.byID {
		if b.TripID == trip && b.Status == bookingrepo.StatusConfirmed {
			n += b.Participants
		}
	}
	return n
}

func sortBookings(bs []bookingrepo.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		a, b := bs[i], bs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return string(a.ID) < string(b.ID)
	})
}
