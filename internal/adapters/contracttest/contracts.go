package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	bookingrepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	triprepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
	userrepoport "github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type BookingRepoFactory func(t *testing.T) (bookingrepoport.Repository, CleanupFunc)

// Fixture bundles the three repositories so booking behaviors that need
// seeded users and trips can run against any backend.
type Fixture struct {
	Users    userrepoport.Repository
	Trips    triprepoport.Repository
	Bookings bookingrepoport.Repository
}

type FixtureFactory func(t *testing.T) (Fixture, CleanupFunc)

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.UserID(uuid.NewString())
	sub := domain.SubjectID("sub-a")
	if err := repo.Create(ctx, userrepoport.User{
		ID:        aID,
		Subject:   sub,
		Handle:    "alice",
		Email:     "alice@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create a: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := repo.GetBySubject(ctx, sub); err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}

	// Subject uniqueness.
	if err := repo.Create(ctx, userrepoport.User{
		ID:        domain.UserID(uuid.NewString()),
		Subject:   sub,
		Handle:    "alice2",
		Email:     "alice2@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}); !errors.Is(err, userrepoport.ErrSubjectAlreadyBound) {
		t.Fatalf("expected ErrSubjectAlreadyBound, got %v", err)
	}

	// Handle uniqueness.
	if err := repo.Create(ctx, userrepoport.User{
		ID:        domain.UserID(uuid.NewString()),
		Subject:   domain.SubjectID("sub-b"),
		Handle:    "alice",
		Email:     "other@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}); !errors.Is(err, userrepoport.ErrHandleTaken) {
		t.Fatalf("expected ErrHandleTaken, got %v", err)
	}

	// Email uniqueness.
	if err := repo.Create(ctx, userrepoport.User{
		ID:        domain.UserID(uuid.NewString()),
		Subject:   domain.SubjectID("sub-c"),
		Handle:    "carol",
		Email:     "alice@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}); !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Update round-trip.
	u, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	bio := "likes slow travel"
	u.Bio = &bio
	u.UpdatedAt = now.Add(time.Minute)
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Bio == nil || *got.Bio != bio {
		t.Fatalf("unexpected bio: %#v", got.Bio)
	}

	// Delete.
	if err := repo.Delete(ctx, aID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, aID); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// RunTripAndBookingRepos exercises behaviors that require coordinated seeding,
// including the atomic capacity guarantees of the booking repository.
func RunTripAndBookingRepos(t *testing.T, newFixture FixtureFactory) {
	t.Helper()

	t.Run("trip crud and listing", func(t *testing.T) {
		ctx := context.Background()
		fx, cleanup := newFixture(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(2000, 0).UTC()
		creatorID := seedUser(t, fx, "sub-creator", "creator", "creator@example.com")

		tripID := domain.TripID(uuid.NewString())
		if err := fx.Trips.Create(ctx, triprepoport.Trip{
			ID:              tripID,
			CreatorID:       creatorID,
			Status:          triprepoport.StatusDraft,
			Title:           "Coastal Loop",
			Destination:     "Lisbon",
			StartDate:       now.AddDate(0, 1, 0),
			EndDate:         now.AddDate(0, 1, 7),
			MaxParticipants: 4,
			PricePerPerson:  domain.Cents(5000),
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			t.Fatalf("Create trip: %v", err)
		}

		got, err := fx.Trips.GetByID(ctx, tripID)
		if err != nil {
			t.Fatalf("GetByID trip: %v", err)
		}
		if got.Status != triprepoport.StatusDraft || got.Title != "Coastal Loop" {
			t.Fatalf("unexpected trip: %#v", got)
		}

		// Drafts are not listed as published.
		pub, err := fx.Trips.ListPublished(ctx)
		if err != nil {
			t.Fatalf("ListPublished: %v", err)
		}
		if len(pub) != 0 {
			t.Fatalf("expected no published trips, got %d", len(pub))
		}

		got.Status = triprepoport.StatusPublished
		got.UpdatedAt = now.Add(time.Minute)
		if err := fx.Trips.Save(ctx, got); err != nil {
			t.Fatalf("Save: %v", err)
		}
		pub, err = fx.Trips.ListPublished(ctx)
		if err != nil {
			t.Fatalf("ListPublished: %v", err)
		}
		if len(pub) != 1 || pub[0].ID != tripID {
			t.Fatalf("unexpected published list: %#v", pub)
		}

		mine, err := fx.Trips.ListByCreator(ctx, creatorID)
		if err != nil {
			t.Fatalf("ListByCreator: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != tripID {
			t.Fatalf("unexpected creator list: %#v", mine)
		}

		if err := fx.Trips.Delete(ctx, tripID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := fx.Trips.GetByID(ctx, tripID); !errors.Is(err, triprepoport.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("booking lifecycle", func(t *testing.T) {
		ctx := context.Background()
		fx, cleanup := newFixture(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(3000, 0).UTC()
		creatorID := seedUser(t, fx, "sub-host", "host", "host@example.com")
		bookerID := seedUser(t, fx, "sub-guest", "guest", "guest@example.com")
		tripID := seedPublishedTrip(t, fx, creatorID, 3, domain.Cents(5000), now)

		b := bookingrepoport.Booking{
			ID:           domain.BookingID(uuid.NewString()),
			TripID:       tripID,
			UserID:       bookerID,
			Status:       bookingrepoport.StatusPending,
			Participants: 2,
			TotalPrice:   domain.Cents(10000),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := fx.Bookings.CreateIfAvailable(ctx, b, 3); err != nil {
			t.Fatalf("CreateIfAvailable: %v", err)
		}

		// (user, trip) uniqueness.
		dup := b
		dup.ID = domain.BookingID(uuid.NewString())
		if err := fx.Bookings.CreateIfAvailable(ctx, dup, 3); !errors.Is(err, bookingrepoport.ErrAlreadyBooked) {
			t.Fatalf("expected ErrAlreadyBooked, got %v", err)
		}

		// Pending bookings do not consume capacity.
		if n, err := fx.Bookings.ConfirmedParticipants(ctx, tripID); err != nil || n != 0 {
			t.Fatalf("ConfirmedParticipants: n=%d err=%v", n, err)
		}

		confirmed, err := fx.Bookings.ConfirmIfAvailable(ctx, b.ID, 3, now.Add(time.Minute))
		if err != nil {
			t.Fatalf("ConfirmIfAvailable: %v", err)
		}
		if confirmed.Status != bookingrepoport.StatusConfirmed {
			t.Fatalf("unexpected status: %s", confirmed.Status)
		}
		if _, err := fx.Bookings.ConfirmIfAvailable(ctx, b.ID, 3, now.Add(2*time.Minute)); !errors.Is(err, bookingrepoport.ErrNotPending) {
			t.Fatalf("expected ErrNotPending, got %v", err)
		}
		if n, err := fx.Bookings.ConfirmedParticipants(ctx, tripID); err != nil || n != 2 {
			t.Fatalf("ConfirmedParticipants after confirm: n=%d err=%v", n, err)
		}
		if rev, err := fx.Bookings.ConfirmedRevenue(ctx, tripID); err != nil || rev != 10000 {
			t.Fatalf("ConfirmedRevenue: rev=%d err=%v", rev, err)
		}

		// A second booking exceeding the remaining capacity is rejected.
		otherID := seedUser(t, fx, "sub-late", "late", "late@example.com")
		over := bookingrepoport.Booking{
			ID:           domain.BookingID(uuid.NewString()),
			TripID:       tripID,
			UserID:       otherID,
			Status:       bookingrepoport.StatusPending,
			Participants: 2,
			TotalPrice:   domain.Cents(10000),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := fx.Bookings.CreateIfAvailable(ctx, over, 3); !errors.Is(err, bookingrepoport.ErrInsufficientCapacity) {
			t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
		}

		// Cancel frees the capacity, and cancelling twice fails.
		cancelled, err := fx.Bookings.Cancel(ctx, b.ID, now.Add(3*time.Minute))
		if err != nil {
			t.Fatalf("Cancel: %v", err)
		}
		if cancelled.Status != bookingrepoport.StatusCancelled {
			t.Fatalf("unexpected status: %s", cancelled.Status)
		}
		if _, err := fx.Bookings.Cancel(ctx, b.ID, now.Add(4*time.Minute)); !errors.Is(err, bookingrepoport.ErrAlreadyCancelled) {
			t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
		}
		if err := fx.Bookings.CreateIfAvailable(ctx, over, 3); err != nil {
			t.Fatalf("CreateIfAvailable after cancel: %v", err)
		}

		// List shapes.
		byTrip, err := fx.Bookings.ListByTrip(ctx, tripID)
		if err != nil {
			t.Fatalf("ListByTrip: %v", err)
		}
		if len(byTrip) != 2 {
			t.Fatalf("expected 2 bookings for trip, got %d", len(byTrip))
		}
		byUser, err := fx.Bookings.ListByUser(ctx, otherID)
		if err != nil {
			t.Fatalf("ListByUser: %v", err)
		}
		if len(byUser) != 1 || byUser[0].ID != over.ID {
			t.Fatalf("unexpected user bookings: %#v", byUser)
		}
		if _, err := fx.Bookings.GetByUserAndTrip(ctx, otherID, tripID); err != nil {
			t.Fatalf("GetByUserAndTrip: %v", err)
		}

		if err := fx.Bookings.DeleteByTrip(ctx, tripID); err != nil {
			t.Fatalf("DeleteByTrip: %v", err)
		}
		if left, err := fx.Bookings.ListByTrip(ctx, tripID); err != nil || len(left) != 0 {
			t.Fatalf("expected no bookings after DeleteByTrip, got %d err=%v", len(left), err)
		}
	})

	t.Run("concurrent creates never exceed capacity", func(t *testing.T) {
		ctx := context.Background()
		fx, cleanup := newFixture(t)
		if cleanup != nil {
			t.Cleanup(cleanup)
		}

		now := time.Unix(4000, 0).UTC()
		creatorID := seedUser(t, fx, "sub-race-host", "racehost", "racehost@example.com")
		const capacity = 5
		tripID := seedPublishedTrip(t, fx, creatorID, capacity, domain.Cents(1000), now)

		// More contenders than capacity; every booking asks for 1 spot and is
		// confirmed immediately after creation.
		const contenders = 20
		var wg sync.WaitGroup
		for i := 0; i < contenders; i++ {
			handle := "racer" + uuid.NewString()[:8]
			uid := seedUser(t, fx, domain.SubjectID("sub-race-"+handle), handle, handle+"@example.com")
			wg.Add(1)
			go func(uid domain.UserID) {
				defer wg.Done()
				b := bookingrepoport.Booking{
					ID:           domain.BookingID(uuid.NewString()),
					TripID:       tripID,
					UserID:       uid,
					Status:       bookingrepoport.StatusPending,
					Participants: 1,
					TotalPrice:   domain.Cents(1000),
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := fx.Bookings.CreateIfAvailable(ctx, b, capacity); err != nil {
					return
				}
				_, _ = fx.Bookings.ConfirmIfAvailable(ctx, b.ID, capacity, now)
			}(uid)
		}
		wg.Wait()

		n, err := fx.Bookings.ConfirmedParticipants(ctx, tripID)
		if err != nil {
			t.Fatalf("ConfirmedParticipants: %v", err)
		}
		if n > capacity {
			t.Fatalf("confirmed participants %d exceed capacity %d", n, capacity)
		}
	})
}

func seedUser(t *testing.T, fx Fixture, subject domain.SubjectID, handle, email string) domain.UserID {
	t.Helper()
	id := domain.UserID(uuid.NewString())
	now := time.Unix(500, 0).UTC()
	if err := fx.Users.Create(context.Background(), userrepoport.User{
		ID:        id,
		Subject:   subject,
		Handle:    handle,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed user %s: %v", handle, err)
	}
	return id
}

func seedPublishedTrip(t *testing.T, fx Fixture, creator domain.UserID, capacity int, price domain.Cents, now time.Time) domain.TripID {
	t.Helper()
	id := domain.TripID(uuid.NewString())
	if err := fx.Trips.Create(context.Background(), triprepoport.Trip{
		ID:              id,
		CreatorID:       creator,
		Status:          triprepoport.StatusPublished,
		Title:           "Seeded Trip",
		Destination:     "Porto",
		StartDate:       now.AddDate(0, 1, 0),
		EndDate:         now.AddDate(0, 1, 5),
		MaxParticipants: capacity,
		PricePerPerson:  price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return id
}
