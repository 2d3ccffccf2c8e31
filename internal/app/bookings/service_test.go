package bookings_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	membookingrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/bookingrepo"
	memclock "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/clock"
	memtriprepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/triprepo"
	"github.com/sharetrip-app/sharetrip-api/internal/app/bookings"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	porttriprepo "github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
)

func seedTrip(t *testing.T, repo *memtriprepo.Repo, id domain.TripID, creator domain.UserID, status porttriprepo.Status, capacity int, price domain.Cents) {
	t.Helper()
	now := time.Unix(1000, 0).UTC()
	if err := repo.Create(context.Background(), porttriprepo.Trip{
		ID:              id,
		CreatorID:       creator,
		Status:          status,
		Title:           "Trip " + string(id),
		Description:     "desc",
		Destination:     "Lisbon",
		StartDate:       now.AddDate(0, 1, 0),
		EndDate:         now.AddDate(0, 1, 7),
		MaxParticipants: capacity,
		PricePerPerson:  price,
		CreatedAt:       now,
		UpdatedAt:       now,
	}); err != nil {
		t.Fatalf("create trip: %v", err)
	}
}

func TestService_CreateBooking_PendingWithPriceSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)
	svc.SetNewBookingIDForTest(func() domain.BookingID { return "b1" })

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 3})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if b.ID != "b1" || b.Status != domain.BookingStatusPending {
		t.Fatalf("booking=%+v", b)
	}
	if b.TotalPrice != 15000 {
		t.Fatalf("TotalPrice=%d want=15000", b.TotalPrice)
	}
	if !b.CreatedAt.Equal(time.Unix(2000, 0).UTC()) {
		t.Fatalf("CreatedAt=%s", b.CreatedAt)
	}

	// Pending bookings do not consume capacity.
	confirmed, err := bookingsRepo.ConfirmedParticipants(ctx, "t1")
	if err != nil {
		t.Fatalf("ConfirmedParticipants: %v", err)
	}
	if confirmed != 0 {
		t.Fatalf("confirmed=%d want=0", confirmed)
	}
}

func TestService_CreateBooking_TripUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "draft", "creator", porttriprepo.StatusDraft, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	var ae *bookings.Error
	_, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "missing", Participants: 1})
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "TRIP_UNAVAILABLE" {
		t.Fatalf("missing trip err=%v", err)
	}
	_, err = svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "draft", Participants: 1})
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "TRIP_UNAVAILABLE" {
		t.Fatalf("draft trip err=%v", err)
	}
}

func TestService_CreateBooking_CreatorCannotBookOwnTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	_, err := svc.CreateBooking(ctx, "creator", bookings.CreateBookingInput{TripID: "t1", Participants: 1})
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%v", err)
	}
}

func TestService_CreateBooking_DuplicatePerUserAndTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	if _, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 1}); err != nil {
		t.Fatalf("first CreateBooking: %v", err)
	}
	_, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 2})
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "DUPLICATE_BOOKING" {
		t.Fatalf("err=%v", err)
	}
}

func TestService_CreateBooking_InsufficientCapacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 2, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 2})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, "creator", "t1", b.ID); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}

	// Capacity is participant-weighted: one confirmed booking of 2 fills a
	// 2-spot trip.
	_, err = svc.CreateBooking(ctx, "u2", bookings.CreateBookingInput{TripID: "t1", Participants: 1})
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INSUFFICIENT_CAPACITY" {
		t.Fatalf("err=%v", err)
	}
	if ae.Details["availableSpots"] != 0 {
		t.Fatalf("availableSpots=%v want=0", ae.Details["availableSpots"])
	}
}

func TestService_ConfirmBooking_AuthzAndTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)
	seedTrip(t, tripsRepo, "t2", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 1})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	var ae *bookings.Error

	// Only the trip creator may confirm; anyone else sees no trip at all.
	_, err = svc.ConfirmBooking(ctx, "u1", "t1", b.ID)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "TRIP_NOT_FOUND" {
		t.Fatalf("non-creator err=%v", err)
	}

	// The booking must belong to the trip in the URL.
	_, err = svc.ConfirmBooking(ctx, "creator", "t2", b.ID)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "BOOKING_NOT_FOUND" {
		t.Fatalf("wrong trip err=%v", err)
	}

	clk.Advance(time.Minute)
	confirmed, err := svc.ConfirmBooking(ctx, "creator", "t1", b.ID)
	if err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}
	if confirmed.Status != domain.BookingStatusConfirmed {
		t.Fatalf("status=%s", confirmed.Status)
	}
	if !confirmed.UpdatedAt.After(confirmed.CreatedAt) {
		t.Fatalf("UpdatedAt=%s CreatedAt=%s", confirmed.UpdatedAt, confirmed.CreatedAt)
	}

	// Confirming twice is an invalid transition.
	_, err = svc.ConfirmBooking(ctx, "creator", "t1", b.ID)
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INVALID_TRANSITION" {
		t.Fatalf("double confirm err=%v", err)
	}
}

func TestService_ConfirmBooking_RechecksCapacity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 2, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	// Two pending bookings of 2 participants each both fit at creation time,
	// but only one can be confirmed on a 2-spot trip.
	b1, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 2})
	if err != nil {
		t.Fatalf("CreateBooking u1: %v", err)
	}
	b2, err := svc.CreateBooking(ctx, "u2", bookings.CreateBookingInput{TripID: "t1", Participants: 2})
	if err != nil {
		t.Fatalf("CreateBooking u2: %v", err)
	}

	if _, err := svc.ConfirmBooking(ctx, "creator", "t1", b1.ID); err != nil {
		t.Fatalf("ConfirmBooking b1: %v", err)
	}
	_, err = svc.ConfirmBooking(ctx, "creator", "t1", b2.ID)
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INSUFFICIENT_CAPACITY" {
		t.Fatalf("err=%v", err)
	}
}

func TestService_CancelBooking_FreesCapacityAndIsTerminal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 2, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 2})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, "creator", "t1", b.ID); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}

	var ae *bookings.Error

	// A third party can neither cancel nor even see the booking.
	_, err = svc.CancelBooking(ctx, "stranger", b.ID)
	if !errors.As(err, &ae) || ae.Status != 403 || ae.Code != "FORBIDDEN" {
		t.Fatalf("stranger err=%v", err)
	}

	cancelled, err := svc.CancelBooking(ctx, "u1", b.ID)
	if err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Fatalf("status=%s", cancelled.Status)
	}

	// The freed participants are immediately bookable again.
	if _, err := svc.CreateBooking(ctx, "u2", bookings.CreateBookingInput{TripID: "t1", Participants: 2}); err != nil {
		t.Fatalf("CreateBooking after cancel: %v", err)
	}

	// CANCELLED is terminal.
	_, err = svc.CancelBooking(ctx, "u1", b.ID)
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INVALID_TRANSITION" {
		t.Fatalf("double cancel err=%v", err)
	}
}

func TestService_CancelBooking_TripCreatorMayCancel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 1})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	cancelled, err := svc.CancelBooking(ctx, "creator", b.ID)
	if err != nil {
		t.Fatalf("CancelBooking as creator: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Fatalf("status=%s", cancelled.Status)
	}
}

func TestService_TripRevenue_SnapshotsSurviveReprice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 3})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := svc.ConfirmBooking(ctx, "creator", "t1", b.ID); err != nil {
		t.Fatalf("ConfirmBooking: %v", err)
	}

	// A pending booking contributes nothing.
	if _, err := svc.CreateBooking(ctx, "u2", bookings.CreateBookingInput{TripID: "t1", Participants: 5}); err != nil {
		t.Fatalf("CreateBooking u2: %v", err)
	}

	rev, err := svc.TripRevenue(ctx, "creator", "t1")
	if err != nil {
		t.Fatalf("TripRevenue: %v", err)
	}
	if rev != 15000 {
		t.Fatalf("revenue=%d want=15000", rev)
	}

	// Reprice the trip; the confirmed booking keeps its snapshot.
	tp, _ := tripsRepo.GetByID(ctx, "t1")
	tp.PricePerPerson = 9999
	_ = tripsRepo.Save(ctx, tp)

	rev, err = svc.TripRevenue(ctx, "creator", "t1")
	if err != nil {
		t.Fatalf("TripRevenue after reprice: %v", err)
	}
	if rev != 15000 {
		t.Fatalf("revenue after reprice=%d want=15000", rev)
	}

	// Revenue is creator-only; everyone else sees no trip.
	_, err = svc.TripRevenue(ctx, "u1", "t1")
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "TRIP_NOT_FOUND" {
		t.Fatalf("non-creator err=%v", err)
	}
}

func TestService_GetBooking_VisibleToBookerAndCreatorOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, 10, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	b, err := svc.CreateBooking(ctx, "u1", bookings.CreateBookingInput{TripID: "t1", Participants: 1})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if _, err := svc.GetBooking(ctx, "u1", b.ID); err != nil {
		t.Fatalf("GetBooking as booker: %v", err)
	}
	if _, err := svc.GetBooking(ctx, "creator", b.ID); err != nil {
		t.Fatalf("GetBooking as creator: %v", err)
	}
	_, err = svc.GetBooking(ctx, "stranger", b.ID)
	var ae *bookings.Error
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "BOOKING_NOT_FOUND" {
		t.Fatalf("stranger err=%v", err)
	}
}

func TestService_ConcurrentBookings_NeverOverbook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	const capacity = 5
	seedTrip(t, tripsRepo, "t1", "creator", porttriprepo.StatusPublished, capacity, 5000)

	svc := bookings.NewService(bookingsRepo, tripsRepo, clk)

	// 20 users race to book and get confirmed on a 5-spot trip. However the
	// races interleave, confirmed participants must never exceed capacity.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := domain.UserID(fmt.Sprintf("u%d", i))
			b, err := svc.CreateBooking(ctx, user, bookings.CreateBookingInput{TripID: "t1", Participants: 1})
			if err != nil {
				return
			}
			_, _ = svc.ConfirmBooking(ctx, "creator", "t1", b.ID)
		}(i)
	}
	wg.Wait()

	confirmed, err := bookingsRepo.ConfirmedParticipants(ctx, "t1")
	if err != nil {
		t.Fatalf("ConfirmedParticipants: %v", err)
	}
	if confirmed > capacity {
		t.Fatalf("confirmed=%d exceeds capacity=%d", confirmed, capacity)
	}
	if confirmed != capacity {
		t.Fatalf("confirmed=%d want=%d (plenty of takers)", confirmed, capacity)
	}
}
