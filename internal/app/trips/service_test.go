package trips_test

import (
	"context"
	"errors"
	"testing"
	"time"

	membookingrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/bookingrepo"
	memclock "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/clock"
	memtriprepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/triprepo"
	memuserrepo "github.com/sharetrip-app/sharetrip-api/internal/adapters/memory/userrepo"
	"github.com/sharetrip-app/sharetrip-api/internal/app/trips"
	"github.com/sharetrip-app/sharetrip-api/internal/domain"
	portbookingrepo "github.com/sharetrip-app/sharetrip-api/internal/ports/out/bookingrepo"
	porttriprepo "github.com/sharetrip-app/sharetrip-api/internal/ports/out/triprepo"
	portuserrepo "github.com/sharetrip-app/sharetrip-api/internal/ports/out/userrepo"
)

func provisionUser(t *testing.T, repo *memuserrepo.Repo, id domain.UserID) {
	t.Helper()
	now := time.Unix(100, 0).UTC()
	if err := repo.Create(context.Background(), portuserrepo.User{
		ID:        id,
		Subject:   domain.SubjectID("sub-" + string(id)),
		Handle:    "user-" + string(id),
		Email:     string(id) + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
}

func confirmedBooking(id domain.BookingID, trip domain.TripID, user domain.UserID, participants int, total domain.Cents) portbookingrepo.Booking {
	now := time.Unix(150, 0).UTC()
	return portbookingrepo.Booking{
		ID:           id,
		TripID:       trip,
		UserID:       user,
		Status:       portbookingrepo.StatusPending,
		Participants: participants,
		TotalPrice:   total,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func seedConfirmed(t *testing.T, repo *membookingrepo.Repo, b portbookingrepo.Booking, capacity int) {
	t.Helper()
	ctx := context.Background()
	if err := repo.CreateIfAvailable(ctx, b, capacity); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if _, err := repo.ConfirmIfAvailable(ctx, b.ID, capacity, time.Unix(160, 0).UTC()); err != nil {
		t.Fatalf("confirm seeded booking: %v", err)
	}
}

func TestService_CreateTrip_DefaultsAndValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	created, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title:           "  Douro   Valley  ",
		Description:     "wine country",
		Destination:     "Porto",
		StartDate:       start,
		EndDate:         end,
		MaxParticipants: 4,
		PricePerPerson:  12550,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if created.ID != "t1" || created.Status != domain.TripStatusDraft {
		t.Fatalf("created=%+v", created)
	}
	if created.Title != "Douro Valley" {
		t.Fatalf("title=%q", created.Title)
	}
	if created.AvailableSpots != 4 || !created.IsAvailable {
		t.Fatalf("spots=%d available=%v", created.AvailableSpots, created.IsAvailable)
	}
	// The creator sees revenue, zero so far.
	if created.TotalRevenue == nil || *created.TotalRevenue != 0 {
		t.Fatalf("revenue=%v", created.TotalRevenue)
	}

	cases := []struct {
		name string
		in   trips.CreateTripInput
	}{
		{"empty title", trips.CreateTripInput{Title: "  ", Destination: "X", StartDate: start, EndDate: end, MaxParticipants: 1}},
		{"empty destination", trips.CreateTripInput{Title: "T", Destination: "", StartDate: start, EndDate: end, MaxParticipants: 1}},
		{"end before start", trips.CreateTripInput{Title: "T", Destination: "X", StartDate: end, EndDate: start, MaxParticipants: 1}},
		{"start equals end", trips.CreateTripInput{Title: "T", Destination: "X", StartDate: start, EndDate: start, MaxParticipants: 1}},
		{"zero participants", trips.CreateTripInput{Title: "T", Destination: "X", StartDate: start, EndDate: end, MaxParticipants: 0}},
		{"negative price", trips.CreateTripInput{Title: "T", Destination: "X", StartDate: start, EndDate: end, MaxParticipants: 1, PricePerPerson: -1}},
		{"bad status", trips.CreateTripInput{Title: "T", Destination: "X", StartDate: start, EndDate: end, MaxParticipants: 1, Status: domain.TripStatusCompleted}},
	}
	for _, tc := range cases {
		_, err := svc.CreateTrip(ctx, "u1", tc.in)
		var ae *trips.Error
		if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "VALIDATION_ERROR" {
			t.Fatalf("%s: err=%v", tc.name, err)
		}
	}
}

func TestService_GetTrip_HidesDraftsFromNonCreators(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "Draft", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 1), MaxParticipants: 1,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	if _, err := svc.GetTrip(ctx, "u1", "t1"); err != nil {
		t.Fatalf("GetTrip as creator: %v", err)
	}

	var ae *trips.Error
	if _, err := svc.GetTrip(ctx, "u2", "t1"); !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "TRIP_NOT_FOUND" {
		t.Fatalf("other caller err=%v", err)
	}
	if _, err := svc.GetTrip(ctx, "", "t1"); !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("anonymous err=%v", err)
	}
}

func TestService_GetTrip_RevenueIsCreatorOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "T", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 1),
		MaxParticipants: 4, PricePerPerson: 5000, Status: domain.TripStatusPublished,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	seedConfirmed(t, bookingsRepo, confirmedBooking("b1", "t1", "u2", 3, 15000), 4)

	td, err := svc.GetTrip(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetTrip as creator: %v", err)
	}
	if td.TotalRevenue == nil || *td.TotalRevenue != 15000 {
		t.Fatalf("revenue=%v", td.TotalRevenue)
	}
	if td.AvailableSpots != 1 || !td.IsAvailable {
		t.Fatalf("spots=%d available=%v", td.AvailableSpots, td.IsAvailable)
	}

	td, err = svc.GetTrip(ctx, "u2", "t1")
	if err != nil {
		t.Fatalf("GetTrip as other: %v", err)
	}
	if td.TotalRevenue != nil {
		t.Fatalf("revenue leaked to non-creator: %v", *td.TotalRevenue)
	}
}

func TestService_UpdateTrip_CreatorOnlyAndPatchSemantics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")
	provisionUser(t, usersRepo, "u2")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "T", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 7), MaxParticipants: 4, PricePerPerson: 5000,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}

	var ae *trips.Error
	if _, err := svc.UpdateTrip(ctx, "u2", "t1", trips.UpdateTripInput{Title: trips.Some("X")}); !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("non-creator err=%v", err)
	}

	clk.Advance(time.Hour)
	td, err := svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{
		Title:          trips.Some("  New  Title "),
		PricePerPerson: trips.Some(domain.Cents(7500)),
	})
	if err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if td.Title != "New Title" || td.PricePerPerson != 7500 {
		t.Fatalf("td=%+v", td)
	}
	if !td.UpdatedAt.After(td.CreatedAt) {
		t.Fatalf("UpdatedAt=%s CreatedAt=%s", td.UpdatedAt, td.CreatedAt)
	}

	// Unspecified fields are untouched; explicit null on a required field is
	// rejected.
	if td.Destination != "X" {
		t.Fatalf("destination=%q", td.Destination)
	}
	if _, err := svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{Title: trips.Null[string]()}); !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("null title err=%v", err)
	}

	// A date patch that inverts the range is rejected even when only one
	// endpoint moves.
	if _, err := svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{EndDate: trips.Some(start.AddDate(0, 0, -1))}); !errors.As(err, &ae) || ae.Status != 400 {
		t.Fatalf("inverted range err=%v", err)
	}
}

func TestService_UpdateTrip_CapacityCannotDropBelowConfirmed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "T", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 7),
		MaxParticipants: 4, PricePerPerson: 5000, Status: domain.TripStatusPublished,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	seedConfirmed(t, bookingsRepo, confirmedBooking("b1", "t1", "u2", 3, 15000), 4)

	var ae *trips.Error
	_, err = svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{MaxParticipants: trips.Some(2)})
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "CAPACITY_BELOW_CONFIRMED" {
		t.Fatalf("err=%v", err)
	}

	// Shrinking down to exactly the confirmed head count is allowed.
	td, err := svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{MaxParticipants: trips.Some(3)})
	if err != nil {
		t.Fatalf("UpdateTrip to 3: %v", err)
	}
	if td.AvailableSpots != 0 || td.IsAvailable {
		t.Fatalf("spots=%d available=%v", td.AvailableSpots, td.IsAvailable)
	}
}

func TestService_UpdateTrip_CannotUnpublishWithConfirmedBookings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "T", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 7),
		MaxParticipants: 4, PricePerPerson: 5000, Status: domain.TripStatusPublished,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	seedConfirmed(t, bookingsRepo, confirmedBooking("b1", "t1", "u2", 1, 5000), 4)

	var ae *trips.Error
	_, err = svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{Status: trips.Some(domain.TripStatusDraft)})
	if !errors.As(err, &ae) || ae.Status != 400 || ae.Code != "INVALID_TRANSITION" {
		t.Fatalf("err=%v", err)
	}

	// COMPLETED is still reachable.
	td, err := svc.UpdateTrip(ctx, "u1", "t1", trips.UpdateTripInput{Status: trips.Some(domain.TripStatusCompleted)})
	if err != nil {
		t.Fatalf("UpdateTrip to COMPLETED: %v", err)
	}
	if td.Status != domain.TripStatusCompleted {
		t.Fatalf("status=%s", td.Status)
	}
}

func TestService_ListPublishedTrips_OmitsDrafts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	ids := []domain.TripID{"t1", "t2", "t3"}
	statuses := []domain.TripStatus{domain.TripStatusPublished, domain.TripStatusDraft, domain.TripStatusPublished}
	for i, id := range ids {
		id := id
		svc.SetNewTripIDForTest(func() domain.TripID { return id })
		_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
			Title: "T" + string(id), Destination: "X", StartDate: start.AddDate(0, 0, i), EndDate: start.AddDate(0, 0, i+7),
			MaxParticipants: 2, Status: statuses[i],
		})
		if err != nil {
			t.Fatalf("CreateTrip %s: %v", id, err)
		}
	}

	published, err := svc.ListPublishedTrips(ctx, "")
	if err != nil {
		t.Fatalf("ListPublishedTrips: %v", err)
	}
	if len(published) != 2 || published[0].ID != "t1" || published[1].ID != "t3" {
		t.Fatalf("published=%+v", published)
	}

	mine, err := svc.ListMyTrips(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMyTrips: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("mine=%d want=3", len(mine))
	}
}

func TestService_DeleteTrip_CascadesBookings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	usersRepo := memuserrepo.NewRepo()
	tripsRepo := memtriprepo.NewRepo()
	bookingsRepo := membookingrepo.NewRepo()
	clk := memclock.NewManual(time.Unix(2000, 0))
	provisionUser(t, usersRepo, "u1")

	svc := trips.NewService(tripsRepo, usersRepo, bookingsRepo, clk)
	svc.SetNewTripIDForTest(func() domain.TripID { return "t1" })

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateTrip(ctx, "u1", trips.CreateTripInput{
		Title: "T", Destination: "X", StartDate: start, EndDate: start.AddDate(0, 0, 7),
		MaxParticipants: 4, Status: domain.TripStatusPublished,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	seedConfirmed(t, bookingsRepo, confirmedBooking("b1", "t1", "u2", 1, 5000), 4)

	var ae *trips.Error
	if err := svc.DeleteTrip(ctx, "u2", "t1"); !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("non-creator delete err=%v", err)
	}

	if err := svc.DeleteTrip(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	if _, err := tripsRepo.GetByID(ctx, "t1"); !errors.Is(err, porttriprepo.ErrNotFound) {
		t.Fatalf("trip still present: %v", err)
	}
	if _, err := bookingsRepo.GetByID(ctx, "b1"); !errors.Is(err, portbookingrepo.ErrNotFound) {
		t.Fatalf("booking still present: %v", err)
	}
}
