package domain

import "testing"

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusPending, BookingStatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAvailableSpots(t *testing.T) {
	t.Parallel()

	if got := AvailableSpots(10, 4); got != 6 {
		t.Fatalf("AvailableSpots = %d, want 6", got)
	}
	if got := AvailableSpots(2, 5); got != -3 {
		t.Fatalf("AvailableSpots = %d, want -3", got)
	}
	if got := ClampedSpots(-3); got != 0 {
		t.Fatalf("ClampedSpots = %d, want 0", got)
	}
	if IsAvailable(0) {
		t.Fatalf("IsAvailable(0) = true, want false")
	}
	if !IsAvailable(1) {
		t.Fatalf("IsAvailable(1) = false, want true")
	}
}
