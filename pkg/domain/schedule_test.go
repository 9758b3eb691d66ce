package domain

import (
	"testing"
	"time"
)

func testSchedule(t *testing.T) PlotSchedule {
	t.Helper()
	april := iv(t, date(2026, time.April, 1), date(2026, time.April, 30))
	may := iv(t, date(2026, time.May, 1), date(2026, time.May, 31))
	june := iv(t, date(2026, time.June, 1), date(2026, time.June, 30))
	return PlotSchedule{
		Plot: Plot{Base: Base{ID: "P1"}},
		Reservations: []Reservation{
			{Base: Base{ID: "R0001"}, PlotID: "P1", GardenerID: "G1", Interval: april, Status: StatusConfirmed},
			{Base: Base{ID: "R0002"}, PlotID: "P1", GardenerID: "G2", Interval: may, Status: StatusPending},
			{Base: Base{ID: "R0003"}, PlotID: "P1", GardenerID: "G3", Interval: june, Status: StatusCancelled},
		},
	}
}

func TestScheduleAvailability(t *testing.T) {
	s := testSchedule(t)

	confirmedRange := iv(t, date(2026, time.April, 10), date(2026, time.April, 20))
	if s.IsAvailable(confirmedRange) {
		t.Fatal("confirmed reservation blocks its range")
	}

	// Pending and cancelled reservations leave their ranges open.
	pendingRange := iv(t, date(2026, time.May, 10), date(2026, time.May, 20))
	if !s.IsAvailable(pendingRange) {
		t.Fatal("pending reservation must not block")
	}
	cancelledRange := iv(t, date(2026, time.June, 10), date(2026, time.June, 20))
	if !s.IsAvailable(cancelledRange) {
		t.Fatal("cancelled reservation must not block")
	}

	if s.IsAvailable(Interval{}) {
		t.Fatal("zero interval is unavailable, not an error")
	}
}

func TestScheduleConflictingReservations(t *testing.T) {
	s := testSchedule(t)

	wholeSpring := iv(t, date(2026, time.April, 1), date(2026, time.June, 30))
	conflicts := s.ConflictingReservations(wholeSpring)
	if len(conflicts) != 1 || conflicts[0].ID != "R0001" {
		t.Fatalf("only the confirmed reservation conflicts, got %+v", conflicts)
	}
	if got := s.ConflictingReservations(Interval{}); got != nil {
		t.Fatalf("zero interval conflicts with nothing, got %+v", got)
	}
}

func TestScheduleActiveReservations(t *testing.T) {
	s := testSchedule(t)
	active := s.ActiveReservations()
	if len(active) != 2 {
		t.Fatalf("expected confirmed and pending, got %+v", active)
	}
}

func TestScheduleOccupancy(t *testing.T) {
	s := testSchedule(t)

	if !s.IsCurrentlyOccupied(date(2026, time.April, 15)) {
		t.Fatal("confirmed reservation occupies mid-April")
	}
	occupant, ok := s.CurrentOccupantID(date(2026, time.April, 15))
	if !ok || occupant != "G1" {
		t.Fatalf("expected G1 occupying, got %q ok=%v", occupant, ok)
	}

	// Pending May reservation does not occupy.
	if s.IsCurrentlyOccupied(date(2026, time.May, 15)) {
		t.Fatal("pending reservation never occupies")
	}
	if _, ok := s.CurrentOccupantID(date(2026, time.July, 1)); ok {
		t.Fatal("nothing occupies July")
	}
}
