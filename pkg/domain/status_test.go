package domain

import "testing"

func TestStatusTransitionTable(t *testing.T) {
	all := []ReservationStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	allowed := map[ReservationStatus][]ReservationStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
		StatusCancelled: nil,
		StatusCompleted: nil,
	}

	for _, from := range all {
		legal := make(map[ReservationStatus]bool)
		for _, to := range allowed[from] {
			legal[to] = true
		}
		for _, to := range all {
			if got := from.CanTransitionTo(to); got != legal[to] {
				t.Fatalf("%s -> %s: got %v, want %v", from, to, got, legal[to])
			}
		}
		// Self, empty and unknown targets are always rejected.
		if from.CanTransitionTo(from) {
			t.Fatalf("%s -> %s self transition allowed", from, from)
		}
		if from.CanTransitionTo("") || from.CanTransitionTo("limbo") {
			t.Fatalf("%s accepts an unknown target", from)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	if !StatusPending.IsActive() || !StatusConfirmed.IsActive() {
		t.Fatal("pending and confirmed are active")
	}
	if StatusCancelled.IsActive() || StatusCompleted.IsActive() {
		t.Fatal("terminal statuses are not active")
	}
	if !StatusCancelled.IsTerminal() || !StatusCompleted.IsTerminal() {
		t.Fatal("cancelled and completed are terminal")
	}
	if StatusPending.OccupiesPlot() {
		t.Fatal("pending never occupies a plot")
	}
	if !StatusConfirmed.OccupiesPlot() {
		t.Fatal("confirmed occupies a plot")
	}
	if ReservationStatus("limbo").Valid() {
		t.Fatal("unknown status must not be valid")
	}
}
