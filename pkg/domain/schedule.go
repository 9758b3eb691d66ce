package domain

import "time"

// PlotSchedule pairs a plot with the reservations referencing it and answers
// availability and conflict queries over intervals. Schedules are assembled by
// the store from committed (or in-transaction) state; they hold copies and are
// safe to keep across calls, but they do not observe later mutations.
type PlotSchedule struct {
	Plot         Plot
	Reservations []Reservation
}

// IsAvailable reports whether the plot is free for the whole interval. Only
// occupying (confirmed) reservations block; pending and terminal reservations
// never do. The zero interval is simply unavailable, not an error.
func (s PlotSchedule) IsAvailable(iv Interval) bool {
	if iv.IsZero() {
		return false
	}
	for _, r := range s.Reservations {
		if r.ConflictsWith(iv) {
			return false
		}
	}
	return true
}

// ConflictingReservations returns the occupying reservations whose intervals
// overlap the query interval.
func (s PlotSchedule) ConflictingReservations(iv Interval) []Reservation {
	if iv.IsZero() {
		return nil
	}
	var conflicts []Reservation
	for _, r := range s.Reservations {
		if r.ConflictsWith(iv) {
			conflicts = append(conflicts, r)
		}
	}
	return conflicts
}

// ActiveReservations returns the pending and confirmed reservations.
func (s PlotSchedule) ActiveReservations() []Reservation {
	var active []Reservation
	for _, r := range s.Reservations {
		if r.IsActive() {
			active = append(active, r)
		}
	}
	return active
}

// IsCurrentlyOccupied reports whether an occupying reservation's interval
// contains the given day.
func (s PlotSchedule) IsCurrentlyOccupied(now time.Time) bool {
	for _, r := range s.Reservations {
		if r.IsCurrentlyActive(now) {
			return true
		}
	}
	return false
}

// CurrentOccupantID returns the gardener holding the plot today, derived from
// the confirmed reservation whose interval is active now. Occupancy is never
// stored; it is always computed from reservation state.
func (s PlotSchedule) CurrentOccupantID(now time.Time) (string, bool) {
	for _, r := range s.Reservations {
		if r.IsCurrentlyActive(now) {
			return r.GardenerID, true
		}
	}
	return "", false
}
