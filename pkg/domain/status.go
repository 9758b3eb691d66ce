package domain

import "fmt"

// ReservationStatus represents a reservation's position in its lifecycle.
type ReservationStatus string

// Canonical reservation statuses. A reservation starts pending and only ever
// moves forward; cancelled and completed are terminal.
const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: nil,
	StatusCompleted: nil,
}

// Valid reports whether the status is one of the canonical values.
func (s ReservationStatus) Valid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving to target is legal. Self-transitions
// and unknown targets are always rejected; terminal statuses allow nothing.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	if target == "" || target == s {
		return false
	}
	for _, allowed := range reservationTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts against a gardener's quota.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether the status ends the lifecycle.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// OccupiesPlot reports whether a reservation in this status blocks its plot.
// Only confirmed reservations occupy; pending and terminal ones never do.
func (s ReservationStatus) OccupiesPlot() bool {
	return s == StatusConfirmed
}

// TransitionError reports an illegal status transition. The reservation's
// status is left unchanged when this error is returned.
type TransitionError struct {
	ReservationID string
	From          ReservationStatus
	To            ReservationStatus
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("reservation %s: cannot transition from %s to %s", e.ReservationID, e.From, e.To)
}
