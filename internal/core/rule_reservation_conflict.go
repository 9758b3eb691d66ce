package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// NewReservationConflictRule returns the in-transaction rule enforcing
// interval exclusivity. A reservation entering confirmed must not overlap any
// other confirmed reservation on the same plot. Pending reservations never
// block one another.
func NewReservationConflictRule() Rule {
	return reservationConflictRule{}
}

type reservationConflictRule struct{}

func (reservationConflictRule) Name() string { return "reservation_conflict" }

func (reservationConflictRule) Evaluate(_ context.Context, view RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityReservation {
			continue
		}
		after, ok := reservationFromPayload(change.After)
		if !ok || !after.OccupiesPlot() {
			continue
		}
		for _, other := range view.ListReservations() {
			if other.ID == after.ID || other.PlotID != after.PlotID {
				continue
			}
			if other.OccupiesPlot() && other.ConflictsWith(after.Interval) {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "reservation_conflict",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("reservation %s overlaps confirmed reservation %s on plot %s", after.ID, other.ID, after.PlotID),
					Entity:   EntityReservation,
					EntityID: after.ID,
				})
			}
		}
	}
	return res, nil
}
