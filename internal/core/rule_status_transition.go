package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// NewStatusTransitionRule returns the in-transaction rule enforcing the
// reservation status machine. Creation is only legal in pending; updates must
// follow the transition table, and unknown status values always block.
func NewStatusTransitionRule() Rule {
	return statusTransitionRule{}
}

type statusTransitionRule struct{}

func (statusTransitionRule) Name() string { return "status_transition" }

func (statusTransitionRule) Evaluate(_ context.Context, _ RuleView, changes []Change) (Result, error) {
	res := Result{}
	for _, change := range changes {
		if change.Entity != EntityReservation {
			continue
		}
		after, ok := reservationFromPayload(change.After)
		if !ok {
			continue
		}

		if !after.Status.Valid() {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "status_transition",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("reservation %s has unknown status %q", after.ID, after.Status),
				Entity:   EntityReservation,
				EntityID: after.ID,
			})
			continue
		}

		switch change.Action {
		case ActionCreate:
			if after.Status != StatusPending {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "status_transition",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("reservation %s created in status %s, must start pending", after.ID, after.Status),
					Entity:   EntityReservation,
					EntityID: after.ID,
				})
			}
		case ActionUpdate:
			before, ok := reservationFromPayload(change.Before)
			if !ok || before.Status == after.Status {
				continue
			}
			if !before.Status.CanTransitionTo(after.Status) {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "status_transition",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("reservation %s cannot move from %s to %s", after.ID, before.Status, after.Status),
					Entity:   EntityReservation,
					EntityID: after.ID,
				})
			}
		}
	}
	return res, nil
}
