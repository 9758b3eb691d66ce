package core

import (
	"context"
	"fmt"

	"gardencore/pkg/domain"
)

// NewGardenerQuotaRule returns the in-transaction rule capping the number of
// active reservations a gardener may hold at once. Cancelled and completed
// reservations never count toward the quota.
func NewGardenerQuotaRule(quota int) Rule {
	if quota <= 0 {
		quota = DefaultGardenerQuota
	}
	return gardenerQuotaRule{quota: quota}
}

type gardenerQuotaRule struct {
	quota int
}

func (gardenerQuotaRule) Name() string { return "gardener_quota" }

func (r gardenerQuotaRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	active := make(map[string]int)
	for _, reservation := range view.ListReservations() {
		if reservation.IsActive() {
			active[reservation.GardenerID]++
		}
	}

	res := Result{}
	for _, gardener := range view.ListGardeners() {
		count := active[gardener.ID]
		if count > r.quota {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "gardener_quota",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("gardener %s (%s) over quota: %d/%d active reservations", gardener.Name, gardener.ID, count, r.quota),
				Entity:   EntityGardener,
				EntityID: gardener.ID,
			})
		}
	}
	return res, nil
}
