package core

import (
	"fmt"
	"strings"
)

// ErrNotFound is returned when reference validation fails within transactional helpers.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// QuotaExceededError is returned when a gardener already holds the maximum
// number of active reservations.
type QuotaExceededError struct {
	GardenerID string
	Active     int
	Quota      int
}

func (e QuotaExceededError) Error() string {
	return fmt.Sprintf("gardener %s has %d active reservations, quota is %d", e.GardenerID, e.Active, e.Quota)
}

// PlotUnavailableError is returned when a confirmed reservation already
// occupies the requested plot for an overlapping date range.
type PlotUnavailableError struct {
	PlotID      string
	Interval    Interval
	ConflictIDs []string
}

func (e PlotUnavailableError) Error() string {
	if len(e.ConflictIDs) == 0 {
		return fmt.Sprintf("plot %s is not available for %s", e.PlotID, e.Interval)
	}
	return fmt.Sprintf("plot %s is not available for %s (conflicts: %s)", e.PlotID, e.Interval, strings.Join(e.ConflictIDs, ", "))
}

// CropNotAllowedError is returned when a reservation proposes a crop the plot
// does not permit.
type CropNotAllowedError struct {
	PlotID string
	Crop   string
}

func (e CropNotAllowedError) Error() string {
	return fmt.Sprintf("crop %q is not allowed on plot %s", e.Crop, e.PlotID)
}
