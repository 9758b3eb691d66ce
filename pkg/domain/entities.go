package domain

import (
	"sort"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPlot identifies a garden plot record.
	EntityPlot EntityType = "plot"
	// EntityGardener identifies a gardener record.
	EntityGardener EntityType = "gardener"
	// EntityReservation identifies a reservation record.
	EntityReservation EntityType = "reservation"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Plot represents an exclusive, reservable patch of ground. AllowedCrops is a
// lower-cased set of crop names; an empty set means every crop is allowed —
// that convention is load-bearing, not an oversight. ReservationIDs is derived
// by the store from the reservations referencing this plot; plots never hold
// reservation objects directly.
type Plot struct {
	Base
	Name           string   `json:"name"`
	SizeSqMeters   float64  `json:"size_sq_meters"`
	Location       string   `json:"location,omitempty"`
	AllowedCrops   []string `json:"allowed_crops,omitempty"`
	ReservationIDs []string `json:"reservation_ids"`
}

// AllowsCrop reports whether a crop by name may be planted on the plot.
// An empty restriction set allows everything; otherwise membership is
// case-insensitive.
func (p Plot) AllowsCrop(name string) bool {
	key := CropKey(name)
	if key == "" {
		return false
	}
	if len(p.AllowedCrops) == 0 {
		return true
	}
	for _, allowed := range p.AllowedCrops {
		if allowed == key {
			return true
		}
	}
	return false
}

// Allows reports whether the crop may be planted on the plot.
func (p Plot) Allows(c Crop) bool {
	return p.AllowsCrop(c.Name)
}

// AllowCrop adds a crop name to the plot's restriction set.
func (p *Plot) AllowCrop(name string) {
	key := CropKey(name)
	if key == "" {
		return
	}
	for _, existing := range p.AllowedCrops {
		if existing == key {
			return
		}
	}
	p.AllowedCrops = append(p.AllowedCrops, key)
	sort.Strings(p.AllowedCrops)
}

// DisallowCrop removes a crop name from the restriction set.
func (p *Plot) DisallowCrop(name string) {
	key := CropKey(name)
	for i, existing := range p.AllowedCrops {
		if existing == key {
			p.AllowedCrops = append(p.AllowedCrops[:i], p.AllowedCrops[i+1:]...)
			return
		}
	}
}

// ClearCropRestrictions empties the restriction set, allowing all crops.
func (p *Plot) ClearCropRestrictions() {
	p.AllowedCrops = nil
}

// Gardener represents an actor who can hold reservations, subject to the
// booking quota. ReservationIDs is derived by the store, mirroring Plot.
type Gardener struct {
	Base
	Name           string   `json:"name"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	ReservationIDs []string `json:"reservation_ids"`
}

// Reservation binds one plot, one gardener and one interval, and walks the
// status state machine. Plot, gardener and interval are fixed at creation;
// only the status and the planting plan change afterwards.
type Reservation struct {
	Base
	PlotID       string            `json:"plot_id"`
	GardenerID   string            `json:"gardener_id"`
	Interval     Interval          `json:"interval"`
	PlantingPlan []Crop            `json:"planting_plan,omitempty"`
	Status       ReservationStatus `json:"status"`
}

// IsActive reports whether the reservation is pending or confirmed.
func (r Reservation) IsActive() bool { return r.Status.IsActive() }

// IsTerminal reports whether the reservation is cancelled or completed.
func (r Reservation) IsTerminal() bool { return r.Status.IsTerminal() }

// OccupiesPlot reports whether the reservation currently blocks its plot.
func (r Reservation) OccupiesPlot() bool { return r.Status.OccupiesPlot() }

// ConflictsWith reports whether the reservation blocks the given interval.
// Only occupying (confirmed) reservations ever conflict.
func (r Reservation) ConflictsWith(iv Interval) bool {
	return r.OccupiesPlot() && r.Interval.Overlaps(iv)
}

// IsCurrentlyActive reports whether the reservation occupies its plot today.
func (r Reservation) IsCurrentlyActive(now time.Time) bool {
	return r.OccupiesPlot() && r.Interval.IsCurrentlyActive(now)
}

// AddCrop appends a crop to the planting plan, deduplicating by crop identity.
// The plan may be changed at any status; no validation happens here.
func (r *Reservation) AddCrop(c Crop) {
	for _, existing := range r.PlantingPlan {
		if existing.Same(c) {
			return
		}
	}
	r.PlantingPlan = append(r.PlantingPlan, c)
}

// RemoveCrop drops a crop from the planting plan by identity.
func (r *Reservation) RemoveCrop(c Crop) {
	for i, existing := range r.PlantingPlan {
		if existing.Same(c) {
			r.PlantingPlan = append(r.PlantingPlan[:i], r.PlantingPlan[i+1:]...)
			return
		}
	}
}

// ClearPlantingPlan empties the planting plan.
func (r *Reservation) ClearPlantingPlan() {
	r.PlantingPlan = nil
}

// CropsAllowedOn reports whether every crop in the planting plan passes the
// plot's restriction set. Pure; never invoked by a status transition.
func (r Reservation) CropsAllowedOn(p Plot) bool {
	for _, c := range r.PlantingPlan {
		if !p.Allows(c) {
			return false
		}
	}
	return true
}

// GrowingPeriodSufficient reports whether the reservation interval is long
// enough for every crop in the planting plan. Pure; never invoked by a
// status transition.
func (r Reservation) GrowingPeriodSufficient() bool {
	for _, c := range r.PlantingPlan {
		if !c.CanGrowIn(r.Interval) {
			return false
		}
	}
	return true
}

// NormalizeCropNames lower-cases, trims and deduplicates a list of crop names,
// dropping empties. Used when seeding plot restrictions.
func NormalizeCropNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var out []string
	for _, name := range names {
		key := CropKey(name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// TrimID normalises an entity identifier.
func TrimID(id string) string { return strings.TrimSpace(id) }

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
