// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by gardencore.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Reservation intervals are whole days; endpoints are normalised to UTC midnight.
const dayLayout = "2006-01-02"

// ErrInvalidRange is returned when an interval is constructed with a missing
// endpoint or with start after end.
var ErrInvalidRange = errors.New("invalid date range")

// Interval is a closed, inclusive day range. Both endpoints are part of the
// range, so a one-day interval has Start == End. Intervals are immutable values
// comparable with ==.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval validates and constructs an Interval. Both endpoints are
// required; start must not be after end. Endpoints are truncated to UTC
// midnight so two intervals covering the same days always compare equal.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, fmt.Errorf("%w: both endpoints are required", ErrInvalidRange)
	}
	start = Day(start)
	end = Day(end)
	if start.After(end) {
		return Interval{}, fmt.Errorf("%w: start %s after end %s", ErrInvalidRange, start.Format(dayLayout), end.Format(dayLayout))
	}
	return Interval{Start: start, End: end}, nil
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the interval is the uninitialised value.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Overlaps reports whether the two ranges share at least one day. Ranges that
// touch on a shared day overlap; adjacent ranges that share no day do not.
func (iv Interval) Overlaps(other Interval) bool {
	if iv.IsZero() || other.IsZero() {
		return false
	}
	return !iv.End.Before(other.Start) && !iv.Start.After(other.End)
}

// ContainsDay reports whether the given day falls inside the range, inclusive
// of both endpoints.
func (iv Interval) ContainsDay(t time.Time) bool {
	if iv.IsZero() || t.IsZero() {
		return false
	}
	d := Day(t)
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Contains reports whether other lies entirely inside this range, inclusive.
// Every interval contains itself.
func (iv Interval) Contains(other Interval) bool {
	if iv.IsZero() || other.IsZero() {
		return false
	}
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// LengthDays returns the inclusive day count of the range. A one-day interval
// has length 1.
func (iv Interval) LengthDays() int {
	if iv.IsZero() {
		return 0
	}
	return int(iv.End.Sub(iv.Start)/(24*time.Hour)) + 1
}

// IsPast reports whether the range ended before the given day.
func (iv Interval) IsPast(now time.Time) bool {
	return !iv.IsZero() && iv.End.Before(Day(now))
}

// IsFuture reports whether the range starts after the given day.
func (iv Interval) IsFuture(now time.Time) bool {
	return !iv.IsZero() && iv.Start.After(Day(now))
}

// IsCurrentlyActive reports whether the given day falls inside the range.
func (iv Interval) IsCurrentlyActive(now time.Time) bool {
	return iv.ContainsDay(now)
}

func (iv Interval) String() string {
	if iv.IsZero() {
		return "unset"
	}
	return iv.Start.Format(dayLayout) + " to " + iv.End.Format(dayLayout)
}
