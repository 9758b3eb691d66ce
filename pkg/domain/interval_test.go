package domain

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func iv(t *testing.T, start, end time.Time) Interval {
	t.Helper()
	interval, err := NewInterval(start, end)
	if err != nil {
		t.Fatalf("new interval: %v", err)
	}
	return interval
}

func TestNewIntervalValidation(t *testing.T) {
	if _, err := NewInterval(time.Time{}, date(2026, time.April, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("zero start must fail, got %v", err)
	}
	if _, err := NewInterval(date(2026, time.April, 1), time.Time{}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("zero end must fail, got %v", err)
	}
	if _, err := NewInterval(date(2026, time.April, 10), date(2026, time.April, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("inverted range must fail, got %v", err)
	}
	single, err := NewInterval(date(2026, time.April, 1), date(2026, time.April, 1))
	if err != nil {
		t.Fatalf("single day interval: %v", err)
	}
	if single.LengthDays() != 1 {
		t.Fatalf("single day length = %d", single.LengthDays())
	}
}

func TestNewIntervalNormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("east", 3*3600)
	start := time.Date(2026, time.April, 1, 17, 45, 3, 0, loc)
	interval, err := NewInterval(start, start.Add(48*time.Hour))
	if err != nil {
		t.Fatalf("new interval: %v", err)
	}
	if got := interval.Start; !got.Equal(date(2026, time.April, 1)) {
		t.Fatalf("start not truncated to UTC midnight: %v", got)
	}
	if interval.Start.Location() != time.UTC {
		t.Fatalf("start not in UTC: %v", interval.Start.Location())
	}
}

func TestOverlapsSymmetryAndSelf(t *testing.T) {
	a := iv(t, date(2026, time.April, 1), date(2026, time.April, 10))
	cases := []Interval{
		iv(t, date(2026, time.April, 5), date(2026, time.April, 15)),  // partial
		iv(t, date(2026, time.April, 10), date(2026, time.April, 20)), // touching endpoint
		iv(t, date(2026, time.March, 1), date(2026, time.May, 1)),     // containing
		iv(t, date(2026, time.April, 11), date(2026, time.April, 20)), // disjoint
	}
	for _, b := range cases {
		if a.Overlaps(b) != b.Overlaps(a) {
			t.Fatalf("overlap not symmetric for %s vs %s", a, b)
		}
	}
	if !a.Overlaps(a) {
		t.Fatal("interval must overlap itself")
	}
	if !a.Overlaps(cases[1]) {
		t.Fatal("shared endpoint day must overlap (inclusive bounds)")
	}
	if a.Overlaps(cases[3]) {
		t.Fatal("disjoint intervals must not overlap")
	}
	if a.Overlaps(Interval{}) || (Interval{}).Overlaps(a) {
		t.Fatal("zero interval overlaps nothing")
	}
}

func TestContainsImpliesLongerOrEqual(t *testing.T) {
	a := iv(t, date(2026, time.April, 1), date(2026, time.April, 30))
	inner := iv(t, date(2026, time.April, 10), date(2026, time.April, 20))
	straddling := iv(t, date(2026, time.March, 20), date(2026, time.April, 10))

	if !a.Contains(a) {
		t.Fatal("interval must contain itself")
	}
	if !a.Contains(inner) {
		t.Fatal("expected containment of inner interval")
	}
	if a.LengthDays() < inner.LengthDays() {
		t.Fatal("container shorter than contained interval")
	}
	if a.Contains(straddling) {
		t.Fatal("straddling interval must not be contained")
	}
}

func TestContainsDay(t *testing.T) {
	a := iv(t, date(2026, time.April, 1), date(2026, time.April, 10))
	if !a.ContainsDay(date(2026, time.April, 1)) || !a.ContainsDay(date(2026, time.April, 10)) {
		t.Fatal("both endpoints are inside the closed range")
	}
	// Any moment during an endpoint day counts.
	if !a.ContainsDay(time.Date(2026, time.April, 10, 23, 30, 0, 0, time.UTC)) {
		t.Fatal("late hour of last day should be contained")
	}
	if a.ContainsDay(date(2026, time.April, 11)) {
		t.Fatal("day after end must not be contained")
	}
}

func TestLengthDaysInclusive(t *testing.T) {
	a := iv(t, date(2026, time.April, 1), date(2026, time.April, 30))
	if a.LengthDays() != 30 {
		t.Fatalf("April 1..30 = %d days", a.LengthDays())
	}
}

func TestClockRelativePredicates(t *testing.T) {
	a := iv(t, date(2026, time.April, 1), date(2026, time.April, 10))

	if !a.IsFuture(date(2026, time.March, 1)) || a.IsPast(date(2026, time.March, 1)) {
		t.Fatal("interval should be future in March")
	}
	if !a.IsCurrentlyActive(date(2026, time.April, 5)) {
		t.Fatal("interval should be active mid-range")
	}
	if !a.IsPast(date(2026, time.May, 1)) || a.IsFuture(date(2026, time.May, 1)) {
		t.Fatal("interval should be past in May")
	}
	if a.IsCurrentlyActive(date(2026, time.May, 1)) {
		t.Fatal("interval should not be active after end")
	}
}
