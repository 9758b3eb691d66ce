package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewCropValidation(t *testing.T) {
	if _, err := NewCrop("   ", 10, nil, ""); !errors.Is(err, ErrInvalidCrop) {
		t.Fatalf("blank name must fail, got %v", err)
	}
	if _, err := NewCrop("basil", -1, nil, ""); !errors.Is(err, ErrInvalidCrop) {
		t.Fatalf("negative growing days must fail, got %v", err)
	}
	crop, err := NewCrop("  Basil ", 20, []Season{SeasonSummer, SeasonSpring, SeasonSummer}, " aromatic ")
	if err != nil {
		t.Fatalf("new crop: %v", err)
	}
	if crop.Name != "Basil" {
		t.Fatalf("name not trimmed: %q", crop.Name)
	}
	if len(crop.Seasons) != 2 || crop.Seasons[0] != SeasonSpring || crop.Seasons[1] != SeasonSummer {
		t.Fatalf("seasons not deduplicated and sorted: %v", crop.Seasons)
	}
	if crop.Description != "aromatic" {
		t.Fatalf("description not trimmed: %q", crop.Description)
	}
}

func TestCropIdentityIsCaseInsensitiveName(t *testing.T) {
	a, _ := NewCrop("Basil", 20, []Season{SeasonSummer}, "")
	b, _ := NewCrop("BASIL", 90, []Season{SeasonWinter}, "different everything")
	c, _ := NewCrop("Mint", 20, []Season{SeasonSummer}, "")

	if !a.Same(b) {
		t.Fatal("crops differing only by name case are the same crop")
	}
	if a.Same(c) {
		t.Fatal("different names are different crops")
	}
	if a.Key() != "basil" || CropKey("  BaSiL ") != "basil" {
		t.Fatalf("unexpected keys: %q %q", a.Key(), CropKey("  BaSiL "))
	}
}

func TestCanGrowIn(t *testing.T) {
	crop, _ := NewCrop("Pumpkin", 90, []Season{SeasonFall}, "")
	long := iv(t, date(2026, time.April, 1), date(2026, time.June, 29))   // 90 days
	short := iv(t, date(2026, time.April, 1), date(2026, time.April, 30)) // 30 days

	if !crop.CanGrowIn(long) {
		t.Fatalf("90 day interval (len %d) should fit a 90 day crop", long.LengthDays())
	}
	if crop.CanGrowIn(short) {
		t.Fatal("30 day interval cannot fit a 90 day crop")
	}
	if crop.CanGrowIn(Interval{}) {
		t.Fatal("zero interval fits nothing")
	}
}

func TestGrowsBestIn(t *testing.T) {
	crop, _ := NewCrop("Kale", 40, []Season{SeasonFall, SeasonWinter}, "")
	if !crop.GrowsBestIn(SeasonWinter) {
		t.Fatal("expected winter preference")
	}
	if crop.GrowsBestIn(SeasonSummer) {
		t.Fatal("summer is not preferred")
	}
}
