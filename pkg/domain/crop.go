package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Season identifies a growing season a crop prefers.
type Season string

// Canonical growing seasons.
const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// ErrInvalidCrop is returned when a crop is constructed with an empty name or
// a negative growing period.
var ErrInvalidCrop = errors.New("invalid crop")

// Crop is an immutable value object describing something that can be planted.
// Identity is the lower-cased name: two crops whose names differ only by case
// are the same crop.
type Crop struct {
	Name           string   `json:"name"`
	MinGrowingDays int      `json:"min_growing_days"`
	Seasons        []Season `json:"seasons,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// NewCrop validates and constructs a Crop. The name is required (trimmed);
// minGrowingDays must not be negative. The season list is deduplicated and
// sorted so equal crops serialise identically.
func NewCrop(name string, minGrowingDays int, seasons []Season, description string) (Crop, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Crop{}, fmt.Errorf("%w: name is required", ErrInvalidCrop)
	}
	if minGrowingDays < 0 {
		return Crop{}, fmt.Errorf("%w: minimum growing days cannot be negative", ErrInvalidCrop)
	}
	seen := make(map[Season]struct{}, len(seasons))
	var dedup []Season
	for _, s := range seasons {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dedup = append(dedup, s)
	}
	sort.Slice(dedup, func(i, j int) bool { return dedup[i] < dedup[j] })
	return Crop{
		Name:           name,
		MinGrowingDays: minGrowingDays,
		Seasons:        dedup,
		Description:    strings.TrimSpace(description),
	}, nil
}

// Key returns the crop's case-insensitive identity.
func (c Crop) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// Same reports whether two crops denote the same entity, by identity only.
func (c Crop) Same(other Crop) bool {
	return c.Key() == other.Key()
}

// CanGrowIn reports whether the interval is long enough for the crop to reach
// maturity.
func (c Crop) CanGrowIn(iv Interval) bool {
	if iv.IsZero() {
		return false
	}
	return iv.LengthDays() >= c.MinGrowingDays
}

// GrowsBestIn reports whether the season is among the crop's preferred ones.
func (c Crop) GrowsBestIn(season Season) bool {
	for _, s := range c.Seasons {
		if s == season {
			return true
		}
	}
	return false
}

func (c Crop) String() string { return c.Name }

// CropKey normalises a crop name to its case-insensitive identity.
func CropKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
