// Package weather implements the per-turn weather process: a weighted
// categorical draw over climate-compatible weather types, held for several
// turns with drifting wind, plus the penalties and event multipliers that
// each weather state implies.
package weather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownType is returned when a name cannot be resolved to a weather type.
var ErrUnknownType = errors.New("unknown weather type")

// ErrDuplicateType is returned when two names in one table resolve to the same type.
var ErrDuplicateType = errors.New("duplicate weather type")

// Type is a weather category.
type Type uint8

const (
	Sunny Type = iota
	Clear
	Cloudy
	Rain
	HeavyRain
	Storm
	Snow
	Blizzard
	Windy
	Heatwave

	NumTypes = 10
)

// AllTypes lists every weather type in declaration order.
var AllTypes = [NumTypes]Type{Sunny, Clear, Cloudy, Rain, HeavyRain, Storm, Snow, Blizzard, Windy, Heatwave}

var typeNames = [NumTypes]string{
	"sunny", "clear", "cloudy", "rain", "heavy_rain",
	"storm", "snow", "blizzard", "windy", "heatwave",
}

// String returns the config name of the type.
func (t Type) String() string {
	if int(t) < NumTypes {
		return typeNames[t]
	}
	return "unknown"
}

// ParseType resolves a weather name. Spaces and dashes are treated as
// underscores and small typos are tolerated.
func ParseType(raw string) (Type, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownType)
	}
	for _, t := range AllTypes {
		if typeNames[t] == s {
			return t, nil
		}
	}

	best, bestDist, tied := Type(0), -1, false
	for _, t := range AllTypes {
		name := typeNames[t]
		dist := levenshtein.ComputeDistance(s, name)
		if dist > typoLimit(len(name)) {
			continue
		}
		switch {
		case bestDist < 0 || dist < bestDist:
			best, bestDist, tied = t, dist, false
		case dist == bestDist:
			tied = true
		}
	}
	if bestDist < 0 || tied {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, raw)
	}
	return best, nil
}

func typoLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Direction is an 8-point compass heading.
type Direction uint8

const (
	North Direction = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest

	NumDirections = 8
)

var directionNames = [NumDirections]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// String returns the compass abbreviation.
func (d Direction) String() string {
	if int(d) < NumDirections {
		return directionNames[d]
	}
	return "?"
}

// Rotate turns the heading by the given number of compass steps.
func (d Direction) Rotate(steps int) Direction {
	return Direction(((int(d)+steps)%NumDirections + NumDirections) % NumDirections)
}

// Category is a class of event whose likelihood weather modulates.
type Category uint8

const (
	Predation Category = iota
	Foraging
	Injury
	Parasitism
	Mating

	NumCategories = 5
)

var categoryNames = [NumCategories]string{"predation", "foraging", "injury", "parasite", "mating"}

// String returns the config name of the category.
func (c Category) String() string {
	if int(c) < NumCategories {
		return categoryNames[c]
	}
	return "unknown"
}

// ParseCategory resolves an event category name.
func ParseCategory(raw string) (Category, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for i, name := range categoryNames {
		if name == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event category %q", raw)
}

// State is the weather in effect for a turn.
type State struct {
	Type            Type
	Description     string
	PersistenceLeft int     // Turns including the current one
	Intensity       float64 // 0-1
	WindDirection   Direction
	WindSpeed       float64 // 0-100
}
