// Package components defines the plain value types shared by the
// simulation subsystems: calendar time, seasons, age phases and body state.
package components

import "fmt"

// Season of the year.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter

	NumSeasons = 4
)

// AllSeasons lists seasons in calendar order.
var AllSeasons = [NumSeasons]Season{Spring, Summer, Autumn, Winter}

// String returns the lowercase season name.
func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	case Winter:
		return "winter"
	default:
		return "unknown"
	}
}

// ParseSeason resolves a season name.
func ParseSeason(name string) (Season, error) {
	for _, s := range AllSeasons {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", name)
}

// SeasonForMonth maps a zero-based month to a northern-hemisphere season.
func SeasonForMonth(month int) Season {
	switch ((month % 12) + 12) % 12 {
	case 2, 3, 4:
		return Spring
	case 5, 6, 7:
		return Summer
	case 8, 9, 10:
		return Autumn
	default:
		return Winter
	}
}

// Time is the calendar position of a turn.
type Time struct {
	Turn        int // Turns elapsed since the run started
	Year        int
	Month       int // 0-11
	WeekOfMonth int // 0..turnsPerMonth-1
}

// Season returns the season of the current month.
func (t Time) Season() Season {
	return SeasonForMonth(t.Month)
}

// Advance returns the time one turn later.
func (t Time) Advance(turnsPerMonth int) Time {
	if turnsPerMonth < 1 {
		turnsPerMonth = 1
	}
	t.Turn++
	t.WeekOfMonth++
	if t.WeekOfMonth >= turnsPerMonth {
		t.WeekOfMonth = 0
		t.Month++
		if t.Month >= 12 {
			t.Month = 0
			t.Year++
		}
	}
	return t
}

// AgePhase is a life stage.
type AgePhase uint8

const (
	Juvenile AgePhase = iota
	Adult
	Elder
)

// String returns the phase name.
func (p AgePhase) String() string {
	switch p {
	case Juvenile:
		return "juvenile"
	case Adult:
		return "adult"
	case Elder:
		return "elder"
	default:
		return "unknown"
	}
}

// ParseAgePhase resolves a phase name.
func ParseAgePhase(name string) (AgePhase, error) {
	for _, p := range []AgePhase{Juvenile, Adult, Elder} {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown age phase %q", name)
}

// Sex of the subject.
type Sex uint8

const (
	Female Sex = iota
	Male
)

// String returns the sex name.
func (s Sex) String() string {
	if s == Male {
		return "male"
	}
	return "female"
}

// Effort is the foraging behavior setting chosen by the player.
type Effort uint8

const (
	EffortNormal Effort = iota
	EffortRest
	EffortIntense
)

// Factor returns the foraging-effort multiplier for the setting.
func (e Effort) Factor() float64 {
	switch e {
	case EffortRest:
		return 0.5
	case EffortIntense:
		return 1.4
	default:
		return 1.0
	}
}

// String returns the effort name.
func (e Effort) String() string {
	switch e {
	case EffortRest:
		return "rest"
	case EffortIntense:
		return "intense"
	default:
		return "normal"
	}
}
