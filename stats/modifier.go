package stats

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// SourceKind classifies what created a modifier.
type SourceKind uint8

const (
	SourcePhysiology SourceKind = iota
	SourceWeather
	SourceSeason
	SourceAgePhase
	SourceParasite
	SourceInjury
	SourceEvent
	SourceLineage
)

// String returns the source kind name.
func (s SourceKind) String() string {
	switch s {
	case SourcePhysiology:
		return "physiology"
	case SourceWeather:
		return "weather"
	case SourceSeason:
		return "season"
	case SourceAgePhase:
		return "age_phase"
	case SourceParasite:
		return "parasite"
	case SourceInjury:
		return "injury"
	case SourceEvent:
		return "event"
	case SourceLineage:
		return "lineage"
	default:
		return "unknown"
	}
}

// Modifier is a sourced adjustment to one statistic.
// A modifier with Timed == false is permanent.
type Modifier struct {
	ID        uuid.UUID
	Source    string // Human-readable label
	Kind      SourceKind
	SourceID  string // Tag used for bulk removal
	Stat      Key
	Amount    float64
	Timed     bool
	Remaining int // Turns left, only meaningful when Timed
}

// modifierNamespace seeds name-based modifier ids.
var modifierNamespace = uuid.MustParse("8f1f5c0e-53a1-4c57-9a43-2d7e6b0f7a11")

// Permanent creates a modifier with no duration.
func Permanent(kind SourceKind, sourceID, label string, stat Key, amount float64) Modifier {
	return Modifier{
		Source:   label,
		Kind:     kind,
		SourceID: sourceID,
		Stat:     stat,
		Amount:   amount,
	}
}

// Timed creates a modifier that expires after turns ticks.
func Timed(kind SourceKind, sourceID, label string, stat Key, amount float64, turns int) Modifier {
	return Modifier{
		Source:    label,
		Kind:      kind,
		SourceID:  sourceID,
		Stat:      stat,
		Amount:    amount,
		Timed:     true,
		Remaining: turns,
	}
}

// Permanent reports whether the modifier never expires.
func (m Modifier) Permanent() bool {
	return !m.Timed
}

// mustValid panics on modifiers that would corrupt replay.
func mustValid(m Modifier) {
	if int(m.Stat) >= NumKeys {
		panic(fmt.Sprintf("stats: modifier %q targets unknown stat %d", m.SourceID, m.Stat))
	}
	if math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0) {
		panic(fmt.Sprintf("stats: modifier %q has non-finite amount", m.SourceID))
	}
	if m.Timed && m.Remaining <= 0 {
		panic(fmt.Sprintf("stats: timed modifier %q has non-positive duration %d", m.SourceID, m.Remaining))
	}
}

func deriveID(sourceID string, seq uint64) uuid.UUID {
	return uuid.NewSHA1(modifierNamespace, []byte(fmt.Sprintf("%s:%d", sourceID, seq)))
}
