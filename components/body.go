package components

import (
	"maps"
	"slices"
)

// Capability is a bodily function that can be impaired.
type Capability uint8

const (
	Locomotion Capability = iota
	Digestion
)

// FullCapability is the reading for an unimpaired capability.
const FullCapability = 100.0

// Severity grades an injury.
type Severity uint8

const (
	Minor Severity = iota
	Moderate
	Severe
	Critical
)

// Weight returns the immune-load weight of an injury of this severity.
func (s Severity) Weight() float64 {
	switch s {
	case Minor:
		return 0.5
	case Moderate:
		return 1.0
	case Severe:
		return 1.75
	case Critical:
		return 2.5
	default:
		return 1.0
	}
}

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case Minor:
		return "minor"
	case Moderate:
		return "moderate"
	case Severe:
		return "severe"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Wound is an injury that heals over time.
type Wound struct {
	ID        string
	Severity  Severity
	Infected  bool
	TurnsLeft int // Zero means it does not heal on its own
}

// Parasite is an active infestation.
type Parasite struct {
	ID    string
	Name  string
	Stage int // Progression stage, 1 upward
}

// Body holds the physical condition that feeds thermoregulation and immunity.
type Body struct {
	Capabilities map[Capability]float64 // Missing entries read as FullCapability
	Integument   []float64              // Damage 0-100 per body region
	Wounds       []Wound
	Parasites    []Parasite
}

// Capability returns the reading for c, defaulting to FullCapability.
func (b Body) Capability(c Capability) float64 {
	v, ok := b.Capabilities[c]
	if !ok {
		return FullCapability
	}
	return clamp(v, 0, FullCapability)
}

// AverageIntegumentDamage returns mean damage across regions, zero when none are tracked.
func (b Body) AverageIntegumentDamage() float64 {
	if len(b.Integument) == 0 {
		return 0
	}
	var sum float64
	for _, d := range b.Integument {
		sum += clamp(d, 0, 100)
	}
	return sum / float64(len(b.Integument))
}

// Clone returns a deep copy so callers can modify the result freely.
func (b Body) Clone() Body {
	return Body{
		Capabilities: maps.Clone(b.Capabilities),
		Integument:   slices.Clone(b.Integument),
		Wounds:       slices.Clone(b.Wounds),
		Parasites:    slices.Clone(b.Parasites),
	}
}

// TickWounds returns a copy with healing wounds advanced by one turn.
// Wounds whose counter reaches zero are removed.
func (b Body) TickWounds() Body {
	out := b.Clone()
	out.Wounds = out.Wounds[:0]
	for _, w := range b.Wounds {
		if w.TurnsLeft > 0 {
			w.TurnsLeft--
			if w.TurnsLeft == 0 {
				continue
			}
		}
		out.Wounds = append(out.Wounds, w)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
