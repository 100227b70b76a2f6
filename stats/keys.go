// Package stats implements the stat ledger: nine bounded statistics, each a
// permanent base plus a list of sourced, optionally time-limited modifiers.
package stats

// Key identifies one of the nine statistics.
type Key uint8

const (
	Health Key = iota
	Climate
	Immune
	Wisdom
	Stress
	Trauma
	Novelty
	Vigor
	Fecundity

	NumKeys = 9
)

// Bounds of every effective value.
const (
	MinValue = 0.0
	MaxValue = 100.0
)

// Category groups statistics for presentation and age-phase rules.
type Category uint8

const (
	Physical Category = iota
	Mental
	Fitness
)

// Block holds one value per statistic, indexed by Key.
type Block [NumKeys]float64

// AllKeys lists every statistic in index order.
var AllKeys = [NumKeys]Key{Health, Climate, Immune, Wisdom, Stress, Trauma, Novelty, Vigor, Fecundity}

var keyCodes = [NumKeys]string{"HEA", "CLI", "IMM", "WIS", "STR", "TRA", "NOV", "VIG", "FEC"}

var keyNames = [NumKeys]string{
	"health", "climate", "immune", "wisdom", "stress", "trauma", "novelty", "vigor", "fecundity",
}

// Code returns the three-letter code, e.g. "HEA".
func (k Key) Code() string {
	if int(k) >= NumKeys {
		return "???"
	}
	return keyCodes[k]
}

// String returns the lowercase name.
func (k Key) String() string {
	if int(k) >= NumKeys {
		return "unknown"
	}
	return keyNames[k]
}

// Category returns the group the statistic belongs to.
func (k Key) Category() Category {
	switch k {
	case Health, Climate, Immune:
		return Physical
	case Wisdom, Stress, Trauma, Novelty:
		return Mental
	default:
		return Fitness
	}
}

// Adverse reports whether higher values are worse for the subject.
// Climate sensitivity, immune pressure, stress and trauma are adverse.
func (k Key) Adverse() bool {
	switch k {
	case Climate, Immune, Stress, Trauma:
		return true
	default:
		return false
	}
}

// String returns the category name.
func (c Category) String() string {
	switch c {
	case Physical:
		return "physical"
	case Mental:
		return "mental"
	case Fitness:
		return "fitness"
	default:
		return "unknown"
	}
}

// Get returns the value for k.
func (b Block) Get(k Key) float64 {
	return b[k]
}

// Clamped returns a copy with every value clamped to [MinValue, MaxValue].
func (b Block) Clamped() Block {
	for i := range b {
		b[i] = Clamp(b[i])
	}
	return b
}

// Clamp restricts v to the statistic range.
func Clamp(v float64) float64 {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
