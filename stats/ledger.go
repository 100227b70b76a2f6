package stats

import (
	"slices"

	"github.com/google/uuid"
)

// Ledger holds base values and modifiers for all statistics.
// Every method has a value receiver and returns a new Ledger; the
// receiver is never mutated.
type Ledger struct {
	base Block
	mods []Modifier
	seq  uint64
}

// New creates a ledger from base values. Bases are stored as given;
// clamping happens only when effective values are read.
func New(base Block) Ledger {
	return Ledger{base: base}
}

// Add returns a ledger with m appended. A zero ID is replaced with a
// deterministic id derived from the source and the ledger sequence.
func (l Ledger) Add(m Modifier) Ledger {
	mustValid(m)
	out := l.clone(len(l.mods) + 1)
	out.seq++
	if m.ID == uuid.Nil {
		m.ID = deriveID(m.SourceID, out.seq)
	}
	out.mods = append(out.mods, m)
	return out
}

// AddAll applies Add for every modifier in order.
func (l Ledger) AddAll(mods []Modifier) Ledger {
	out := l
	for _, m := range mods {
		out = out.Add(m)
	}
	return out
}

// Tick decrements every timed modifier and drops the ones that reach zero.
// Permanent modifiers are untouched.
func (l Ledger) Tick() Ledger {
	out := Ledger{base: l.base, seq: l.seq, mods: make([]Modifier, 0, len(l.mods))}
	for _, m := range l.mods {
		if m.Timed {
			m.Remaining--
			if m.Remaining <= 0 {
				continue
			}
		}
		out.mods = append(out.mods, m)
	}
	return out
}

// RemoveBySource drops every modifier tagged with sourceID.
func (l Ledger) RemoveBySource(sourceID string) Ledger {
	out := Ledger{base: l.base, seq: l.seq, mods: make([]Modifier, 0, len(l.mods))}
	for _, m := range l.mods {
		if m.SourceID == sourceID {
			continue
		}
		out.mods = append(out.mods, m)
	}
	return out
}

// WithBase returns a ledger with the base value of k replaced.
func (l Ledger) WithBase(k Key, v float64) Ledger {
	out := l.clone(len(l.mods))
	out.base[k] = v
	return out
}

// Base returns the stored base value of k.
func (l Ledger) Base(k Key) float64 {
	return l.base[k]
}

// Bases returns all base values.
func (l Ledger) Bases() Block {
	return l.base
}

// Effective returns base + sum of modifiers for k, clamped to [0, 100].
func (l Ledger) Effective(k Key) float64 {
	v := l.base[k]
	for _, m := range l.mods {
		if m.Stat == k {
			v += m.Amount
		}
	}
	return Clamp(v)
}

// EffectiveBlock returns the effective value of every statistic.
func (l Ledger) EffectiveBlock() Block {
	var b Block
	for _, k := range AllKeys {
		b[k] = l.Effective(k)
	}
	return b
}

// Modifiers returns a copy of the modifier list in insertion order.
func (l Ledger) Modifiers() []Modifier {
	return slices.Clone(l.mods)
}

// HasSource reports whether any modifier carries sourceID.
func (l Ledger) HasSource(sourceID string) bool {
	return slices.ContainsFunc(l.mods, func(m Modifier) bool { return m.SourceID == sourceID })
}

// Len returns the number of active modifiers.
func (l Ledger) Len() int {
	return len(l.mods)
}

func (l Ledger) clone(capacity int) Ledger {
	mods := make([]Modifier, len(l.mods), capacity)
	copy(mods, l.mods)
	return Ledger{base: l.base, mods: mods, seq: l.seq}
}
