// Package lineage computes the stat biases offspring inherit from a parent.
// Influence decays geometrically with generation so lines regress toward
// the species baseline instead of drifting without bound.
package lineage

import (
	"log/slog"
	"maps"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
)

// Traits is the inheritance record of one offspring. It is immutable:
// accessors return copies.
type Traits struct {
	Generation  int
	ParentStats stats.Block // Parent's final effective stats
	Flags       traits.LineageFlag
	biases      map[stats.Key]float64
}

// NewTraits builds a record, copying the bias map.
func NewTraits(generation int, parentStats stats.Block, biases map[stats.Key]float64, flags traits.LineageFlag) Traits {
	return Traits{
		Generation:  generation,
		ParentStats: parentStats,
		Flags:       flags,
		biases:      maps.Clone(biases),
	}
}

// Founder returns the record of a first-generation subject with no parent.
func Founder() Traits {
	return Traits{Generation: 1, Flags: traits.Founder}
}

// Bias returns the inherited bias for k, zero when none was material.
func (t Traits) Bias(k stats.Key) float64 {
	return t.biases[k]
}

// Biases returns a copy of the sparse bias map.
func (t Traits) Biases() map[stats.Key]float64 {
	return maps.Clone(t.biases)
}

// WithFlags returns a copy with additional flags set.
func (t Traits) WithFlags(f traits.LineageFlag) Traits {
	t.Flags = t.Flags.Add(f)
	t.biases = maps.Clone(t.biases)
	return t
}

// LogValue implements slog.LogValuer.
func (t Traits) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("generation", t.Generation),
		slog.Any("flags", traits.FlagNames(t.Flags)),
	}
	for _, k := range stats.AllKeys {
		if b, ok := t.biases[k]; ok {
			attrs = append(attrs, slog.Float64(k.Code(), b))
		}
	}
	return slog.GroupValue(attrs...)
}

// InheritFactor returns the share of parental deviation passed to a child of
// generation g. It strictly decreases with g.
func InheritFactor(g int, cfg config.LineageConfig) float64 {
	if g < 1 {
		g = 1
	}
	return cfg.BaseFactor * math.Pow(cfg.Decay, float64(g-1))
}

// ComputeInheritedTraits derives a child's record from its parent's final
// effective stats and lineage. Noise is drawn for every stat so rng
// consumption does not depend on which biases survive.
func ComputeInheritedTraits(parentStats stats.Block, parent Traits, baseline stats.Block, cfg config.LineageConfig, rng *rand.Rand) Traits {
	gen := max(parent.Generation, 1) + 1
	factor := InheritFactor(gen, cfg)

	var noise distuv.Uniform
	if cfg.MutationRange > 0 {
		noise = distuv.Uniform{Min: -cfg.MutationRange, Max: cfg.MutationRange, Src: rng}
	}

	biases := make(map[stats.Key]float64)
	for _, k := range stats.AllKeys {
		b := (parentStats[k] - baseline[k]) * factor
		if cfg.MutationRange > 0 {
			b += noise.Rand()
		}
		if math.Abs(b) >= cfg.MaterialityThreshold {
			biases[k] = b
		}
	}

	return Traits{
		Generation:  gen,
		ParentStats: parentStats,
		Flags:       parent.Flags.Inheritable().Add(earnedFlags(parentStats, cfg)),
		biases:      biases,
	}
}

func earnedFlags(parentStats stats.Block, cfg config.LineageConfig) traits.LineageFlag {
	var f traits.LineageFlag
	if parentStats[stats.Health] >= cfg.RobustThreshold {
		f = f.Add(traits.Robust)
	}
	if parentStats[stats.Wisdom] >= cfg.SageThreshold {
		f = f.Add(traits.Sage)
	}
	if parentStats[stats.Trauma] >= cfg.HardenedThreshold {
		f = f.Add(traits.Hardened)
	}
	return f
}

// ApplyLineageBiases returns base plus the inherited biases, clamped to the stat range.
func ApplyLineageBiases(base stats.Block, t Traits) stats.Block {
	out := base
	for k, b := range t.biases {
		out[k] += b
	}
	return out.Clamped()
}

// Modifiers expresses the biases as permanent ledger modifiers, for callers
// that keep the species base untouched and track inheritance separately.
func Modifiers(t Traits) []stats.Modifier {
	var mods []stats.Modifier
	for _, k := range stats.AllKeys {
		if b, ok := t.biases[k]; ok {
			mods = append(mods, stats.Permanent(stats.SourceLineage, SourceID, "Inherited", k, b))
		}
	}
	return mods
}

// SourceID tags lineage modifiers.
const SourceID = "lineage"
