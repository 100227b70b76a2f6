package game

import (
	"log/slog"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/lineage"
	"github.com/pthm-cable/wildlife/physiology"
	"github.com/pthm-cable/wildlife/reproduction"
	"github.com/pthm-cable/wildlife/stats"
	"github.com/pthm-cable/wildlife/traits"
	"github.com/pthm-cable/wildlife/weather"
)

// Subject is the simulated animal. Values handed out by Simulation are
// copies; changing them has no effect on the run.
type Subject struct {
	Species    string
	Generation int
	Sex        components.Sex
	BornTurn   int
	AgeTurns   int
	Phase      components.AgePhase
	WeightKg   float64

	Ledger       stats.Ledger
	Physiology   physiology.State
	Reproduction reproduction.State
	Lineage      lineage.Traits     // Fixed at birth
	EarnedFlags  traits.LineageFlag // Flags earned during this life
	Body         components.Body
	Effort       components.Effort

	Alive      bool
	DeathCause components.DeathCause

	// Per-life tallies
	Litters            int
	Offspring          int
	EstimatedSurvivors int
	PeakWeightKg       float64
}

// Stats returns the effective value of every statistic.
func (s Subject) Stats() stats.Block {
	return s.Ledger.EffectiveBlock()
}

// EffectiveLineage returns the lineage record with this life's earned flags
// merged in. The stored Lineage is left unchanged.
func (s Subject) EffectiveLineage() lineage.Traits {
	return s.Lineage.WithFlags(s.EarnedFlags)
}

// clone returns a copy that shares no mutable storage with s.
func (s Subject) clone() Subject {
	s.Body = s.Body.Clone()
	return s
}

// LogValue implements slog.LogValuer.
func (s Subject) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("species", s.Species),
		slog.Int("generation", s.Generation),
		slog.Int("age_turns", s.AgeTurns),
		slog.String("phase", s.Phase.String()),
		slog.Float64("weight_kg", s.WeightKg),
		slog.Bool("alive", s.Alive),
	}
	if s.DeathCause != "" {
		attrs = append(attrs, slog.String("death_cause", string(s.DeathCause)))
	}
	return slog.GroupValue(attrs...)
}

// World is the environment shared by every subsystem for one turn.
type World struct {
	Time               components.Time
	Season             components.Season // Season the last seasonal adjustment ran in
	RegionID           string
	Weather            weather.State
	AmbientC           float64
	Shelter            float64 // 0-1, reset to the region value on migration
	TemperatureOffsetC float64
}
