// Package physiology computes one turn of a subject's energy budget,
// thermoregulation, immune state and weight change.
package physiology

import (
	"log/slog"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/stats"
)

// SourceID tags every modifier derived by the engine.
const SourceID = "physiology"

// Core temperature deviations at which the subject dies.
const (
	HypothermiaThreshold = -8.0
	HeatStrokeThreshold  = 6.0
)

// DefaultDaysPerTurn is used when the environment does not specify a turn length.
const DefaultDaysPerTurn = 7.0

// State is the physiological condition carried between turns.
type State struct {
	CaloricReserve    float64 // kcal of fat above the starvation threshold
	AvgCaloricBalance float64 // Exponential moving average of the per-turn balance
	NegativeBalance   bool
	ThermoCost        float64
	CoreTempDeviation float64
	BodyCondition     int // 1-5
	ImmuneCapacity    float64
	ImmuneLoad        float64
	Immunocompromised bool
	PendingBonusKcal  float64 // Event calories consumed on the next tick
}

// NewState returns the starting condition for a subject of the given weight.
func NewState(weightKg float64, sp *config.SpeciesConfig) State {
	return State{
		CaloricReserve: reserve(weightKg, sp),
		BodyCondition:  BodyConditionScore(weightKg, sp),
		ImmuneCapacity: clamp(sp.Immune.Baseline, 0, 100),
	}
}

// WithBonus returns a copy with extra calories queued for the next tick.
func (s State) WithBonus(kcal float64) State {
	s.PendingBonusKcal += kcal
	return s
}

// LogValue implements slog.LogValuer.
func (s State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("reserve", s.CaloricReserve),
		slog.Float64("avg_balance", s.AvgCaloricBalance),
		slog.Float64("core_dev", s.CoreTempDeviation),
		slog.Int("bcs", s.BodyCondition),
		slog.Float64("immune_cap", s.ImmuneCapacity),
		slog.Float64("immune_load", s.ImmuneLoad),
	)
}

// Subject is the read-only view of the animal the engine needs.
type Subject struct {
	Physiology State
	WeightKg   float64
	AgeTurns   int
	Phase      components.AgePhase
	Stats      stats.Block // Effective values
	Body       components.Body
	Effort     components.Effort
	Gestating  bool
	Lactating  bool
}

// Environment describes the surroundings for one turn.
// Zero TerrainForage, TimeScale and DaysPerTurn read as neutral values.
// Without a region, forage abundance falls back to the species default.
type Environment struct {
	Region        *config.RegionConfig
	AmbientC      float64
	TerrainForage float64
	Shelter       float64 // 0-1
	TimeScale     float64
	DaysPerTurn   float64
}

// abundance returns the floral abundance for a zero-based month.
func (e Environment) abundance(month int, sp *config.SpeciesConfig) float64 {
	if e.Region == nil {
		return sp.Metabolism.FallbackAbundance
	}
	return clamp(e.Region.Abundance(month), 0, 1)
}

func (e Environment) withDefaults() Environment {
	if e.TerrainForage <= 0 {
		e.TerrainForage = 1
	}
	if e.TimeScale <= 0 {
		e.TimeScale = 1
	}
	if e.DaysPerTurn <= 0 {
		e.DaysPerTurn = DefaultDaysPerTurn
	}
	e.Shelter = clamp(e.Shelter, 0, 1)
	return e
}

// BodyConditionScore maps weight to a 1-5 score using the species breakpoints.
func BodyConditionScore(weightKg float64, sp *config.SpeciesConfig) int {
	healthy := sp.Weight.HealthyKg
	if healthy <= 0 {
		return 3
	}
	ratio := weightKg / healthy
	score := 1
	for _, b := range sp.Weight.ConditionBreaks {
		if ratio >= b {
			score++
		}
	}
	if score > 5 {
		score = 5
	}
	return score
}

func reserve(weightKg float64, sp *config.SpeciesConfig) float64 {
	return max(0, (weightKg-sp.Weight.StarvationDeathKg)*sp.Metabolism.KcalPerKgLoss)
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
