package config

import (
	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/stats"
)

// Reproductive strategies.
const (
	StrategyIteroparous = "iteroparous"
	StrategySemelparous = "semelparous"
)

// SpeciesConfig holds the numeric profile of one species.
type SpeciesConfig struct {
	Name             string             `yaml:"name"`
	Strategy         string             `yaml:"strategy"`
	HomeRegion       string             `yaml:"home_region"`
	MigrationRegions map[string]string  `yaml:"migration_regions"` // season -> region id
	StartAgeTurns    int                `yaml:"start_age_turns"`
	BaseStats        map[string]float64 `yaml:"base_stats"` // stat code -> base
	SeasonalWeightKg map[string]float64 `yaml:"seasonal_weight_kg"`

	Weight       WeightConfig       `yaml:"weight"`
	AgePhases    []AgePhaseConfig   `yaml:"age_phases"`
	Thermal      ThermalConfig      `yaml:"thermal"`
	Metabolism   MetabolismConfig   `yaml:"metabolism"`
	Immune       ImmuneConfig       `yaml:"immune"`
	Stress       StressConfig       `yaml:"stress"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Spawning     SpawningConfig     `yaml:"spawning"`

	Derived SpeciesDerived `yaml:"-"`
}

// WeightConfig holds body-weight thresholds in kilograms.
type WeightConfig struct {
	StartKg           float64   `yaml:"start_kg"`
	HealthyKg         float64   `yaml:"healthy_kg"`
	MaxKg             float64   `yaml:"max_kg"`
	StarvationDeathKg float64   `yaml:"starvation_death_kg"`
	ConditionBreaks   []float64 `yaml:"condition_breaks"` // Weight/healthy ratios separating BCS 1|2|3|4|5
}

// AgePhaseConfig is an age band with the permanent modifiers it grants.
type AgePhaseConfig struct {
	Phase     string             `yaml:"phase"`
	StartTurn int                `yaml:"start_turn"`
	Modifiers map[string]float64 `yaml:"modifiers"` // stat code -> amount
}

// ThermalConfig is the thermoregulation profile.
type ThermalConfig struct {
	LowerCriticalC    float64 `yaml:"lower_critical_c"`
	UpperCriticalC    float64 `yaml:"upper_critical_c"`
	ColdCostPerDegree float64 `yaml:"cold_cost_per_degree"` // Fraction of basal
	HeatCostPerDegree float64 `yaml:"heat_cost_per_degree"` // Fraction of basal
	WindThreshold     float64 `yaml:"wind_threshold"`
	WindFactor        float64 `yaml:"wind_factor"` // Per unit of wind above threshold
	ShelterReduction  float64 `yaml:"shelter_reduction"`
	CoreDriftRate     float64 `yaml:"core_drift_rate"` // Degrees per unit of thermo/basal ratio over 0.5
	MaxCoreDrift      float64 `yaml:"max_core_drift"`
	CoreRelaxRate     float64 `yaml:"core_relax_rate"` // Fraction of deviation removed per turn
}

// MetabolismConfig holds energy budget constants.
type MetabolismConfig struct {
	KleiberCoefficient float64 `yaml:"kleiber_coefficient"` // kcal/day at 1 kg
	KleiberExponent    float64 `yaml:"kleiber_exponent"`
	ActivityFraction   float64 `yaml:"activity_fraction"`
	ForageBaseKcal     float64 `yaml:"forage_base_kcal"` // Per turn at full abundance
	KcalPerKgGain      float64 `yaml:"kcal_per_kg_gain"`
	KcalPerKgLoss      float64 `yaml:"kcal_per_kg_loss"`
	MaxGainKg          float64 `yaml:"max_gain_kg"`
	MaxLossKg          float64 `yaml:"max_loss_kg"`
	BalanceSmoothing   float64 `yaml:"balance_smoothing"` // EMA alpha
	GestationFraction  float64 `yaml:"gestation_fraction"`
	LactationFraction  float64 `yaml:"lactation_fraction"`
	GrowthFraction     float64 `yaml:"growth_fraction"` // Juvenile growth cost
	FallbackAbundance  float64 `yaml:"fallback_abundance"`
}

// ImmuneConfig holds immune capacity and load constants.
type ImmuneConfig struct {
	Baseline             float64 `yaml:"baseline"`
	ConditionPenalty     float64 `yaml:"condition_penalty"` // Per BCS point below 3
	StressThreshold      float64 `yaml:"stress_threshold"`
	StressPenalty        float64 `yaml:"stress_penalty"` // Per STR point above threshold
	ElderPenalty         float64 `yaml:"elder_penalty"`
	NegativeTrendPenalty float64 `yaml:"negative_trend_penalty"`
	LoadPerParasiteStage float64 `yaml:"load_per_parasite_stage"`
	LoadPerInfectedWound float64 `yaml:"load_per_infected_wound"` // Times severity weight
	CostPerLoad          float64 `yaml:"cost_per_load"`           // Fraction of basal per load point
}

// StressConfig scales the single-turn stat modifiers physiology derives.
type StressConfig struct {
	DeficitScale      float64 `yaml:"deficit_scale"` // STR per unit of deficit/basal
	DeficitCap        float64 `yaml:"deficit_cap"`
	ClimatePerDegree  float64 `yaml:"climate_per_degree"`
	ClimateCap        float64 `yaml:"climate_cap"`
	ImmunePerOverload float64 `yaml:"immune_per_overload"`
	ImmuneCap         float64 `yaml:"immune_cap"`
	HealthPerPoint    float64 `yaml:"health_per_point"` // HEA lost per BCS point below 3
}

// ReproductionConfig holds iteroparous breeding parameters.
type ReproductionConfig struct {
	BreedingSeasons      []string  `yaml:"breeding_seasons"`
	MatureTurns          int       `yaml:"mature_turns"`
	GestationTurns       int       `yaml:"gestation_turns"`
	LactationTurns       int       `yaml:"lactation_turns"`
	OffspringBreakpoints []float64 `yaml:"offspring_breakpoints"`
	MinOffspring         int       `yaml:"min_offspring"`
	MaxOffspring         int       `yaml:"max_offspring"`
	BaseSurvival         float64   `yaml:"base_survival"`
	HealthSurvival       float64   `yaml:"health_survival"` // Per HEA point above 50
	WinterPenalty        float64   `yaml:"winter_penalty"`
	YoungMotherTurns     int       `yaml:"young_mother_turns"`
	YouthPenalty         float64   `yaml:"youth_penalty"`
	MinSurvival          float64   `yaml:"min_survival"`
	MaxSurvival          float64   `yaml:"max_survival"`
}

// SpawningConfig holds semelparous spawn parameters.
type SpawningConfig struct {
	BaseEggs        float64 `yaml:"base_eggs"`
	HealthEggBonus  float64 `yaml:"health_egg_bonus"` // At HEA 100
	WeightEggBonus  float64 `yaml:"weight_egg_bonus"` // Per unit of weight ratio
	BaseSurvival    float64 `yaml:"base_survival"`
	WisdomSurvival  float64 `yaml:"wisdom_survival"` // At WIS 100
	DiesAfterSpawn  bool    `yaml:"dies_after_spawn"`
	MinSpawnTurns   int     `yaml:"min_spawn_turns"`
	MaxSurvivalRate float64 `yaml:"max_survival_rate"`
}

// ResolvedPhase is an age phase with parsed identifiers.
type ResolvedPhase struct {
	Phase     components.AgePhase
	StartTurn int
	Modifiers []PhaseModifier
}

// PhaseModifier is one permanent modifier granted by an age phase.
type PhaseModifier struct {
	Stat   stats.Key
	Amount float64
}

// SpeciesDerived holds values resolved from the raw species config.
type SpeciesDerived struct {
	BaseStats        stats.Block
	Phases           []ResolvedPhase // Sorted by StartTurn
	SeasonalWeightKg [components.NumSeasons]float64
	MigrationRegions [components.NumSeasons]string
	BreedingSeasons  [components.NumSeasons]bool
	Semelparous      bool
}

// PhaseAt returns the age phase in effect at the given age.
func (s *SpeciesConfig) PhaseAt(ageTurns int) ResolvedPhase {
	phases := s.Derived.Phases
	if len(phases) == 0 {
		return ResolvedPhase{Phase: components.Adult}
	}
	cur := phases[0]
	for _, p := range phases[1:] {
		if ageTurns < p.StartTurn {
			break
		}
		cur = p
	}
	return cur
}

// RegionFor returns the region the species occupies in a season.
// Seasons without a migration entry use the home region.
func (s *SpeciesConfig) RegionFor(season components.Season) string {
	if id := s.Derived.MigrationRegions[season]; id != "" {
		return id
	}
	return s.HomeRegion
}

// BreedsIn reports whether the species can conceive during a season.
func (s *SpeciesConfig) BreedsIn(season components.Season) bool {
	return s.Derived.BreedingSeasons[season]
}
