// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Time      TimeConfig      `yaml:"time"`
	Weather   WeatherConfig   `yaml:"weather"`
	Lineage   LineageConfig   `yaml:"lineage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Species   []SpeciesConfig `yaml:"species"`
	Regions   []RegionConfig  `yaml:"regions"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TimeConfig holds calendar parameters.
type TimeConfig struct {
	TurnsPerMonth    int     `yaml:"turns_per_month"`
	DaysPerTurn      float64 `yaml:"days_per_turn"`
	FastForwardTurns int     `yaml:"fast_forward_turns"` // Turns per fast-forward request
	Acceleration     float64 `yaml:"acceleration"`       // Intake multiplier for accelerated play
}

// Range is an inclusive float interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// WeatherConfig holds the weather type table and the ordered rule sets.
type WeatherConfig struct {
	Types              map[string]WeatherTypeConfig `yaml:"types"`
	TemperatureRules   []ThresholdRule              `yaml:"temperature_rules"`   // First match wins
	PrecipitationRules []ThresholdRule              `yaml:"precipitation_rules"` // First match wins
	SeasonRules        []SeasonWeatherRule          `yaml:"season_rules"`        // All matches apply
	WindDriftChance    float64                      `yaml:"wind_drift_chance"`
	WindJitter         float64                      `yaml:"wind_jitter"`
	Fallback           string                       `yaml:"fallback"` // Type drawn when every weight is zero
}

// WeatherTypeConfig configures one weather category.
type WeatherTypeConfig struct {
	Description       string             `yaml:"description"`
	BaseWeight        float64            `yaml:"base_weight"`
	Persistence       IntRange           `yaml:"persistence"` // Turns
	Intensity         Range              `yaml:"intensity"`   // 0-1
	WindSpeed         Range              `yaml:"wind_speed"`  // 0-100
	TemperatureDeltaC float64            `yaml:"temperature_delta_c"`
	WeightPenaltyKg   float64            `yaml:"weight_penalty_kg"` // At full intensity
	StatPenalties     map[string]float64 `yaml:"stat_penalties"`    // At full intensity
	EventMultipliers  map[string]float64 `yaml:"event_multipliers"` // At full intensity
}

// ThresholdRule applies multipliers when a climate value falls inside [Min, Max].
// A nil bound is open. A multiplier of 0 excludes the weather type.
type ThresholdRule struct {
	Min         *float64           `yaml:"min,omitempty"`
	Max         *float64           `yaml:"max,omitempty"`
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// Matches reports whether v lies within the rule bounds.
func (r ThresholdRule) Matches(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// SeasonWeatherRule adds weight to weather types during the listed seasons.
type SeasonWeatherRule struct {
	Seasons []string           `yaml:"seasons"`
	Add     map[string]float64 `yaml:"add"`
}

// LineageConfig holds cross-generation inheritance parameters.
type LineageConfig struct {
	BaseFactor           float64 `yaml:"base_factor"`           // Inherit factor of generation 1
	Decay                float64 `yaml:"decay"`                 // Per-generation factor decay
	MutationRange        float64 `yaml:"mutation_range"`        // Uniform noise in [-r, r]
	MaterialityThreshold float64 `yaml:"materiality_threshold"` // Smaller biases are dropped
	RobustThreshold      float64 `yaml:"robust_threshold"`
	SageThreshold        float64 `yaml:"sage_threshold"`
	HardenedThreshold    float64 `yaml:"hardened_threshold"`
	ProlificSurvivors    int     `yaml:"prolific_survivors"`
}

// TelemetryConfig holds history and logging parameters.
type TelemetryConfig struct {
	HistoryLimit int `yaml:"history_limit"` // 0 keeps every snapshot
	LogEvery     int `yaml:"log_every"`     // Turns between summary log lines
}

// RegionConfig describes the climate and resources of a region.
type RegionConfig struct {
	ID              string    `yaml:"id"`
	Name            string    `yaml:"name"`
	MonthlyTempC    []float64 `yaml:"monthly_temp_c"`
	MonthlyPrecipMM []float64 `yaml:"monthly_precip_mm"`
	FloralAbundance []float64 `yaml:"floral_abundance"` // Monthly, 0-1
	TerrainForage   float64   `yaml:"terrain_forage"`   // Node resource multiplier
	Shelter         float64   `yaml:"shelter"`          // 0-1
}

// Neutral values substituted for missing climate records.
const (
	DefaultTempC     = 10.0
	DefaultPrecipMM  = 60.0
	DefaultAbundance = 0.5
)

// TempC returns the mean temperature for a zero-based month.
func (r *RegionConfig) TempC(month int) float64 {
	return monthly(r.MonthlyTempC, month, DefaultTempC)
}

// PrecipMM returns the precipitation for a zero-based month.
func (r *RegionConfig) PrecipMM(month int) float64 {
	return monthly(r.MonthlyPrecipMM, month, DefaultPrecipMM)
}

// Abundance returns the floral abundance for a zero-based month.
func (r *RegionConfig) Abundance(month int) float64 {
	return monthly(r.FloralAbundance, month, DefaultAbundance)
}

func monthly(series []float64, month int, fallback float64) float64 {
	if len(series) != 12 {
		return fallback
	}
	return series[((month%12)+12)%12]
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, fmt.Errorf("deriving config: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaults returns the embedded defaults. Intended for tests and tools.
func MustLoadDefaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Recompute refreshes derived values after fields were edited in place.
func (c *Config) Recompute() error {
	return c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
