package weather

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/stats"
)

// SourceID tags every modifier produced by weather penalties.
const SourceID = "weather"

type profile struct {
	description   string
	baseWeight    float64
	persistence   config.IntRange
	intensity     config.Range
	windSpeed     config.Range
	tempDeltaC    float64
	weightPenalty float64
	statPenalties []statPenalty
	events        [NumCategories]float64
}

type statPenalty struct {
	stat   stats.Key
	amount float64
}

type thresholdRule struct {
	min, max *float64
	mult     [NumTypes]float64
	has      [NumTypes]bool
}

func (r thresholdRule) matches(v float64) bool {
	return config.ThresholdRule{Min: r.min, Max: r.max}.Matches(v)
}

type seasonRule struct {
	seasons [components.NumSeasons]bool
	add     [NumTypes]float64
}

// Model is a compiled weather configuration. It holds no per-run state
// and is safe to share.
type Model struct {
	profiles    [NumTypes]profile
	tempRules   []thresholdRule
	precipRules []thresholdRule
	seasonRules []seasonRule
	driftChance float64
	windJitter  float64
	fallback    Type
}

// NewModel compiles the weather section of the configuration.
func NewModel(cfg config.WeatherConfig) (*Model, error) {
	m := &Model{
		driftChance: cfg.WindDriftChance,
		windJitter:  cfg.WindJitter,
		fallback:    Clear,
	}
	for i := range m.profiles {
		m.profiles[i] = defaultProfile()
	}

	var seen [NumTypes]bool
	for name, tc := range cfg.Types {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: %s configured twice", ErrDuplicateType, t)
		}
		seen[t] = true
		p, err := compileProfile(tc)
		if err != nil {
			return nil, fmt.Errorf("weather type %s: %w", name, err)
		}
		m.profiles[t] = p
	}

	var err error
	if m.tempRules, err = compileThresholds(cfg.TemperatureRules); err != nil {
		return nil, fmt.Errorf("temperature rules: %w", err)
	}
	if m.precipRules, err = compileThresholds(cfg.PrecipitationRules); err != nil {
		return nil, fmt.Errorf("precipitation rules: %w", err)
	}

	for i, sr := range cfg.SeasonRules {
		var rule seasonRule
		for _, name := range sr.Seasons {
			s, err := components.ParseSeason(name)
			if err != nil {
				return nil, fmt.Errorf("season rule %d: %w", i, err)
			}
			rule.seasons[s] = true
		}
		var named [NumTypes]bool
		for name, v := range sr.Add {
			t, err := ParseType(name)
			if err != nil {
				return nil, fmt.Errorf("season rule %d: %w", i, err)
			}
			if named[t] {
				return nil, fmt.Errorf("season rule %d: %w: %s", i, ErrDuplicateType, t)
			}
			named[t] = true
			rule.add[t] = v
		}
		m.seasonRules = append(m.seasonRules, rule)
	}

	if cfg.Fallback != "" {
		t, err := ParseType(cfg.Fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback: %w", err)
		}
		m.fallback = t
	}
	return m, nil
}

func defaultProfile() profile {
	p := profile{
		persistence: config.IntRange{Min: 1, Max: 1},
		intensity:   config.Range{Min: 0.5, Max: 0.5},
	}
	for i := range p.events {
		p.events[i] = 1
	}
	return p
}

func compileProfile(tc config.WeatherTypeConfig) (profile, error) {
	p := defaultProfile()
	p.description = tc.Description
	p.baseWeight = tc.BaseWeight
	p.persistence = tc.Persistence
	if p.persistence.Min < 1 {
		p.persistence.Min = 1
	}
	if p.persistence.Max < p.persistence.Min {
		p.persistence.Max = p.persistence.Min
	}
	p.intensity = orderedRange(tc.Intensity, 0, 1)
	p.windSpeed = orderedRange(tc.WindSpeed, 0, 100)
	p.tempDeltaC = tc.TemperatureDeltaC
	p.weightPenalty = tc.WeightPenaltyKg

	for code, amt := range tc.StatPenalties {
		k, err := stats.ParseKey(code)
		if err != nil {
			return profile{}, err
		}
		p.statPenalties = append(p.statPenalties, statPenalty{stat: k, amount: amt})
	}
	slices.SortFunc(p.statPenalties, func(a, b statPenalty) int { return int(a.stat) - int(b.stat) })

	for name, v := range tc.EventMultipliers {
		c, err := ParseCategory(name)
		if err != nil {
			return profile{}, err
		}
		p.events[c] = v
	}
	return p, nil
}

func orderedRange(r config.Range, lo, hi float64) config.Range {
	r.Min = clamp(r.Min, lo, hi)
	r.Max = clamp(r.Max, lo, hi)
	if r.Max < r.Min {
		r.Max = r.Min
	}
	return r
}

func compileThresholds(rules []config.ThresholdRule) ([]thresholdRule, error) {
	out := make([]thresholdRule, 0, len(rules))
	for i, r := range rules {
		tr := thresholdRule{min: r.Min, max: r.Max}
		for name, v := range r.Multipliers {
			t, err := ParseType(name)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			if tr.has[t] {
				return nil, fmt.Errorf("rule %d: %w: %s", i, ErrDuplicateType, t)
			}
			tr.mult[t] = v
			tr.has[t] = true
		}
		out = append(out, tr)
	}
	return out, nil
}

// Weights returns the draw weight of every type for the given climate.
// Excluded types have weight zero.
func (m *Model) Weights(tempC, precipMM float64, season components.Season) [NumTypes]float64 {
	var w [NumTypes]float64
	var excluded [NumTypes]bool
	for i, p := range m.profiles {
		w[i] = p.baseWeight
	}

	apply := func(rules []thresholdRule, v float64) {
		for _, r := range rules {
			if !r.matches(v) {
				continue
			}
			for i := range w {
				if !r.has[i] {
					continue
				}
				w[i] *= r.mult[i]
				if r.mult[i] == 0 {
					excluded[i] = true
				}
			}
			return
		}
	}
	apply(m.tempRules, tempC)
	apply(m.precipRules, precipMM)

	for _, r := range m.seasonRules {
		if !r.seasons[season] {
			continue
		}
		for i := range w {
			if !excluded[i] {
				w[i] += r.add[i]
			}
		}
	}

	for i := range w {
		if w[i] < 0 {
			w[i] = 0
		}
	}
	return w
}

// Generate draws a fresh weather state for a region and month.
// A nil region uses neutral climate values.
func (m *Model) Generate(region *config.RegionConfig, season components.Season, month int, rng *rand.Rand, offsetC float64) State {
	tempC, precipMM := climate(region, month)
	w := m.Weights(tempC+offsetC, precipMM, season)

	t := m.fallback
	var total float64
	for _, v := range w {
		total += v
	}
	if total > 0 {
		t = Type(distuv.NewCategorical(w[:], rng).Rand())
	}
	return m.stateFor(t, rng)
}

func (m *Model) stateFor(t Type, rng *rand.Rand) State {
	p := m.profiles[t]
	persistence := p.persistence.Min + rng.IntN(p.persistence.Max-p.persistence.Min+1)
	return State{
		Type:            t,
		Description:     p.description,
		PersistenceLeft: persistence,
		Intensity:       uniform(p.intensity, rng),
		WindDirection:   Direction(rng.IntN(NumDirections)),
		WindSpeed:       uniform(p.windSpeed, rng),
	}
}

// Tick advances the weather by one turn. A state with more than one turn
// left persists with drifting wind; otherwise a new state is drawn.
func (m *Model) Tick(current State, region *config.RegionConfig, season components.Season, month int, rng *rand.Rand, offsetC float64) State {
	if current.PersistenceLeft <= 1 {
		return m.Generate(region, season, month, rng, offsetC)
	}

	next := current
	next.PersistenceLeft--
	if rng.Float64() < m.driftChance {
		step := 1
		if rng.IntN(2) == 0 {
			step = -1
		}
		next.WindDirection = next.WindDirection.Rotate(step)
	}
	if m.windJitter > 0 {
		jitter := distuv.Uniform{Min: -m.windJitter, Max: m.windJitter, Src: rng}.Rand()
		next.WindSpeed = clamp(next.WindSpeed+jitter, 0, 100)
	}
	return next
}

// Penalty is the direct cost a weather state imposes on the subject for one turn.
type Penalty struct {
	WeightChange float64
	Modifiers    []stats.Modifier
}

// Penalty scales the configured penalties of the state's type by its intensity.
func (m *Model) Penalty(s State) Penalty {
	p := m.profiles[s.Type]
	out := Penalty{WeightChange: p.weightPenalty * s.Intensity}
	label := "Weather: " + s.Type.String()
	for _, sp := range p.statPenalties {
		amt := sp.amount * s.Intensity
		if amt == 0 {
			continue
		}
		out.Modifiers = append(out.Modifiers, stats.Timed(stats.SourceWeather, SourceID, label, sp.stat, amt, 1))
	}
	return out
}

// EventMultiplier returns the probability multiplier for an event category,
// interpolated from 1 at zero intensity to the configured value at full intensity.
func (m *Model) EventMultiplier(c Category, s State) float64 {
	if int(c) >= NumCategories {
		return 1
	}
	mult := m.profiles[s.Type].events[c]
	return 1 + (mult-1)*s.Intensity
}

// AmbientTemperature returns the air temperature the subject experiences.
func (m *Model) AmbientTemperature(region *config.RegionConfig, month int, offsetC float64, s State) float64 {
	tempC, _ := climate(region, month)
	return tempC + offsetC + m.profiles[s.Type].tempDeltaC*s.Intensity
}

// Describe returns the configured description of a type.
func (m *Model) Describe(t Type) string {
	return m.profiles[t].description
}

func climate(region *config.RegionConfig, month int) (tempC, precipMM float64) {
	if region == nil {
		return config.DefaultTempC, config.DefaultPrecipMM
	}
	return region.TempC(month), region.PrecipMM(month)
}

func uniform(r config.Range, rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return distuv.Uniform{Min: r.Min, Max: r.Max, Src: rng}.Rand()
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
