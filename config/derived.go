package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pthm-cable/wildlife/components"
	"github.com/pthm-cable/wildlife/stats"
)

// DerivedConfig holds lookup tables computed after loading.
type DerivedConfig struct {
	SpeciesIndex map[string]int
	RegionIndex  map[string]int
}

// computeDerived resolves names into typed values and builds index maps.
func (c *Config) computeDerived() error {
	c.Derived.RegionIndex = make(map[string]int, len(c.Regions))
	for i, r := range c.Regions {
		c.Derived.RegionIndex[r.ID] = i
	}

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i := range c.Species {
		sp := &c.Species[i]
		if err := sp.computeDerived(); err != nil {
			return fmt.Errorf("species %q: %w", sp.Name, err)
		}
		c.Derived.SpeciesIndex[sp.Name] = i
	}

	return c.Validate()
}

func (s *SpeciesConfig) computeDerived() error {
	d := SpeciesDerived{}

	for code, v := range s.BaseStats {
		k, err := stats.ParseKey(code)
		if err != nil {
			return fmt.Errorf("base_stats: %w", err)
		}
		d.BaseStats[k] = v
	}

	for _, pc := range s.AgePhases {
		phase, err := components.ParseAgePhase(pc.Phase)
		if err != nil {
			return fmt.Errorf("age_phases: %w", err)
		}
		rp := ResolvedPhase{Phase: phase, StartTurn: pc.StartTurn}
		for code, amt := range pc.Modifiers {
			k, err := stats.ParseKey(code)
			if err != nil {
				return fmt.Errorf("age_phases %s: %w", pc.Phase, err)
			}
			rp.Modifiers = append(rp.Modifiers, PhaseModifier{Stat: k, Amount: amt})
		}
		// Map iteration order is random; modifier order feeds modifier ids.
		slices.SortFunc(rp.Modifiers, func(a, b PhaseModifier) int { return int(a.Stat) - int(b.Stat) })
		d.Phases = append(d.Phases, rp)
	}
	slices.SortStableFunc(d.Phases, func(a, b ResolvedPhase) int { return a.StartTurn - b.StartTurn })

	for name, kg := range s.SeasonalWeightKg {
		season, err := components.ParseSeason(name)
		if err != nil {
			return fmt.Errorf("seasonal_weight_kg: %w", err)
		}
		d.SeasonalWeightKg[season] = kg
	}

	for name, region := range s.MigrationRegions {
		season, err := components.ParseSeason(name)
		if err != nil {
			return fmt.Errorf("migration_regions: %w", err)
		}
		d.MigrationRegions[season] = region
	}

	for _, name := range s.Reproduction.BreedingSeasons {
		season, err := components.ParseSeason(name)
		if err != nil {
			return fmt.Errorf("breeding_seasons: %w", err)
		}
		d.BreedingSeasons[season] = true
	}

	switch s.Strategy {
	case StrategyIteroparous, "":
	case StrategySemelparous:
		d.Semelparous = true
	default:
		return fmt.Errorf("unknown strategy %q", s.Strategy)
	}

	s.Derived = d
	return nil
}

// Validate reports structural problems such as references to unknown regions.
func (c *Config) Validate() error {
	var errs []error
	if c.Time.TurnsPerMonth < 1 {
		errs = append(errs, fmt.Errorf("time.turns_per_month must be positive, got %d", c.Time.TurnsPerMonth))
	}
	if _, ok := c.Weather.Types[c.Weather.Fallback]; !ok {
		errs = append(errs, fmt.Errorf("weather.fallback %q is not a configured type", c.Weather.Fallback))
	}
	for _, sp := range c.Species {
		if _, ok := c.Derived.RegionIndex[sp.HomeRegion]; !ok {
			errs = append(errs, fmt.Errorf("species %q: unknown home region %q", sp.Name, sp.HomeRegion))
		}
		for season, id := range sp.MigrationRegions {
			if _, ok := c.Derived.RegionIndex[id]; !ok {
				errs = append(errs, fmt.Errorf("species %q: unknown %s region %q", sp.Name, season, id))
			}
		}
		if sp.Weight.StarvationDeathKg >= sp.Weight.HealthyKg || sp.Weight.HealthyKg > sp.Weight.MaxKg {
			errs = append(errs, fmt.Errorf("species %q: weight thresholds out of order", sp.Name))
		}
		if sp.Thermal.HeatCostPerDegree > sp.Thermal.ColdCostPerDegree {
			errs = append(errs, fmt.Errorf("species %q: heat_cost_per_degree exceeds cold_cost_per_degree", sp.Name))
		}
		if sp.Reproduction.MinOffspring > sp.Reproduction.MaxOffspring {
			errs = append(errs, fmt.Errorf("species %q: min_offspring exceeds max_offspring", sp.Name))
		}
	}
	return errors.Join(errs...)
}

// SpeciesByName returns the named species.
func (c *Config) SpeciesByName(name string) (*SpeciesConfig, bool) {
	i, ok := c.Derived.SpeciesIndex[name]
	if !ok {
		return nil, false
	}
	return &c.Species[i], true
}

// Region returns the region with the given id.
func (c *Config) Region(id string) (*RegionConfig, bool) {
	i, ok := c.Derived.RegionIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Regions[i], true
}
