package main

import (
	"fmt"

	"github.com/pthm-cable/wildlife/config"
)

// ParamSpec defines a single calibrated metabolism constant.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
	get  func(*config.MetabolismConfig) float64
	set  func(*config.MetabolismConfig, float64)
}

// ParamVector is the set of constants the calibration searches over.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the forage and activity parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "forage_base_kcal", Min: 500, Max: 20000,
				get: func(m *config.MetabolismConfig) float64 { return m.ForageBaseKcal },
				set: func(m *config.MetabolismConfig, v float64) { m.ForageBaseKcal = v },
			},
			{
				Name: "activity_fraction", Min: 0.1, Max: 1.5,
				get: func(m *config.MetabolismConfig) float64 { return m.ActivityFraction },
				set: func(m *config.MetabolismConfig, v float64) { m.ActivityFraction = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize maps raw values to [0,1].
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return out
}

// Denormalize maps [0,1] values back to clamped raw values.
func (pv *ParamVector) Denormalize(x []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = min(max(s.Min+x[i]*(s.Max-s.Min), s.Min), s.Max)
	}
	return out
}

// Extract reads the current values from a species.
func (pv *ParamVector) Extract(sp *config.SpeciesConfig) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.get(&sp.Metabolism)
	}
	return out
}

// Apply writes raw values into the named species of cfg.
func (pv *ParamVector) Apply(cfg *config.Config, species string, raw []float64) error {
	sp, ok := cfg.SpeciesByName(species)
	if !ok {
		return fmt.Errorf("unknown species %q", species)
	}
	for i, s := range pv.Specs {
		s.set(&sp.Metabolism, raw[i])
	}
	return nil
}
