package telemetry

import (
	"log/slog"
	"time"
)

// Stage names for the turn pipeline.
const (
	PhaseDecay        = "decay"
	PhaseWeather      = "weather"
	PhasePhysiology   = "physiology"
	PhaseReproduction = "reproduction"
	PhaseSeasonal     = "seasonal"
	PhaseAging        = "aging"
	PhaseTelemetry    = "telemetry"
)

var phaseOrder = []string{
	PhaseDecay, PhaseWeather, PhasePhysiology, PhaseReproduction,
	PhaseSeasonal, PhaseAging, PhaseTelemetry,
}

// PerfSample holds timing data for a single turn.
type PerfSample struct {
	TurnDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks turn timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	turnStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize turns.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 52
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTurn begins timing a new turn. Nil collectors ignore all calls.
func (p *PerfCollector) StartTurn() {
	if p == nil {
		return
	}
	p.turnStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase ends the running phase and begins timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTurn finishes timing the current turn and records the sample.
func (p *PerfCollector) EndTurn() {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TurnDuration: now.Sub(p.turnStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// PerfStats holds aggregated timing statistics.
type PerfStats struct {
	AvgTurnDuration time.Duration
	MinTurnDuration time.Duration
	MaxTurnDuration time.Duration

	// Phase breakdown
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TurnsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p == nil || p.sampleCount == 0 {
		return out
	}

	var total time.Duration
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.TurnDuration
		if i == 0 || s.TurnDuration < out.MinTurnDuration {
			out.MinTurnDuration = s.TurnDuration
		}
		if s.TurnDuration > out.MaxTurnDuration {
			out.MaxTurnDuration = s.TurnDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	out.AvgTurnDuration = total / time.Duration(p.sampleCount)
	for phase, sum := range phaseSum {
		out.PhaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if out.AvgTurnDuration > 0 {
			out.PhasePct[phase] = float64(out.PhaseAvg[phase]) / float64(out.AvgTurnDuration) * 100
		}
	}
	if out.AvgTurnDuration > 0 {
		out.TurnsPerSecond = float64(time.Second) / float64(out.AvgTurnDuration)
	}
	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_turn_us", s.AvgTurnDuration.Microseconds()),
		slog.Int64("min_turn_us", s.MinTurnDuration.Microseconds()),
		slog.Int64("max_turn_us", s.MaxTurnDuration.Microseconds()),
		slog.Float64("turns_per_sec", s.TurnsPerSecond),
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(phase+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}
