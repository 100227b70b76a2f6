package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/game"
	"github.com/pthm-cable/wildlife/telemetry"
)

// Objective weights.
const (
	balanceScale = 1000.0 // kcal; the mean EMA balance is measured in units of this
	deathPenalty = 10.0   // Added in full for a subject that dies on its first turn
)

// FitnessEvaluator runs headless simulations and scores a parameter vector.
type FitnessEvaluator struct {
	params     *ParamVector
	configPath string
	species    string
	turns      int
	seeds      []uint64

	mu          sync.Mutex
	lastSummary telemetry.Summary
}

// NewFitnessEvaluator creates an evaluator for one species.
func NewFitnessEvaluator(params *ParamVector, configPath, species string, turns int, seeds []uint64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		configPath: configPath,
		species:    species,
		turns:      turns,
		seeds:      seeds,
	}
}

// LastSummary returns the first seed's summary from the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() telemetry.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Evaluate returns the mean objective over all seeds (lower is better).
// Seeds run in parallel, each with its own config and simulation.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	scores := make([]float64, len(fe.seeds))
	summaries := make([]telemetry.Summary, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, seed uint64) {
			defer wg.Done()
			sum, err := fe.run(raw, seed)
			if err != nil {
				slog.Error("evaluation failed", "seed", seed, "error", err)
				scores[idx] = math.Inf(1)
				return
			}
			summaries[idx] = sum
			scores[idx] = fe.score(sum)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, s := range scores {
		total += s
	}

	fe.mu.Lock()
	if len(summaries) > 0 {
		fe.lastSummary = summaries[0]
	}
	fe.mu.Unlock()

	return total / float64(len(scores))
}

// run simulates one seed until death or the turn cap.
func (fe *FitnessEvaluator) run(raw []float64, seed uint64) (telemetry.Summary, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return telemetry.Summary{}, err
	}
	if err := fe.params.Apply(cfg, fe.species, raw); err != nil {
		return telemetry.Summary{}, err
	}

	sim, err := game.New(cfg, game.Options{
		Seed:    seed,
		Species: fe.species,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	if err != nil {
		return telemetry.Summary{}, err
	}
	for i := 0; i < fe.turns && sim.Alive(); i++ {
		sim.Step()
	}
	return sim.Summary(), nil
}

// score is the squared mean EMA balance plus a penalty for dying early.
func (fe *FitnessEvaluator) score(s telemetry.Summary) float64 {
	mean := s.AvgBalance.Mean / balanceScale
	survived := float64(s.AliveTurns) / float64(max(1, fe.turns))
	return mean*mean + deathPenalty*(1-survived)
}
