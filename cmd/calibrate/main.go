// Command calibrate searches a species' forage and activity constants for
// values that keep the energy budget balanced over a run.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/wildlife/config"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval             int     `csv:"eval"`
	Objective        float64 `csv:"objective"`
	ForageBaseKcal   float64 `csv:"forage_base_kcal"`
	ActivityFraction float64 `csv:"activity_fraction"`
	MeanAvgBalance   float64 `csv:"mean_avg_balance"`
	AliveTurns       int     `csv:"alive_turns"`
}

type options struct {
	configPath string
	species    string
	turns      int
	seeds      int
	maxEvals   int
	outputDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.species, "species", "red_fox", "Species to calibrate")
	flag.IntVar(&opts.turns, "turns", 208, "Turns per evaluation run")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 150, "Maximum number of evaluations")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(opts); err != nil {
		slog.Error("calibration failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	baseCfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sp, ok := baseCfg.SpeciesByName(opts.species)
	if !ok {
		return fmt.Errorf("unknown species %q", opts.species)
	}

	params := NewParamVector()
	evalSeeds := make([]uint64, opts.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = uint64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, opts.configPath, opts.species, opts.turns, evalSeeds)

	logFile, err := os.Create(filepath.Join(opts.outputDir, "calibrate_log.csv"))
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	defer logFile.Close()

	evalCount := 0
	headerWritten := false
	best := struct {
		objective float64
		raw       []float64
	}{objective: -1}
	start := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			obj := evaluator.Evaluate(raw)
			evalCount++

			if best.raw == nil || obj < best.objective {
				best.objective = obj
				best.raw = raw
			}

			sum := evaluator.LastSummary()
			row := []evalRow{{
				Eval:             evalCount,
				Objective:        obj,
				ForageBaseKcal:   raw[0],
				ActivityFraction: raw[1],
				MeanAvgBalance:   sum.AvgBalance.Mean,
				AliveTurns:       sum.AliveTurns,
			}}
			var werr error
			if !headerWritten {
				werr = gocsv.Marshal(row, logFile)
				headerWritten = true
			} else {
				werr = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if werr != nil {
				slog.Error("failed to write eval log", "error", werr)
			}

			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", opts.maxEvals,
				"objective", obj,
				"best", best.objective,
				"elapsed", time.Since(start).Round(time.Second).String(),
			)
			return obj
		},
	}

	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}
	method := &optimize.NelderMead{}

	slog.Info("starting calibration",
		"species", opts.species,
		"params", params.Dim(),
		"seeds", opts.seeds,
		"turns", opts.turns,
	)
	result, err := optimize.Minimize(problem, params.Normalize(params.Extract(sp)), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if best.raw == nil && result != nil {
		best.raw = params.Denormalize(result.X)
	}
	if best.raw == nil {
		return errors.New("no evaluations completed")
	}

	attrs := []any{"evals", evalCount, "objective", best.objective}
	for i, s := range params.Specs {
		attrs = append(attrs, s.Name, best.raw[i])
	}
	slog.Info("calibration complete", attrs...)

	if err := params.Apply(baseCfg, opts.species, best.raw); err != nil {
		return fmt.Errorf("apply best parameters: %w", err)
	}
	out := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := baseCfg.WriteYAML(out); err != nil {
		return fmt.Errorf("write best config: %w", err)
	}
	fmt.Printf("Best config saved to: %s\n", out)
	return nil
}
