package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/game"
	"github.com/pthm-cable/wildlife/telemetry"
)

func main() {
	// Environment supplies the defaults, flags override them.
	opts, err := config.LoadRunOptions()
	if err != nil {
		slog.Error("failed to read environment", "error", err)
		os.Exit(1)
	}

	flag.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Path to config.yaml (empty = use defaults)")
	flag.Uint64Var(&opts.Seed, "seed", opts.Seed, "RNG seed")
	flag.StringVar(&opts.Species, "species", opts.Species, "Species to simulate")
	flag.StringVar(&opts.Region, "region", opts.Region, "Starting region (empty = species' seasonal region)")
	flag.IntVar(&opts.Turns, "turns", opts.Turns, "Turns to simulate (0 = until the line ends)")
	flag.BoolVar(&opts.FastForward, "fast-forward", opts.FastForward, "Advance in fast-forward chunks, recording one snapshot per chunk")
	flag.StringVar(&opts.OutputDir, "output-dir", opts.OutputDir, "Output directory for CSV logs, config and snapshot")
	flag.StringVar(&opts.Archive, "archive", opts.Archive, "SQLite file to archive the run into")
	flag.BoolVar(&opts.Succeed, "succeed", opts.Succeed, "Continue with the strongest offspring when the subject dies")
	flag.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")

	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run executes one simulation. Output files and the archive are closed
// before it returns on every path.
func run(opts config.RunOptions, stdout io.Writer) (err error) {
	level, err := game.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := game.NewLogger(stdout, level)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return fmt.Errorf("create output manager: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()
	if err := out.WriteConfig(cfg); err != nil {
		logger.Error("failed to write config", "error", err)
	}

	var archive *telemetry.Archive
	if opts.Archive != "" {
		archive, err = telemetry.OpenArchive(opts.Archive)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer func() {
			if cerr := archive.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("close archive: %w", cerr))
			}
		}()
	}

	sim, err := game.New(cfg, game.Options{
		Seed:    opts.Seed,
		Species: opts.Species,
		Region:  opts.Region,
		Logger:  logger,
		Archive: archive,
		Output:  out,
	})
	if err != nil {
		return fmt.Errorf("start simulation: %w", err)
	}

	chunk := 1
	if opts.FastForward {
		chunk = max(1, cfg.Time.FastForwardTurns)
	}

	for ran := 0; opts.Turns == 0 || ran < opts.Turns; {
		if !sim.Alive() {
			if !opts.Succeed {
				break
			}
			if err := sim.Succeed(); err != nil {
				if errors.Is(err, game.ErrNoHeir) {
					logger.Info("line ended", "generations", len(sim.Lives()))
				} else {
					logger.Error("succession failed", "error", err)
				}
				break
			}
		}

		n := chunk
		if opts.Turns > 0 {
			n = min(n, opts.Turns-ran)
		}
		if n == 1 {
			sim.Step()
		} else {
			sim.FastForward(n)
		}
		ran += n
	}

	if err := sim.Save(); err != nil {
		logger.Error("failed to save run", "error", err)
	}
	logger.Info("simulation finished",
		"summary", sim.Summary(),
		"generations", len(sim.Lives()),
		"bookmarks", len(sim.Bookmarks()),
		"perf", sim.PerfStats(),
	)
	return nil
}
