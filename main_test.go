package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/wildlife/config"
	"github.com/pthm-cable/wildlife/game"
	"github.com/pthm-cable/wildlife/telemetry"
)

func testOptions(t *testing.T) config.RunOptions {
	t.Helper()
	dir := t.TempDir()
	return config.RunOptions{
		Seed:      42,
		Species:   "red_fox",
		Turns:     5,
		OutputDir: filepath.Join(dir, "out"),
		Archive:   filepath.Join(dir, "runs.db"),
		LogLevel:  "error",
	}
}

// SQLite removes the WAL file when the last connection closes.
func assertArchiveClosed(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path + "-wal"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("archive WAL still present after run: %v", err)
	}
}

func TestRunClosesOnStartFailure(t *testing.T) {
	opts := testOptions(t)
	opts.Species = "dodo"

	err := run(opts, io.Discard)
	if !errors.Is(err, game.ErrUnknownSpecies) {
		t.Fatalf("run = %v, want ErrUnknownSpecies", err)
	}
	assertArchiveClosed(t, opts.Archive)
	if _, err := os.Stat(filepath.Join(opts.OutputDir, "config.yaml")); err != nil {
		t.Errorf("config not written before failure: %v", err)
	}
}

func TestRunArchivesAndCloses(t *testing.T) {
	opts := testOptions(t)

	if err := run(opts, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	assertArchiveClosed(t, opts.Archive)

	a, err := telemetry.OpenArchive(opts.Archive)
	if err != nil {
		t.Fatalf("reopen archive: %v", err)
	}
	defer a.Close()
	info, err := a.Run(telemetry.RunID(opts.Seed, opts.Species, "temperate_forest"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if info.Turns == 0 || info.Turns > opts.Turns {
		t.Errorf("archived turns = %d, want 1..%d", info.Turns, opts.Turns)
	}
}

func TestRunRejectsBadLogLevel(t *testing.T) {
	opts := testOptions(t)
	opts.LogLevel = "loud"
	if err := run(opts, io.Discard); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}
