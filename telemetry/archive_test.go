package telemetry

import (
	"path/filepath"
	"testing"
)

func tempArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRunIDIsDeterministic(t *testing.T) {
	a := RunID(42, "red_fox", "temperate_forest")
	if a != RunID(42, "red_fox", "temperate_forest") {
		t.Error("same inputs produced different ids")
	}
	if a == RunID(43, "red_fox", "temperate_forest") {
		t.Error("different seeds share an id")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	a := tempArchive(t)

	turns := []TurnRecord{
		{Turn: 0, Generation: 1, WeightKg: 6, Alive: true, Narratives: "thriving"},
		{Turn: 1, Generation: 1, WeightKg: 5.9, Alive: true},
	}
	gens := []GenerationRecord{{Generation: 1, Species: "red_fox", DeathCause: "Starvation", AgeTurns: 90, Offspring: 3, EstimatedSurvivors: 96}}
	info := RunInfo{Seed: 42, Species: "red_fox", Region: "temperate_forest", Turns: 2, Summary: Summarize(turns)}

	if err := a.SaveRun(info, turns, gens); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	id := RunID(42, "red_fox", "temperate_forest")
	got, err := a.Run(id)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got.Seed != 42 || got.Summary.Turns != 2 {
		t.Errorf("run = %+v", got)
	}

	stored, err := a.Turns(id)
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(stored) != 2 || stored[1].WeightKg != 5.9 || stored[0].Narratives != "thriving" {
		t.Errorf("turns = %+v", stored)
	}

	lives, err := a.Generations(id)
	if err != nil {
		t.Fatalf("Generations: %v", err)
	}
	if len(lives) != 1 || lives[0].DeathCause != "Starvation" || lives[0].EstimatedSurvivors != 96 {
		t.Errorf("generations = %+v", lives)
	}

	var estimated int
	if err := a.db.QueryRow(`SELECT estimated_survivors FROM generations WHERE run_id = ?`, id).Scan(&estimated); err != nil {
		t.Fatalf("query estimated_survivors: %v", err)
	}
	if estimated != 96 {
		t.Errorf("estimated_survivors column = %d, want 96", estimated)
	}
}

func TestArchiveReplacesRerun(t *testing.T) {
	a := tempArchive(t)
	info := RunInfo{Seed: 7, Species: "chinook_salmon", Region: "coastal_shelf"}

	first := []TurnRecord{{Turn: 0, Generation: 1}, {Turn: 1, Generation: 1}, {Turn: 2, Generation: 1}}
	if err := a.SaveRun(info, first, nil); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveRun(info, first[:1], nil); err != nil {
		t.Fatalf("second SaveRun: %v", err)
	}

	stored, err := a.Turns(RunID(7, "chinook_salmon", "coastal_shelf"))
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Errorf("rerun kept %d turns, want 1", len(stored))
	}
}

func TestNilArchive(t *testing.T) {
	var a *Archive
	if err := a.SaveRun(RunInfo{}, nil, nil); err != nil {
		t.Error(err)
	}
	if err := a.Close(); err != nil {
		t.Error(err)
	}
}
