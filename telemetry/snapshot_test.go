package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	dir := t.TempDir()

	current := TurnRecord{Turn: 120, Generation: 2, Season: "winter", WeightKg: 5.8, Alive: true}
	current.Health = 72

	snap := &Snapshot{
		Version:  SnapshotVersion,
		Seed:     42,
		Species:  "red_fox",
		Region:   "temperate_forest",
		AgeTurns: 70,
		Current:  current,
		Modifiers: []ModifierState{
			{ID: "a", Source: "Weather: blizzard", Kind: "weather", SourceID: "weather", Stat: "CLI", Amount: 15, Remaining: 1},
			{ID: "b", Source: "Adult", Kind: "age_phase", SourceID: "age_phase", Stat: "VIG", Amount: 5},
		},
		Lineage: LineageState{Generation: 2, Flags: []string{"robust"}, Biases: map[string]float64{"HEA": 0.85}},
		Brood:   []OffspringState{{BornTurn: 110, Lineage: LineageState{Generation: 3}}},
		Lives:   []GenerationRecord{{Generation: 1, DeathCause: "Hypothermia", AgeTurns: 200}},
	}

	path, err := SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "snapshot.json" {
		t.Errorf("path = %s", path)
	}

	got, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.Current.Turn != 120 || got.Current.Health != 72 {
		t.Errorf("current = %+v", got.Current)
	}
	if len(got.Modifiers) != 2 || got.Modifiers[0].Remaining != 1 {
		t.Errorf("modifiers = %+v", got.Modifiers)
	}
	if got.Lineage.Biases["HEA"] != 0.85 {
		t.Errorf("lineage = %+v", got.Lineage)
	}
	if len(got.Brood) != 1 || got.Lives[0].DeathCause != "Hypothermia" {
		t.Errorf("brood/lives not restored: %+v %+v", got.Brood, got.Lives)
	}
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}
