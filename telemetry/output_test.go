package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/wildlife/config"
)

func TestNilOutputManagerIsNoop(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir: om=%v err=%v", om, err)
	}
	if err := om.WriteTurn(TurnRecord{}); err != nil {
		t.Error(err)
	}
	if path, err := om.WriteSnapshot(&Snapshot{}); err != nil || path != "" {
		t.Errorf("snapshot on nil manager: %q %v", path, err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 0; i < 3; i++ {
		rec := TurnRecord{Turn: i, Season: "spring", Alive: true, Narratives: "cold;thriving"}
		if err := om.WriteTurn(rec); err != nil {
			t.Fatalf("WriteTurn: %v", err)
		}
	}
	if err := om.WriteGeneration(GenerationRecord{Generation: 1, Species: "red_fox"}); err != nil {
		t.Fatalf("WriteGeneration: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkLitter, Turn: 2}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.MustLoadDefaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "turns.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("turns.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "turn,year,month") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "turn,year") != 1 {
		t.Error("header written more than once")
	}

	for _, name := range []string{"generations.csv", "bookmarks.csv", "config.yaml"} {
		if fi, err := os.Stat(filepath.Join(dir, name)); err != nil || fi.Size() == 0 {
			t.Errorf("%s missing or empty: %v", name, err)
		}
	}
}
