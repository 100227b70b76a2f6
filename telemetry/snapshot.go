package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the end-of-run state of a simulation.
type Snapshot struct {
	Version  int    `json:"version"`
	Seed     uint64 `json:"seed"`
	Species  string `json:"species"`
	Region   string `json:"region"`
	AgeTurns int    `json:"age_turns"`

	Current   TurnRecord         `json:"current"`
	Modifiers []ModifierState    `json:"modifiers"`
	Lineage   LineageState       `json:"lineage"`
	Brood     []OffspringState   `json:"brood,omitempty"`
	Lives     []GenerationRecord `json:"lives,omitempty"`
	Bookmarks []Bookmark         `json:"bookmarks,omitempty"`
}

// ModifierState is one active stat modifier.
type ModifierState struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Kind      string  `json:"kind"`
	SourceID  string  `json:"source_id"`
	Stat      string  `json:"stat"`
	Amount    float64 `json:"amount"`
	Remaining int     `json:"remaining,omitempty"` // Zero for permanent modifiers
}

// LineageState is the JSON form of inherited traits.
type LineageState struct {
	Generation int                `json:"generation"`
	Flags      []string           `json:"flags,omitempty"`
	Biases     map[string]float64 `json:"biases,omitempty"` // Stat code -> bias
}

// OffspringState is one surviving offspring eligible to succeed the subject.
type OffspringState struct {
	BornTurn int          `json:"born_turn"`
	Lineage  LineageState `json:"lineage"`
}

// SaveSnapshot writes the snapshot to dir/snapshot.json and returns the path.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, "snapshot.json")
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}
	return &snapshot, nil
}
