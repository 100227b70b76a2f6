package telemetry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	seed         INTEGER NOT NULL,
	species      TEXT NOT NULL,
	region       TEXT NOT NULL,
	turns        INTEGER NOT NULL,
	summary_json TEXT,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	run_id      TEXT NOT NULL,
	turn        INTEGER NOT NULL,
	generation  INTEGER NOT NULL,
	weight_kg   REAL NOT NULL,
	balance     REAL NOT NULL,
	alive       INTEGER NOT NULL,
	record_json TEXT NOT NULL,
	PRIMARY KEY (run_id, turn, generation),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS generations (
	run_id              TEXT NOT NULL,
	generation          INTEGER NOT NULL,
	death_cause         TEXT NOT NULL,
	age_turns           INTEGER NOT NULL,
	offspring           INTEGER NOT NULL,
	estimated_survivors INTEGER NOT NULL,
	record_json         TEXT NOT NULL,
	PRIMARY KEY (run_id, generation),
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);
`

// runNamespace seeds deterministic run ids.
var runNamespace = uuid.MustParse("3b0d7f52-9a6e-4d1c-8e27-5f4a1c9b6d30")

// RunID derives a stable id from the inputs that determine a run.
func RunID(seed uint64, species, region string) string {
	return uuid.NewSHA1(runNamespace, []byte(fmt.Sprintf("%d:%s:%s", seed, species, region))).String()
}

// RunInfo identifies an archived run.
type RunInfo struct {
	ID        string
	Seed      uint64
	Species   string
	Region    string
	Turns     int
	Summary   Summary
	CreatedAt time.Time
}

// Archive persists run histories in SQLite.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens or creates the archive at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database. Safe on a nil archive.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	return a.db.Close()
}

// SaveRun stores a run's full history, replacing any earlier copy of the same run.
func (a *Archive) SaveRun(info RunInfo, turns []TurnRecord, gens []GenerationRecord) error {
	if a == nil {
		return nil
	}
	if info.ID == "" {
		info.ID = RunID(info.Seed, info.Species, info.Region)
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}
	summaryJSON, err := json.Marshal(info.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"turns", "generations", "runs"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, info.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	_, err = tx.Exec(
		`INSERT INTO runs (run_id, seed, species, region, turns, summary_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		info.ID, int64(info.Seed), info.Species, info.Region, info.Turns, string(summaryJSON), info.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	turnStmt, err := tx.Prepare(`INSERT INTO turns (run_id, turn, generation, weight_kg, balance, alive, record_json) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare turns: %w", err)
	}
	defer turnStmt.Close()
	for _, r := range turns {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal turn %d: %w", r.Turn, err)
		}
		if _, err := turnStmt.Exec(info.ID, r.Turn, r.Generation, r.WeightKg, r.Balance, boolInt(r.Alive), string(data)); err != nil {
			return fmt.Errorf("insert turn %d: %w", r.Turn, err)
		}
	}

	genStmt, err := tx.Prepare(`INSERT INTO generations (run_id, generation, death_cause, age_turns, offspring, estimated_survivors, record_json) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare generations: %w", err)
	}
	defer genStmt.Close()
	for _, g := range gens {
		data, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal generation %d: %w", g.Generation, err)
		}
		if _, err := genStmt.Exec(info.ID, g.Generation, g.DeathCause, g.AgeTurns, g.Offspring, g.EstimatedSurvivors, string(data)); err != nil {
			return fmt.Errorf("insert generation %d: %w", g.Generation, err)
		}
	}

	return tx.Commit()
}

// Run returns the stored metadata of a run.
func (a *Archive) Run(id string) (RunInfo, error) {
	var (
		info        RunInfo
		seed        int64
		summaryJSON sql.NullString
		createdStr  string
	)
	err := a.db.QueryRow(
		`SELECT run_id, seed, species, region, turns, summary_json, created_at FROM runs WHERE run_id = ?`, id,
	).Scan(&info.ID, &seed, &info.Species, &info.Region, &info.Turns, &summaryJSON, &createdStr)
	if err != nil {
		return RunInfo{}, fmt.Errorf("get run %s: %w", id, err)
	}
	info.Seed = uint64(seed)
	info.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	if summaryJSON.Valid {
		if err := json.Unmarshal([]byte(summaryJSON.String), &info.Summary); err != nil {
			return RunInfo{}, fmt.Errorf("decode summary: %w", err)
		}
	}
	return info, nil
}

// Turns returns a run's turn history in order.
func (a *Archive) Turns(runID string) ([]TurnRecord, error) {
	rows, err := a.db.Query(`SELECT record_json FROM turns WHERE run_id = ? ORDER BY generation, turn`, runID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var records []TurnRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		var r TurnRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Generations returns a run's finished lives in order.
func (a *Archive) Generations(runID string) ([]GenerationRecord, error) {
	rows, err := a.db.Query(`SELECT record_json FROM generations WHERE run_id = ? ORDER BY generation`, runID)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		var g GenerationRecord
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return nil, fmt.Errorf("decode generation: %w", err)
		}
		records = append(records, g)
	}
	return records, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
