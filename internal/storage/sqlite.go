// Package storage provides SQLite-based persistence for simulation runs and
// file-based world snapshots.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tilerules/internal/world"
)

// Store manages the SQLite database connection for the run log.
type Store struct {
	db *sql.DB
}

// RunRecord is one finished run of a scenario.
type RunRecord struct {
	ID         int64
	ScenarioID string
	Seed       int64
	Ticks      int               // ticks requested
	FiredTicks int               // ticks in which at least one rule fired
	FinalTick  uint64            // world tick counter at the end of the run
	Actors     int               // actors on the current stage at the end
	Globals    map[string]string // final global values
	Source     string            // "run", "watch" or "preview"
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scenario_id TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL,
			fired_ticks INTEGER NOT NULL DEFAULT 0,
			final_tick INTEGER NOT NULL DEFAULT 0,
			actors INTEGER NOT NULL DEFAULT 0,
			globals TEXT NOT NULL DEFAULT '{}',
			source TEXT NOT NULL DEFAULT 'run',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_scenario_id ON runs(scenario_id);
		CREATE INDEX IF NOT EXISTS idx_runs_recent ON runs(created_at DESC, id DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(r RunRecord) (int64, error) {
	if r.ScenarioID == "" {
		return 0, errors.New("storage: run without scenario id")
	}
	globals := r.Globals
	if globals == nil {
		globals = map[string]string{}
	}
	encoded, err := json.Marshal(globals)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot encode globals: %w", err)
	}
	source := r.Source
	if source == "" {
		source = "run"
	}

	result, err := s.db.Exec(
		`INSERT INTO runs (scenario_id, seed, ticks, fired_ticks, final_tick, actors, globals, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ScenarioID, r.Seed, r.Ticks, r.FiredTicks, int64(r.FinalTick), r.Actors, string(encoded), source,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, scenario_id, seed, ticks, fired_ticks, final_tick, actors, globals, source, created_at`

// RecentRuns retrieves the most recent runs across all scenarios.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RunsForScenario retrieves the most recent runs of one scenario.
func (s *Store) RunsForScenario(scenarioID string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE scenario_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		scenarioID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var finalTick int64
		var globals string
		var createdAt any
		if err := rows.Scan(&r.ID, &r.ScenarioID, &r.Seed, &r.Ticks, &r.FiredTicks,
			&finalTick, &r.Actors, &globals, &r.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.FinalTick = uint64(finalTick)
		if err := json.Unmarshal([]byte(globals), &r.Globals); err != nil {
			return nil, fmt.Errorf("storage: run %d: cannot decode globals: %w", r.ID, err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// ClearRuns deletes all runs of the given scenario, or every run when
// scenarioID is empty. Returns the number of deleted rows.
func (s *Store) ClearRuns(scenarioID string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if scenarioID == "" {
		res, err = s.db.Exec("DELETE FROM runs")
	} else {
		res, err = s.db.Exec("DELETE FROM runs WHERE scenario_id = ?", scenarioID)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count deleted runs: %w", err)
	}
	return n, nil
}

// ScenarioStats contains aggregated statistics for a scenario.
type ScenarioStats struct {
	ScenarioID string
	Runs       int
	TotalTicks int64
	MaxTicks   int
	AvgFired   float64
	LastRun    time.Time
}

// GetScenarioStats retrieves aggregated statistics for one scenario.
func (s *Store) GetScenarioStats(scenarioID string) (*ScenarioStats, error) {
	stats := &ScenarioStats{ScenarioID: scenarioID}

	var lastRun any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(ticks), 0), COALESCE(MAX(ticks), 0),
		        COALESCE(AVG(fired_ticks), 0), MAX(created_at)
		 FROM runs WHERE scenario_id = ?`,
		scenarioID,
	).Scan(&stats.Runs, &stats.TotalTicks, &stats.MaxTicks, &stats.AvgFired, &lastRun)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get scenario stats: %w", err)
	}
	stats.LastRun = parseTime(lastRun)

	return stats, nil
}

// GetAllScenarioStats retrieves statistics for every scenario that has runs.
func (s *Store) GetAllScenarioStats() (map[string]*ScenarioStats, error) {
	rows, err := s.db.Query(
		`SELECT scenario_id, COUNT(*), SUM(ticks), MAX(ticks), AVG(fired_ticks), MAX(created_at)
		 FROM runs
		 GROUP BY scenario_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all scenario stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ScenarioStats)
	for rows.Next() {
		var st ScenarioStats
		var lastRun any
		if err := rows.Scan(&st.ScenarioID, &st.Runs, &st.TotalTicks, &st.MaxTicks, &st.AvgFired, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastRun = parseTime(lastRun)
		stats[st.ScenarioID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// NewRunRecord summarizes a finished run of a scenario ending in w.
func NewRunRecord(scenarioID string, w world.World, ticks, fired int, source string) RunRecord {
	r := RunRecord{
		ScenarioID: scenarioID,
		Seed:       w.Seed,
		Ticks:      ticks,
		FiredTicks: fired,
		FinalTick:  w.Tick,
		Globals:    make(map[string]string, len(w.Globals)),
		Source:     source,
	}
	if stage, err := w.CurrentStage(); err == nil {
		r.Actors = stage.Actors.Len()
	}
	for id, g := range w.Globals {
		r.Globals[id] = g.Value
	}
	return r
}
