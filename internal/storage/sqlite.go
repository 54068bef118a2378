// Package storage provides SQLite-based persistence for optimizer runs and
// their per-generation history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// RunStatus is the lifecycle state of an optimizer run.
type RunStatus string

// Run statuses.
const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
	StatusFailed    RunStatus = "failed"
)

// Run is one optimizer invocation.
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time // Zero while running
	Status         RunStatus
	Seed           int64
	PopulationSize int
	Rounds         int
	TargetScore    uint64
	MaxGenerations int
	Generations    int
	BestScore      uint64
	BestWeights    tetris.Weights
}

// Generation is the recorded outcome of one generation of a run.
type Generation struct {
	RunID         string
	Generation    int
	BestScore     uint64
	BestEverScore uint64
	AvgScore      float64
	WorstScore    uint64
	BestWeights   tetris.Weights // Best-ever weights after this generation
	Elapsed       time.Duration
	CreatedAt     time.Time
}

// timeLayout is how timestamps written by the store are encoded. Fixed
// width in UTC, so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

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

	store := &Store{db: db, now: time.Now}

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
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			status TEXT NOT NULL,
			seed INTEGER NOT NULL DEFAULT 0,
			population_size INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			target_score INTEGER NOT NULL,
			max_generations INTEGER NOT NULL,
			generations INTEGER NOT NULL DEFAULT 0,
			best_score INTEGER NOT NULL DEFAULT 0,
			best_weights TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_best ON runs(best_score DESC);

		CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			best_score INTEGER NOT NULL,
			best_ever_score INTEGER NOT NULL,
			avg_score REAL NOT NULL,
			worst_score INTEGER NOT NULL,
			best_weights TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (run_id, generation)
		);
		CREATE INDEX IF NOT EXISTS idx_generations_run ON generations(run_id, generation);
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

// CreateRun records a new run in the running state. An empty ID is
// replaced with a fresh UUID. Returns the stored run.
func (s *Store) CreateRun(r Run) (Run, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = s.now()
	}
	r.Status = StatusRunning

	_, err := s.db.Exec(
		`INSERT INTO runs (id, started_at, status, seed, population_size, rounds,
		                   target_score, max_generations, generations, best_score, best_weights)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UTC().Format(timeLayout), string(r.Status), r.Seed,
		r.PopulationSize, r.Rounds, int64(r.TargetScore), r.MaxGenerations,
		r.Generations, int64(r.BestScore), encodeWeights(r),
	)
	if err != nil {
		return r, fmt.Errorf("storage: cannot create run: %w", err)
	}
	return r, nil
}

// SaveGeneration records one generation and advances the run's progress
// counters in the same transaction.
func (s *Store) SaveGeneration(g Generation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	weights := g.BestWeights.Encode()
	if _, err := tx.Exec(
		`INSERT INTO generations (run_id, generation, best_score, best_ever_score,
		                          avg_score, worst_score, best_weights, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, int64(g.BestScore), int64(g.BestEverScore),
		g.AvgScore, int64(g.WorstScore), weights, g.Elapsed.Milliseconds(),
	); err != nil {
		return fmt.Errorf("storage: cannot save generation %d: %w", g.Generation, err)
	}

	res, err := tx.Exec(
		`UPDATE runs SET generations = ?, best_score = ?, best_weights = ? WHERE id = ?`,
		g.Generation, int64(g.BestEverScore), weights, g.RunID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update run %s: %w", g.RunID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: run %s not found", g.RunID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit generation %d: %w", g.Generation, err)
	}
	return nil
}

// FinishRun stamps the run's final status, generation count and best
// weights.
func (s *Store) FinishRun(id string, status RunStatus, generations int, bestScore uint64, best tetris.Weights) error {
	res, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, status = ?, generations = ?, best_score = ?, best_weights = ?
		 WHERE id = ?`,
		s.now().UTC().Format(timeLayout), string(status), generations,
		int64(bestScore), best.Encode(), id,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("storage: run %s not found", id)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, status, seed, population_size, rounds,
	target_score, max_generations, generations, best_score, best_weights`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		r                     Run
		startedAt, finishedAt any
		status, weights       string
		target, best          int64
	)
	if err := row.Scan(&r.ID, &startedAt, &finishedAt, &status, &r.Seed,
		&r.PopulationSize, &r.Rounds, &target, &r.MaxGenerations,
		&r.Generations, &best, &weights); err != nil {
		return r, err
	}
	r.StartedAt = parseTime(startedAt)
	r.FinishedAt = parseTime(finishedAt)
	r.Status = RunStatus(status)
	r.TargetScore = uint64(target)
	r.BestScore = uint64(best)
	if weights != "" {
		w, err := tetris.ParseWeights(weights)
		if err != nil {
			return r, fmt.Errorf("run %s: %w", r.ID, err)
		}
		r.BestWeights = w
	}
	return r, nil
}

// Run returns the run with the given ID, or nil if there is none.
func (s *Store) Run(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run %s: %w", id, err)
	}
	return &r, nil
}

// RunByPrefix resolves an abbreviated run ID. Returns nil if nothing
// matches and an error if the prefix is ambiguous.
func (s *Store) RunByPrefix(prefix string) (*Run, error) {
	if prefix == "" {
		return nil, errors.New("storage: empty run id")
	}
	runs, err := s.queryRuns(`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' ORDER BY started_at DESC LIMIT 2`, prefix)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return &runs[0], nil
	}
	return nil, fmt.Errorf("storage: run id %q is ambiguous", prefix)
}

// RecentRuns returns the most recently started runs.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryRuns(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
}

// BestRun returns the run with the highest best score, or nil if no run has
// completed a generation.
func (s *Store) BestRun() (*Run, error) {
	runs, err := s.queryRuns(`SELECT ` + runColumns + ` FROM runs WHERE generations > 0
		ORDER BY best_score DESC, started_at ASC LIMIT 1`)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Generations returns a run's history in generation order.
func (s *Store) Generations(runID string) ([]Generation, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, best_score, best_ever_score, avg_score,
		        worst_score, best_weights, elapsed_ms, created_at
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var (
			g                 Generation
			best, ever, worst int64
			weights           string
			elapsedMS         int64
			createdAt         any
		)
		if err := rows.Scan(&g.RunID, &g.Generation, &best, &ever, &g.AvgScore,
			&worst, &weights, &elapsedMS, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan generation: %w", err)
		}
		g.BestScore = uint64(best)
		g.BestEverScore = uint64(ever)
		g.WorstScore = uint64(worst)
		g.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		g.CreatedAt = parseTime(createdAt)
		if g.BestWeights, err = tetris.ParseWeights(weights); err != nil {
			return nil, fmt.Errorf("storage: generation %d: %w", g.Generation, err)
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return gens, nil
}

// encodeWeights leaves the column empty until a run has a best member.
func encodeWeights(r Run) string {
	if r.Generations == 0 && r.BestScore == 0 {
		return ""
	}
	return r.BestWeights.Encode()
}

// parseTime handles both driver-decoded timestamps and their text forms.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		for _, layout := range []string{timeLayout, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed
			}
		}
	case []byte:
		return parseTime(string(v))
	}
	return time.Time{}
}
