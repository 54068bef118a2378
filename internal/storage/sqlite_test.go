package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// fixedClock makes each call return a time one second after the last.
func fixedClock(store *Store) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
}

func newRun(t *testing.T, store *Store) Run {
	t.Helper()
	r, err := store.CreateRun(Run{
		Seed:           42,
		PopulationSize: 1000,
		Rounds:         5,
		TargetScore:    100000,
		MaxGenerations: 1000,
	})
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	return r
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreReopenKeepsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	r := newRun(t, store)
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()

	got, err := store.Run(r.ID)
	if err != nil || got == nil {
		t.Fatalf("Run() after reopen = %v, %v", got, err)
	}
}

func TestStoreCreateAndGetRun(t *testing.T) {
	store := openTestStore(t)
	fixedClock(store)

	r := newRun(t, store)
	if len(r.ID) != 36 {
		t.Errorf("CreateRun() id = %q, want a UUID", r.ID)
	}

	got, err := store.Run(r.ID)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got == nil {
		t.Fatal("Run() returned nil for a stored run")
	}
	if got.Status != StatusRunning {
		t.Errorf("Status = %s, want running", got.Status)
	}
	if got.Seed != 42 || got.PopulationSize != 1000 || got.Rounds != 5 ||
		got.TargetScore != 100000 || got.MaxGenerations != 1000 {
		t.Errorf("Run() = %+v, fields not preserved", got)
	}
	if !got.StartedAt.Equal(r.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, r.StartedAt)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("FinishedAt = %v, want zero while running", got.FinishedAt)
	}
	if got.BestWeights != (tetris.Weights{}) {
		t.Errorf("BestWeights = %v, want zero before the first generation", got.BestWeights)
	}
}

func TestStoreRunMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Run("no-such-run")
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Run() = %+v, want nil", got)
	}
}

func TestStoreSaveGeneration(t *testing.T) {
	store := openTestStore(t)
	r := newRun(t, store)

	gens := []Generation{
		{RunID: r.ID, Generation: 1, BestScore: 50, BestEverScore: 50, AvgScore: 12.5, WorstScore: 3,
			BestWeights: tetris.Weights{1, 2, 3, 4, 5, 6}, Elapsed: 1500 * time.Millisecond},
		{RunID: r.ID, Generation: 2, BestScore: 40, BestEverScore: 50, AvgScore: 20, WorstScore: 5,
			BestWeights: tetris.Weights{1, 2, 3, 4, 5, 6}, Elapsed: 900 * time.Millisecond},
	}
	for _, g := range gens {
		if err := store.SaveGeneration(g); err != nil {
			t.Fatalf("SaveGeneration(%d) failed: %v", g.Generation, err)
		}
	}

	got, err := store.Generations(r.ID)
	if err != nil {
		t.Fatalf("Generations() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Generations() returned %d rows, want 2", len(got))
	}
	for i, g := range got {
		want := gens[i]
		if g.Generation != want.Generation || g.BestScore != want.BestScore ||
			g.BestEverScore != want.BestEverScore || g.AvgScore != want.AvgScore ||
			g.WorstScore != want.WorstScore || g.BestWeights != want.BestWeights ||
			g.Elapsed != want.Elapsed {
			t.Errorf("generation %d = %+v, want %+v", i+1, g, want)
		}
	}

	run, err := store.Run(r.ID)
	if err != nil || run == nil {
		t.Fatalf("Run() = %v, %v", run, err)
	}
	if run.Generations != 2 || run.BestScore != 50 || run.BestWeights != gens[1].BestWeights {
		t.Errorf("run progress = %d gens, best %d %v", run.Generations, run.BestScore, run.BestWeights)
	}
}

func TestStoreSaveGenerationErrors(t *testing.T) {
	store := openTestStore(t)
	r := newRun(t, store)

	err := store.SaveGeneration(Generation{RunID: "unknown", Generation: 1})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("SaveGeneration() for unknown run = %v, want not found", err)
	}

	g := Generation{RunID: r.ID, Generation: 1}
	if err := store.SaveGeneration(g); err != nil {
		t.Fatalf("SaveGeneration() failed: %v", err)
	}
	if err := store.SaveGeneration(g); err == nil {
		t.Error("SaveGeneration() should reject a duplicate generation")
	}
}

func TestStoreFinishRun(t *testing.T) {
	store := openTestStore(t)
	fixedClock(store)
	r := newRun(t, store)

	best := tetris.Weights{1497, 1605, 225, 142, 1095, 718}
	if err := store.FinishRun(r.ID, StatusCancelled, 7, 5125, best); err != nil {
		t.Fatalf("FinishRun() failed: %v", err)
	}

	got, err := store.Run(r.ID)
	if err != nil || got == nil {
		t.Fatalf("Run() = %v, %v", got, err)
	}
	if got.Status != StatusCancelled || got.Generations != 7 || got.BestScore != 5125 || got.BestWeights != best {
		t.Errorf("finished run = %+v", got)
	}
	if !got.FinishedAt.After(got.StartedAt) {
		t.Errorf("FinishedAt %v should follow StartedAt %v", got.FinishedAt, got.StartedAt)
	}

	if err := store.FinishRun("unknown", StatusFailed, 0, 0, best); err == nil {
		t.Error("FinishRun() should fail for an unknown run")
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)
	fixedClock(store)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, newRun(t, store).ID)
	}

	runs, err := store.RecentRuns(3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("RecentRuns(3) returned %d runs", len(runs))
	}
	// newest first
	for i, r := range runs {
		if want := ids[len(ids)-1-i]; r.ID != want {
			t.Errorf("runs[%d] = %s, want %s", i, r.ID, want)
		}
	}
}

func TestStoreBestRun(t *testing.T) {
	store := openTestStore(t)

	got, err := store.BestRun()
	if err != nil || got != nil {
		t.Fatalf("BestRun() on empty store = %v, %v; want nil", got, err)
	}

	low, high := newRun(t, store), newRun(t, store)
	newRun(t, store) // no generations yet
	w := tetris.Weights{9, 9, 9, 9, 9, 9}
	for _, g := range []Generation{
		{RunID: low.ID, Generation: 1, BestEverScore: 10, BestWeights: tetris.Weights{1, 1, 1, 1, 1, 1}},
		{RunID: high.ID, Generation: 1, BestEverScore: 900, BestWeights: w},
	} {
		if err := store.SaveGeneration(g); err != nil {
			t.Fatalf("SaveGeneration() failed: %v", err)
		}
	}

	got, err = store.BestRun()
	if err != nil {
		t.Fatalf("BestRun() failed: %v", err)
	}
	if got == nil || got.ID != high.ID || got.BestWeights != w {
		t.Errorf("BestRun() = %+v, want run %s", got, high.ID)
	}
}

func TestStoreRunByPrefix(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"abc-1", "abc-2", "xyz-1"} {
		if _, err := store.CreateRun(Run{ID: id, PopulationSize: 2, Rounds: 1}); err != nil {
			t.Fatalf("CreateRun(%s) failed: %v", id, err)
		}
	}

	tests := []struct {
		prefix  string
		wantID  string
		wantErr bool
	}{
		{"xyz", "xyz-1", false},
		{"abc-2", "abc-2", false},
		{"abc", "", true},
		{"nope", "", false},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := store.RunByPrefix(tt.prefix)
		if (err != nil) != tt.wantErr {
			t.Errorf("RunByPrefix(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			continue
		}
		gotID := ""
		if got != nil {
			gotID = got.ID
		}
		if gotID != tt.wantID {
			t.Errorf("RunByPrefix(%q) = %q, want %q", tt.prefix, gotID, tt.wantID)
		}
	}
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   any
		want time.Time
	}{
		{"time value", want, want},
		{"store layout", want.Format(timeLayout), want},
		{"sqlite default", "2024-05-01 12:00:00", want},
		{"bytes", []byte("2024-05-01 12:00:00"), want},
		{"null", nil, time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTime(tt.in); !got.Equal(tt.want) {
				t.Errorf("parseTime(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
