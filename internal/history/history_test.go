package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), ".cdcgen", "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, started time.Time) Run {
	return Run{
		ID:              id,
		StartedAt:       started,
		FinishedAt:      started.Add(2 * time.Second),
		Status:          "success",
		TablesGenerated: 3,
		TablesSkipped:   1,
		Warnings:        2,
		OutputDir:       "migrations",
	}
}

func TestRecordAndGetRun(t *testing.T) {
	store := openTestStore(t)

	id := NewRunID()
	if id == "" {
		t.Fatal("NewRunID() returned empty string")
	}

	started := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	if err := store.RecordRun(testRun(id, started)); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	got, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if got.Status != "success" || got.TablesGenerated != 3 || got.TablesSkipped != 1 || got.Warnings != 2 {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, started)
	}
	if got.DryRun {
		t.Error("dry_run should default to false")
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetRun("no-such-run")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRun() error = %v, want ErrNotFound", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	ids := []string{NewRunID(), NewRunID(), NewRunID()}
	for i, id := range ids {
		if err := store.RecordRun(testRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns() error: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("listed %d runs, want 3", len(runs))
	}
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("runs not newest-first: %s, %s, %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.RecordRun(testRun(NewRunID(), time.Now())); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopening existing db: %v", err)
	}
	defer second.Close()

	runs, err := second.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs after reopen = %d, want 1", len(runs))
	}
}
