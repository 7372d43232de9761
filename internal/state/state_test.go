package state

import (
	"os"
	"testing"
	"time"
)

func TestNewAndLoad(t *testing.T) {
	defer os.RemoveAll(".gantt")

	s, err := New("website", 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if s.RunID == "" {
		t.Error("expected a run ID")
	}
	if s.Project != "website" {
		t.Errorf("expected project website, got %s", s.Project)
	}
	if s.Status != "running" {
		t.Errorf("expected status running, got %s", s.Status)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.RunID != s.RunID {
		t.Errorf("loaded run ID mismatch: %s vs %s", loaded.RunID, s.RunID)
	}
	if loaded.TotalTasks != 5 {
		t.Errorf("loaded total tasks mismatch: %d", loaded.TotalTasks)
	}
}

func TestRunIDsAreUnique(t *testing.T) {
	defer os.RemoveAll(".gantt")

	a, err := New("one", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New("two", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.RunID == b.RunID {
		t.Errorf("two runs share ID %s", a.RunID)
	}
}

func TestUpdateTask(t *testing.T) {
	defer os.RemoveAll(".gantt")

	s, err := New("website", 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	started := time.Now()
	rec := &TaskRecord{
		Status:    "in_progress",
		Resource:  "ben",
		StartedAt: &started,
	}
	if err := s.UpdateTask("backend", rec); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got := s.GetTask("backend")
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.Status != "in_progress" {
		t.Errorf("expected in_progress, got %s", got.Status)
	}
	if got.Resource != "ben" {
		t.Errorf("expected resource ben, got %s", got.Resource)
	}

	// Records survive a reload.
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.GetTask("backend") == nil {
		t.Error("expected record after reload")
	}
}

func TestExists(t *testing.T) {
	defer os.RemoveAll(".gantt")

	if Exists() {
		t.Error("expected Exists()=false before creation")
	}

	if _, err := New("website", 1); err != nil {
		t.Fatalf("New: %v", err)
	}
	if !Exists() {
		t.Error("expected Exists()=true after creation")
	}

	if err := Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if Exists() {
		t.Error("expected Exists()=false after Clean()")
	}
}

func TestSetStatus(t *testing.T) {
	defer os.RemoveAll(".gantt")

	s, err := New("website", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.SetStatus("completed"); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Status != "completed" {
		t.Errorf("expected completed, got %s", loaded.Status)
	}
}
