// Package state persists the progress of a live run so it survives process
// restarts and can be inspected afterwards.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const stateDir = ".gantt"
const stateFile = "state.json"

// RunState is the persistent state of a live run.
type RunState struct {
	RunID      string                 `json:"run_id"`
	Project    string                 `json:"project"`
	StartedAt  time.Time              `json:"started_at"`
	Status     string                 `json:"status"` // "running", "completed", "failed", "cancelled"
	TotalTasks int                    `json:"total_tasks"`
	Records    map[string]*TaskRecord `json:"records"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

// TaskRecord is the persistent state of a single task within a run.
type TaskRecord struct {
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Pause      string     `json:"pause,omitempty"`
}

// New creates a RunState with a fresh run ID and persists it.
func New(projectName string, totalTasks int) (*RunState, error) {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	s := &RunState{
		RunID:      uuid.NewString(),
		Project:    projectName,
		StartedAt:  time.Now(),
		Status:     "running",
		TotalTasks: totalTasks,
		Records:    make(map[string]*TaskRecord),
		path:       filepath.Join(stateDir, stateFile),
	}

	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads existing state from disk.
func Load() (*RunState, error) {
	path := filepath.Join(stateDir, stateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s RunState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = path
	return &s, nil
}

// Exists checks if a state file exists.
func Exists() bool {
	_, err := os.Stat(filepath.Join(stateDir, stateFile))
	return err == nil
}

// Save persists the current state to disk.
func (s *RunState) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// SetStatus updates the overall run status and saves.
func (s *RunState) SetStatus(status string) error {
	s.Status = status
	return s.Save()
}

// UpdateTask updates a task's record and saves.
func (s *RunState) UpdateTask(name string, rec *TaskRecord) error {
	s.mu.Lock()
	s.Records[name] = rec
	s.mu.Unlock()
	return s.Save()
}

// GetTask returns the record for a task.
func (s *RunState) GetTask(name string) *TaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Records[name]
}

// Clean removes the state directory.
func Clean() error {
	return os.RemoveAll(stateDir)
}
