package task

import (
	"fmt"
	"time"
)

// Status is the execution state of a task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Event is a requested status transition.
type Event string

const (
	EventStart    Event = "start"
	EventPause    Event = "pause"
	EventResume   Event = "resume"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// transitions is the full status machine. Anything absent from the table is
// an invalid transition. COMPLETED and CANCELLED are terminal.
var transitions = map[Status]map[Event]Status{
	StatusNotStarted: {
		EventStart:  StatusInProgress,
		EventCancel: StatusCancelled,
	},
	StatusInProgress: {
		EventPause:    StatusPaused,
		EventComplete: StatusCompleted,
		EventCancel:   StatusCancelled,
	},
	StatusPaused: {
		EventResume: StatusInProgress,
		EventCancel: StatusCancelled,
	},
}

// NextStatus resolves a (status, event) pair against the transition table.
// It is pure: effects such as timestamps are applied by the Task methods.
func NextStatus(s Status, e Event) (Status, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%s in status %s: %w", e, s, ErrInvalidTransition)
}

// Start moves the task to IN_PROGRESS and records the factual start.
// Starting a task that is not ready (unfinished dependencies or no resource)
// is reported without changing state.
func (t *Task) Start(now time.Time) error {
	if t.status == StatusNotStarted && !t.CanStart() {
		return fmt.Errorf("task %s: %w", t.Name, ErrNotReady)
	}
	next, err := NextStatus(t.status, EventStart)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	t.status = next
	ts := now
	t.factualStart = &ts
	return nil
}

// Pause suspends an IN_PROGRESS task and marks the pause start.
func (t *Task) Pause(now time.Time) error {
	next, err := NextStatus(t.status, EventPause)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	t.status = next
	ts := now
	t.pauseStarted = &ts
	return nil
}

// Resume continues a PAUSED task, folding the elapsed pause into the total.
func (t *Task) Resume(now time.Time) error {
	next, err := NextStatus(t.status, EventResume)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	t.status = next
	if t.pauseStarted != nil {
		t.totalPause += now.Sub(*t.pauseStarted)
		t.pauseStarted = nil
	}
	return nil
}

// Complete finishes an IN_PROGRESS task, recording the factual end and the
// measured duration net of pauses.
func (t *Task) Complete(now time.Time) error {
	next, err := NextStatus(t.status, EventComplete)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	t.status = next
	ts := now
	t.factualEnd = &ts
	if t.factualStart != nil {
		t.factualDuration = now.Sub(*t.factualStart) - t.totalPause
	}
	return nil
}

// Cancel terminates the task from any non-terminal state.
func (t *Task) Cancel() error {
	next, err := NextStatus(t.status, EventCancel)
	if err != nil {
		return fmt.Errorf("task %s: %w", t.Name, err)
	}
	t.status = next
	return nil
}
