// Package task models a unit of schedulable work: its duration estimate,
// priority, execution status, dependency edges and resource assignment.
package task

import (
	"fmt"
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/resource"
)

// Task is a node in the project dependency graph. Its name is its identity:
// two tasks with the same name are the same task. Dependency and sub-task
// slices are inverse views of one directed edge set and are kept acyclic at
// insertion time.
type Task struct {
	Name              string
	EstimatedDuration time.Duration

	estimatedStart *time.Time
	estimatedEnd   *time.Time

	factualStart    *time.Time
	factualEnd      *time.Time
	factualDuration time.Duration

	pauseStarted *time.Time
	totalPause   time.Duration

	status   Status
	priority int
	assignee *resource.Resource

	deps     []*Task
	subTasks []*Task
}

// DefaultPriority is used when a task does not declare its own.
const DefaultPriority = 50

// New creates a NOT_STARTED task with the default priority.
func New(name string, estimated time.Duration) (*Task, error) {
	if name == "" {
		return nil, fmt.Errorf("task: name must not be empty")
	}
	if estimated <= 0 {
		return nil, fmt.Errorf("task %s: estimated duration must be positive, got %v", name, estimated)
	}
	return &Task{
		Name:              name,
		EstimatedDuration: estimated,
		status:            StatusNotStarted,
		priority:          DefaultPriority,
	}, nil
}

// Status returns the current execution status.
func (t *Task) Status() Status { return t.status }

// Priority returns the scheduling priority in [1,100].
func (t *Task) Priority() int { return t.priority }

// SetPriority updates the priority. Values outside [1,100] are reported and
// the previous value is retained; the caller may treat the error as a
// warning.
func (t *Task) SetPriority(p int) error {
	if p < 1 || p > 100 {
		return fmt.Errorf("task %s: priority %d: %w", t.Name, p, ErrPriorityRange)
	}
	t.priority = p
	return nil
}

// Resource returns the assigned resource, or nil.
func (t *Task) Resource() *resource.Resource { return t.assignee }

// AssignResource assigns or replaces the task's resource. Assignment is
// allowed while NOT_STARTED or PAUSED; an IN_PROGRESS task is paused,
// reassigned and resumed so it never runs without a resource. Completed and
// cancelled tasks reject reassignment.
func (t *Task) AssignResource(r *resource.Resource, now time.Time) error {
	if r == nil {
		return fmt.Errorf("task %s: nil resource", t.Name)
	}
	switch t.status {
	case StatusNotStarted, StatusPaused:
		t.assignee = r
		return nil
	case StatusInProgress:
		if err := t.Pause(now); err != nil {
			return err
		}
		t.assignee = r
		return t.Resume(now)
	default:
		return fmt.Errorf("task %s: assign resource in status %s: %w", t.Name, t.status, ErrInvalidTransition)
	}
}

// Dependencies returns the upstream tasks that must complete before this one
// can start. The returned slice is a copy.
func (t *Task) Dependencies() []*Task {
	out := make([]*Task, len(t.deps))
	copy(out, t.deps)
	return out
}

// SubTasks returns the downstream tasks unblocked by this one, in insertion
// order. The returned slice is a copy.
func (t *Task) SubTasks() []*Task {
	out := make([]*Task, len(t.subTasks))
	copy(out, t.subTasks)
	return out
}

// CanStart reports whether the task is NOT_STARTED, all its dependencies are
// COMPLETED and a resource is assigned.
func (t *Task) CanStart() bool {
	if t.status != StatusNotStarted || t.assignee == nil {
		return false
	}
	for _, dep := range t.deps {
		if dep.status != StatusCompleted {
			return false
		}
	}
	return true
}

// UnresolvedDependencies returns how many dependencies are not yet COMPLETED.
func (t *Task) UnresolvedDependencies() int {
	n := 0
	for _, dep := range t.deps {
		if dep.status != StatusCompleted {
			n++
		}
	}
	return n
}

// EstimatedStart returns the scheduled start, or nil before scheduling.
func (t *Task) EstimatedStart() *time.Time { return t.estimatedStart }

// EstimatedEnd returns the scheduled end, or nil before scheduling.
func (t *Task) EstimatedEnd() *time.Time { return t.estimatedEnd }

// SetEstimates records the computed schedule window on the task.
func (t *Task) SetEstimates(start, end time.Time) {
	s, e := start, end
	t.estimatedStart, t.estimatedEnd = &s, &e
}

// ClearEstimates removes any previously computed schedule window.
func (t *Task) ClearEstimates() {
	t.estimatedStart, t.estimatedEnd = nil, nil
}

// FactualStart returns when the task actually started, or nil.
func (t *Task) FactualStart() *time.Time { return t.factualStart }

// FactualEnd returns when the task actually completed, or nil.
func (t *Task) FactualEnd() *time.Time { return t.factualEnd }

// FactualDuration returns the measured working duration (pauses excluded).
// Zero until the task completes.
func (t *Task) FactualDuration() time.Duration { return t.factualDuration }

// TotalPause returns the accumulated pause time.
func (t *Task) TotalPause() time.Duration { return t.totalPause }

// EffectiveEnd is the instant downstream work should key off: the factual
// end for a completed task, otherwise the estimated end. Nil when neither
// is known.
func (t *Task) EffectiveEnd() *time.Time {
	if t.status == StatusCompleted && t.factualEnd != nil {
		return t.factualEnd
	}
	return t.estimatedEnd
}

// EffectiveStart mirrors EffectiveEnd for the start of the task.
func (t *Task) EffectiveStart() *time.Time {
	if t.factualStart != nil {
		return t.factualStart
	}
	return t.estimatedStart
}

func (t *Task) String() string {
	return fmt.Sprintf("Task{%s %v prio=%d status=%s}", t.Name, t.EstimatedDuration, t.priority, t.status)
}
