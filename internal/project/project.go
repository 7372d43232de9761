// Package project orchestrates scheduling: it owns the task graph and the
// resource pool, orders tasks topologically with priority tie-breaking, and
// runs the forward pass that assigns calendar-aware start and end dates
// while serializing work per resource.
package project

import (
	"fmt"
	"sort"
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/calendar"
	"github.com/leo-Leon1d/gantt-chart/internal/resource"
	"github.com/leo-Leon1d/gantt-chart/internal/task"
)

// Project is a set of interdependent tasks scheduled against a shared
// calendar from an anchor date.
type Project struct {
	Name     string
	Calendar *calendar.Calendar

	tasks     []*task.Task
	taskIndex map[string]*task.Task

	resources     []*resource.Resource
	resourceIndex map[string]*resource.Resource

	estimatedStart *time.Time
}

// New creates an empty project scheduled under the given calendar.
func New(name string, cal *calendar.Calendar) *Project {
	return &Project{
		Name:          name,
		Calendar:      cal,
		taskIndex:     make(map[string]*task.Task),
		resourceIndex: make(map[string]*resource.Resource),
	}
}

// AddTask registers a task. Task names are identities and must be unique
// within the project.
func (p *Project) AddTask(t *task.Task) error {
	if _, dup := p.taskIndex[t.Name]; dup {
		return fmt.Errorf("project %s: task %s: %w", p.Name, t.Name, ErrDuplicateTask)
	}
	p.tasks = append(p.tasks, t)
	p.taskIndex[t.Name] = t
	return nil
}

// AddResource registers a resource under its unique name.
func (p *Project) AddResource(r *resource.Resource) error {
	if _, dup := p.resourceIndex[r.Name]; dup {
		return fmt.Errorf("project %s: resource %s: %w", p.Name, r.Name, ErrDuplicateResource)
	}
	p.resources = append(p.resources, r)
	p.resourceIndex[r.Name] = r
	return nil
}

// Tasks returns the registered tasks in insertion order.
func (p *Project) Tasks() []*task.Task {
	out := make([]*task.Task, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// Resources returns the registered resources in insertion order.
func (p *Project) Resources() []*resource.Resource {
	out := make([]*resource.Resource, len(p.resources))
	copy(out, p.resources)
	return out
}

// Task looks a task up by name.
func (p *Project) Task(name string) (*task.Task, error) {
	t, ok := p.taskIndex[name]
	if !ok {
		return nil, fmt.Errorf("project %s: task %s: %w", p.Name, name, ErrUnknownTask)
	}
	return t, nil
}

// Resource looks a resource up by name.
func (p *Project) Resource(name string) (*resource.Resource, error) {
	r, ok := p.resourceIndex[name]
	if !ok {
		return nil, fmt.Errorf("project %s: resource %s: %w", p.Name, name, ErrUnknownResourceName)
	}
	return r, nil
}

// EstimatedStart returns the anchor date, or nil if unset.
func (p *Project) EstimatedStart() *time.Time { return p.estimatedStart }

// SetEstimatedStart sets the anchor: the earliest possible start of any task.
func (p *Project) SetEstimatedStart(t time.Time) {
	ts := t
	p.estimatedStart = &ts
}

// SortedTasks orders the tasks topologically. Tasks that become ready in the
// same step are queued by descending priority, with the original sub-task
// order breaking ties. A short output means a cycle; no partial ordering is
// returned.
func (p *Project) SortedTasks() ([]*task.Task, error) {
	depCount := make(map[*task.Task]int, len(p.tasks))
	var queue []*task.Task
	for _, t := range p.tasks {
		deps := t.Dependencies()
		depCount[t] = len(deps)
		if len(deps) == 0 {
			queue = append(queue, t)
		}
	}

	sorted := make([]*task.Task, 0, len(p.tasks))
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		sorted = append(sorted, cur)

		var batch []*task.Task
		for _, sub := range cur.SubTasks() {
			if _, known := depCount[sub]; !known {
				continue // edge into a task outside this project
			}
			depCount[sub]--
			if depCount[sub] == 0 {
				batch = append(batch, sub)
			}
		}
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].Priority() > batch[j].Priority()
		})
		queue = append(queue, batch...)
	}

	if len(sorted) != len(p.tasks) {
		seen := make(map[*task.Task]bool, len(sorted))
		for _, t := range sorted {
			seen[t] = true
		}
		var remaining []string
		for _, t := range p.tasks {
			if !seen[t] {
				remaining = append(remaining, t.Name)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}
	return sorted, nil
}

// CalculateSchedule runs the forward pass: every task is dated in sorted
// order at the latest of the anchor, its dependencies' ends and its
// resource's availability, snapped to the project calendar and projected
// through both calendars. Dates are written back only when the whole pass
// succeeds. Cancelled tasks are skipped and lose any previous dates;
// completed tasks keep their factual window and only advance their
// resource's availability.
func (p *Project) CalculateSchedule() error {
	if p.estimatedStart == nil {
		return fmt.Errorf("project %s: %w", p.Name, ErrNoAnchor)
	}
	anchor := *p.estimatedStart

	sorted, err := p.SortedTasks()
	if err != nil {
		return err
	}

	type window struct {
		task       *task.Task
		start, end time.Time
	}
	var staged []window
	stagedEnd := make(map[*task.Task]time.Time, len(sorted))
	availableFrom := make(map[*resource.Resource]time.Time, len(p.resources))

	for _, t := range sorted {
		switch t.Status() {
		case task.StatusCancelled:
			continue
		case task.StatusCompleted:
			if end := t.FactualEnd(); end != nil {
				if r := t.Resource(); r != nil {
					if free, ok := availableFrom[r]; !ok || end.After(free) {
						availableFrom[r] = *end
					}
				}
				stagedEnd[t] = *end
			}
			continue
		}

		r := t.Resource()
		if r == nil {
			return fmt.Errorf("project %s: task %s: %w", p.Name, t.Name, ErrUnassignedResource)
		}

		earliest := anchor
		for _, dep := range t.Dependencies() {
			if dep.Status() == task.StatusCancelled {
				// A cancelled dependency never runs; its stale
				// estimates from an earlier pass must not constrain us.
				continue
			}
			depEnd, ok := stagedEnd[dep]
			if !ok {
				if eff := dep.EffectiveEnd(); eff != nil {
					depEnd = *eff
				} else {
					continue
				}
			}
			if depEnd.After(earliest) {
				earliest = depEnd
			}
		}
		if free, ok := availableFrom[r]; ok && free.After(earliest) {
			earliest = free
		}
		if p.Calendar != nil {
			earliest = p.Calendar.NextWorkingTime(earliest)
		}

		end := t.CalculateEndDate(earliest, p.Calendar, r.Calendar)

		staged = append(staged, window{task: t, start: earliest, end: end})
		stagedEnd[t] = end
		availableFrom[r] = end
	}

	// Commit: the pass completed, write every window back.
	for _, w := range staged {
		w.task.SetEstimates(w.start, w.end)
	}
	for _, t := range p.tasks {
		if t.Status() == task.StatusCancelled {
			t.ClearEstimates()
		}
	}
	return nil
}

// NextTaskForResource picks the next startable task assigned to the
// resource: fewest unresolved dependencies first, then highest priority,
// earlier registration breaking remaining ties. Nil when nothing is ready.
func (p *Project) NextTaskForResource(r *resource.Resource) *task.Task {
	var best *task.Task
	bestUnresolved := 0
	for _, t := range p.tasks {
		if t.Resource() != r || !t.CanStart() {
			continue
		}
		unresolved := t.UnresolvedDependencies()
		switch {
		case best == nil:
			best, bestUnresolved = t, unresolved
		case unresolved < bestUnresolved:
			best, bestUnresolved = t, unresolved
		case unresolved == bestUnresolved && t.Priority() > best.Priority():
			best = t
		}
	}
	return best
}

// CancelTask cancels the named task and recomputes the whole schedule: no
// incremental rework of the plan is attempted.
func (p *Project) CancelTask(name string) error {
	t, err := p.Task(name)
	if err != nil {
		return err
	}
	if err := t.Cancel(); err != nil {
		return err
	}
	if p.estimatedStart == nil {
		return nil // nothing scheduled yet, nothing to recompute
	}
	return p.CalculateSchedule()
}

// ChangeResource reassigns the named task and recomputes the schedule.
func (p *Project) ChangeResource(name string, r *resource.Resource, now time.Time) error {
	t, err := p.Task(name)
	if err != nil {
		return err
	}
	if err := t.AssignResource(r, now); err != nil {
		return err
	}
	if p.estimatedStart == nil {
		return nil
	}
	return p.CalculateSchedule()
}

// EstimatedDuration is the span between the chronologically earliest start
// and the latest end across all dated tasks. Zero when nothing is dated.
// Completed tasks contribute their factual window.
func (p *Project) EstimatedDuration() time.Duration {
	var first, last *time.Time
	for _, t := range p.tasks {
		if s := t.EffectiveStart(); s != nil && (first == nil || s.Before(*first)) {
			first = s
		}
		if e := t.EffectiveEnd(); e != nil && (last == nil || e.After(*last)) {
			last = e
		}
	}
	if first == nil || last == nil {
		return 0
	}
	return last.Sub(*first)
}

// FactualDuration is the measured project span. It is an error to ask for
// it before every non-cancelled task has completed.
func (p *Project) FactualDuration() (time.Duration, error) {
	var first, last *time.Time
	for _, t := range p.tasks {
		if t.Status() == task.StatusCancelled {
			continue
		}
		if t.Status() != task.StatusCompleted {
			return 0, fmt.Errorf("project %s: task %s is %s: %w", p.Name, t.Name, t.Status(), ErrTasksIncomplete)
		}
		if s := t.FactualStart(); s != nil && (first == nil || s.Before(*first)) {
			first = s
		}
		if e := t.FactualEnd(); e != nil && (last == nil || e.After(*last)) {
			last = e
		}
	}
	if first == nil || last == nil {
		return 0, nil
	}
	return last.Sub(*first), nil
}
