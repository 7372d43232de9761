// Package live drives a project through simulated execution: tasks start
// the moment their dependencies complete and their resource frees up, and
// scheduled time is compressed by a configurable speedup so a week-long
// plan replays in seconds.
package live

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/project"
	"github.com/leo-Leon1d/gantt-chart/internal/resource"
	"github.com/leo-Leon1d/gantt-chart/internal/state"
	"github.com/leo-Leon1d/gantt-chart/internal/task"
	"github.com/leo-Leon1d/gantt-chart/internal/ui"
)

// Runner executes a project's tasks against a compressed clock.
type Runner struct {
	Project *project.Project
	State   *state.RunState

	// Speedup is how many scheduled seconds pass per wall second.
	Speedup float64
	// Out receives progress lines. Defaults to io.Discard.
	Out io.Writer

	anchor    time.Time
	wallStart time.Time
	mu        sync.Mutex
}

// New creates a Runner for the given project.
func New(p *project.Project, speedup float64, out io.Writer) *Runner {
	if speedup <= 0 {
		speedup = 1
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{Project: p, Speedup: speedup, Out: out}
}

type taskResult struct {
	Task *task.Task
	Err  error
}

// Run executes every task with a dynamic dependency-tracking dispatcher.
// Each task starts the moment all its dependencies complete; tasks sharing
// a resource run one at a time. Progress is persisted after every
// transition.
func (r *Runner) Run(ctx context.Context) error {
	tasks := r.Project.Tasks()

	st, err := state.New(r.Project.Name, len(tasks))
	if err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	r.State = st

	if anchor := r.Project.EstimatedStart(); anchor != nil {
		r.anchor = *anchor
	} else {
		r.anchor = time.Now()
	}
	r.wallStart = time.Now()

	registered := make(map[*task.Task]bool, len(tasks))
	for _, t := range tasks {
		registered[t] = true
	}

	// Pending count per task: unfinished dependencies within the project.
	pending := make(map[*task.Task]int, len(tasks))
	finished := make(map[*task.Task]bool, len(tasks))
	totalDone := 0
	for _, t := range tasks {
		switch t.Status() {
		case task.StatusCompleted, task.StatusCancelled:
			finished[t] = true
			totalDone++
			continue
		}
		n := 0
		for _, dep := range t.Dependencies() {
			if registered[dep] && dep.Status() != task.StatusCompleted && dep.Status() != task.StatusCancelled {
				n++
			}
		}
		pending[t] = n
	}

	// One slot per resource keeps its tasks serialized.
	locks := make(map[*resource.Resource]chan struct{})
	for _, res := range r.Project.Resources() {
		locks[res] = make(chan struct{}, 1)
	}

	done := make(chan taskResult, len(tasks))
	inflight := 0

	fmt.Fprintf(r.Out, "\n🚀 %s (%d tasks, %.0fx speedup)\n",
		ui.BoldCyan("Live run started"), len(tasks)-totalDone, r.Speedup)

	for t, count := range pending {
		if count == 0 && !finished[t] {
			r.dispatch(ctx, t, locks, done)
			inflight++
		}
	}

	for totalDone < len(tasks) {
		if inflight == 0 {
			// Remaining tasks are unreachable: a dependency was cancelled
			// or sits outside the project.
			for t := range pending {
				if !finished[t] {
					r.markSkipped(t)
					finished[t] = true
					totalDone++
				}
			}
			break
		}

		result := <-done
		inflight--
		finished[result.Task] = true
		totalDone++

		if result.Err != nil {
			if ctx.Err() != nil {
				for inflight > 0 {
					<-done
					inflight--
				}
				r.State.SetStatus("cancelled")
				return fmt.Errorf("live run cancelled: %w", ctx.Err())
			}
			fmt.Fprintf(r.Out, "  %s task %s: %v\n", ui.Yellow("⚠️"), result.Task.Name, result.Err)
			totalDone += r.cascadeSkip(result.Task, finished, pending)
			continue
		}

		for _, succ := range result.Task.SubTasks() {
			if !registered[succ] || finished[succ] {
				continue
			}
			pending[succ]--
			if pending[succ] == 0 {
				r.dispatch(ctx, succ, locks, done)
				inflight++
			}
		}
	}

	r.State.SetStatus("completed")
	return nil
}

// now converts elapsed wall time back to the simulated clock.
func (r *Runner) now() time.Time {
	elapsed := time.Since(r.wallStart)
	return r.anchor.Add(time.Duration(float64(elapsed) * r.Speedup))
}

// dispatch launches a task in a goroutine: acquire the resource slot,
// start, wait out the compressed duration, complete, release.
func (r *Runner) dispatch(ctx context.Context, t *task.Task, locks map[*resource.Resource]chan struct{}, done chan<- taskResult) {
	go func() {
		res := t.Resource()
		if res == nil {
			done <- taskResult{Task: t, Err: project.ErrUnassignedResource}
			return
		}
		slot := locks[res]

		select {
		case slot <- struct{}{}:
		case <-ctx.Done():
			done <- taskResult{Task: t, Err: ctx.Err()}
			return
		}
		defer func() { <-slot }()

		done <- taskResult{Task: t, Err: r.execute(ctx, t, res)}
	}()
}

func (r *Runner) execute(ctx context.Context, t *task.Task, res *resource.Resource) error {
	r.mu.Lock()
	started := r.now()
	if err := t.Start(started); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	fmt.Fprintf(r.Out, "  ▶ %s started %s\n", ui.TaskPrefix(t.Name), ui.Dim(started.Format("Mon 02 Jan 15:04")))
	r.State.UpdateTask(t.Name, &state.TaskRecord{
		Status:    string(task.StatusInProgress),
		Resource:  res.Name,
		StartedAt: &started,
	})

	wall := time.Duration(float64(t.EstimatedDuration) / r.Speedup)
	select {
	case <-time.After(wall):
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	finished := r.now()
	err := t.Complete(finished)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	fmt.Fprintf(r.Out, "  ✅ %s %s %s\n", ui.TaskPrefix(t.Name), ui.Green("completed"), ui.Dim(finished.Format("Mon 02 Jan 15:04")))
	r.State.UpdateTask(t.Name, &state.TaskRecord{
		Status:     string(task.StatusCompleted),
		Resource:   res.Name,
		StartedAt:  &started,
		FinishedAt: &finished,
	})
	return nil
}

// cascadeSkip walks forward from a failed task, cancelling everything that
// transitively depends on it. Returns the number of tasks taken out.
func (r *Runner) cascadeSkip(failed *task.Task, finished map[*task.Task]bool, pending map[*task.Task]int) int {
	skipped := 0
	queue := []*task.Task{}
	for _, succ := range failed.SubTasks() {
		if _, ok := pending[succ]; ok && !finished[succ] {
			queue = append(queue, succ)
		}
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if finished[t] {
			continue
		}

		r.markSkipped(t)
		finished[t] = true
		skipped++

		for _, succ := range t.SubTasks() {
			if _, ok := pending[succ]; ok && !finished[succ] {
				queue = append(queue, succ)
			}
		}
	}
	return skipped
}

func (r *Runner) markSkipped(t *task.Task) {
	if err := t.Cancel(); err == nil {
		r.State.UpdateTask(t.Name, &state.TaskRecord{Status: string(task.StatusCancelled)})
	}
	fmt.Fprintf(r.Out, "  ⊘ %s %s\n", ui.TaskPrefix(t.Name), ui.Yellow("skipped (dependency failed)"))
}
