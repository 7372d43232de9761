// Package reporter renders a project schedule for humans and machines: a
// terminal table in execution order, the task hierarchy as a tree, and a
// JSON document for tooling.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/project"
	"github.com/leo-Leon1d/gantt-chart/internal/task"
	"github.com/leo-Leon1d/gantt-chart/internal/ui"
)

const timeLayout = "Mon 02 Jan 15:04"

// Reporter provides schedule display for a project.
type Reporter struct {
	Project *project.Project
}

// New creates a new Reporter.
func New(p *project.Project) *Reporter {
	return &Reporter{Project: p}
}

// PrintSchedule writes a terminal-friendly schedule table in execution
// order. Tasks without computed dates show a dash in the date columns.
func (r *Reporter) PrintSchedule(w io.Writer) error {
	sorted, err := r.Project.SortedTasks()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s", ui.BoldCyan("📅 "+r.Project.Name), ui.Dim(fmt.Sprintf("(%d tasks)", len(sorted))))
	if anchor := r.Project.EstimatedStart(); anchor != nil {
		fmt.Fprintf(w, " %s", ui.Dim("from "+anchor.Format(timeLayout)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, t := range sorted {
		r.printTask(w, t)
	}

	if d := r.Project.EstimatedDuration(); d > 0 {
		fmt.Fprintf(w, "\n%s %s\n", ui.Bold("Span:"), ui.BoldGreen(d.String()))
	}
	return nil
}

func (r *Reporter) printTask(w io.Writer, t *task.Task) {
	icon := ui.StatusIcon(string(t.Status()))

	name := t.Name
	if len(name) > 30 {
		name = name[:27] + "..."
	}

	window := ui.Dim("-")
	if s, e := t.EstimatedStart(), t.EstimatedEnd(); s != nil && e != nil {
		window = fmt.Sprintf("%s %s %s", s.Format(timeLayout), ui.Dim("→"), e.Format(timeLayout))
	}

	who := ui.Dim("unassigned")
	if res := t.Resource(); res != nil {
		who = ui.Cyan(res.Name)
	}

	fmt.Fprintf(w, "  %s %-30s %s %-12s %s  %s\n",
		icon, ui.BoldMagenta(name),
		ui.Dim(fmt.Sprintf("p%-3d", t.Priority())),
		who,
		window,
		ui.Dim("["+t.EstimatedDuration.String()+"]"))
}

// PrintTree writes the task hierarchy. Roots are tasks with no
// dependencies; each task's sub-tasks are indented beneath it. A shared
// sub-task is expanded only once and shown dimmed on later visits.
func (r *Reporter) PrintTree(w io.Writer) {
	fmt.Fprintf(w, "%s\n", ui.BoldCyan("🌳 "+r.Project.Name))

	seen := make(map[*task.Task]bool)
	for _, t := range r.Project.Tasks() {
		if len(t.Dependencies()) == 0 {
			r.printTreeNode(w, t, 0, seen)
		}
	}
}

func (r *Reporter) printTreeNode(w io.Writer, t *task.Task, depth int, seen map[*task.Task]bool) {
	indent := strings.Repeat("  ", depth+1)
	if seen[t] {
		fmt.Fprintf(w, "%s%s %s\n", indent, ui.Dim("└"), ui.Dim(t.Name))
		return
	}
	seen[t] = true

	fmt.Fprintf(w, "%s%s %s %s\n",
		indent,
		ui.StatusIcon(string(t.Status())),
		ui.Bold(t.Name),
		ui.Dim("["+t.EstimatedDuration.String()+"]"))
	for _, sub := range t.SubTasks() {
		r.printTreeNode(w, sub, depth+1, seen)
	}
}

// taskJSON is one task in the machine-readable schedule.
type taskJSON struct {
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Priority  int        `json:"priority"`
	Resource  string     `json:"resource,omitempty"`
	Duration  string     `json:"duration"`
	Start     *time.Time `json:"estimated_start,omitempty"`
	End       *time.Time `json:"estimated_end,omitempty"`
	DependsOn []string   `json:"depends_on,omitempty"`
}

// JSON returns the schedule as machine-readable JSON, tasks in execution
// order.
func (r *Reporter) JSON() ([]byte, error) {
	sorted, err := r.Project.SortedTasks()
	if err != nil {
		return nil, err
	}

	type output struct {
		Project string     `json:"project"`
		Anchor  *time.Time `json:"estimated_start,omitempty"`
		Span    string     `json:"estimated_duration,omitempty"`
		Tasks   []taskJSON `json:"tasks"`
	}

	o := output{
		Project: r.Project.Name,
		Anchor:  r.Project.EstimatedStart(),
	}
	if d := r.Project.EstimatedDuration(); d > 0 {
		o.Span = d.String()
	}

	for _, t := range sorted {
		tj := taskJSON{
			Name:     t.Name,
			Status:   string(t.Status()),
			Priority: t.Priority(),
			Duration: t.EstimatedDuration.String(),
			Start:    t.EstimatedStart(),
			End:      t.EstimatedEnd(),
		}
		if res := t.Resource(); res != nil {
			tj.Resource = res.Name
		}
		for _, dep := range t.Dependencies() {
			tj.DependsOn = append(tj.DependsOn, dep.Name)
		}
		o.Tasks = append(o.Tasks, tj)
	}

	return json.MarshalIndent(o, "", "  ")
}

// Summary returns a final run summary string with per-status totals.
func (r *Reporter) Summary() string {
	var b strings.Builder

	counts := make(map[task.Status]int)
	for _, t := range r.Project.Tasks() {
		counts[t.Status()]++
	}

	fmt.Fprintf(&b, "\n%s\n", ui.BoldCyan("Run Summary: "+r.Project.Name))
	fmt.Fprintf(&b, "%s\n", ui.Cyan(strings.Repeat("═", 14+len(r.Project.Name))))
	fmt.Fprintf(&b, "Tasks:  %s  %s  %s\n",
		ui.Green(fmt.Sprintf("%d completed", counts[task.StatusCompleted])),
		ui.Yellow(fmt.Sprintf("%d paused", counts[task.StatusPaused])),
		ui.Dim(fmt.Sprintf("%d cancelled", counts[task.StatusCancelled])))

	if d, err := r.Project.FactualDuration(); err == nil && d > 0 {
		fmt.Fprintf(&b, "Took:   %s\n", ui.Bold(d.String()))
	}
	return b.String()
}
