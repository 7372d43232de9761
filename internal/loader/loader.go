// Package loader reads project description files and materializes the full
// object graph: calendar, resources, and the task tree with its dependency
// edges.
package loader

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/leo-Leon1d/gantt-chart/internal/calendar"
	"github.com/leo-Leon1d/gantt-chart/internal/project"
	"github.com/leo-Leon1d/gantt-chart/internal/resource"
	"github.com/leo-Leon1d/gantt-chart/internal/task"
)

// ErrInvalidJSON is returned when the input is not well-formed JSON.
var ErrInvalidJSON = errors.New("loader: invalid JSON")

// Defaults applied when a project file omits its calendar.
const (
	DefaultStartHour = 9
	DefaultEndHour   = 17
)

// DefaultWeekends is Saturday and Sunday in ISO numbering.
var DefaultWeekends = []int{6, 7}

// Defaults is the calendar used when a project file omits its own.
type Defaults struct {
	StartHour int
	EndHour   int
	Weekends  []int
}

// Load reads and parses a project description file.
func Load(path string) (*project.Project, error) {
	return LoadWith(path, Defaults{DefaultStartHour, DefaultEndHour, DefaultWeekends})
}

// LoadWith reads a project description file with explicit calendar
// defaults.
func LoadWith(path string, def Defaults) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	p, err := ParseWith(data, def)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", path, err)
	}
	return p, nil
}

// Parse builds a Project from a JSON document. Nested subtasks become
// dependency edges (each subtask depends on its parent), and dependsOn
// entries are resolved by name after every task is registered.
func Parse(data []byte) (*project.Project, error) {
	return ParseWith(data, Defaults{DefaultStartHour, DefaultEndHour, DefaultWeekends})
}

// ParseWith builds a Project using the given calendar defaults.
func ParseWith(data []byte, def Defaults) (*project.Project, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)

	name := root.Get("name").String()
	if name == "" {
		name = "project"
	}

	cal, err := parseCalendar(root.Get("calendar"))
	if err != nil {
		return nil, err
	}
	if cal == nil {
		cal, err = calendar.New(def.StartHour, def.EndHour, nil, def.Weekends)
		if err != nil {
			return nil, err
		}
	}

	p := project.New(name, cal)

	if err := parseResources(p, root.Get("resources")); err != nil {
		return nil, err
	}

	ld := &loadState{project: p}
	var walkErr error
	root.Get("tasks").ForEach(func(_, item gjson.Result) bool {
		if _, err := ld.parseTask(item, nil); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if err := ld.resolveDeps(); err != nil {
		return nil, err
	}
	if err := ld.assignResources(); err != nil {
		return nil, err
	}

	if anchor := root.Get("startDate"); anchor.Exists() {
		at, err := time.Parse(time.RFC3339, anchor.String())
		if err != nil {
			return nil, fmt.Errorf("parse startDate %q: %w", anchor.String(), err)
		}
		p.SetEstimatedStart(at)
	}

	return p, nil
}

func parseCalendar(res gjson.Result) (*calendar.Calendar, error) {
	if !res.Exists() {
		return nil, nil
	}

	start, end := DefaultStartHour, DefaultEndHour
	if h := res.Get("workStartHour"); h.Exists() {
		start = int(h.Int())
	}
	if h := res.Get("workEndHour"); h.Exists() {
		end = int(h.Int())
	}

	var holidays []time.Time
	var parseErr error
	res.Get("holidays").ForEach(func(_, item gjson.Result) bool {
		day, err := time.Parse("2006-01-02", item.String())
		if err != nil {
			parseErr = fmt.Errorf("parse holiday %q: %w", item.String(), err)
			return false
		}
		holidays = append(holidays, day)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	weekends := DefaultWeekends
	if w := res.Get("weekends"); w.Exists() {
		weekends = nil
		w.ForEach(func(_, item gjson.Result) bool {
			weekends = append(weekends, int(item.Int()))
			return true
		})
	}

	return calendar.New(start, end, holidays, weekends)
}

func parseResources(p *project.Project, res gjson.Result) error {
	var walkErr error
	res.ForEach(func(_, item gjson.Result) bool {
		cal, err := parseCalendar(item.Get("calendar"))
		if err != nil {
			walkErr = err
			return false
		}
		r, err := resource.New(item.Get("name").String(), cal)
		if err != nil {
			walkErr = err
			return false
		}
		if err := p.AddResource(r); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	return walkErr
}

// loadState accumulates cross-references that can only be resolved once the
// whole task tree has been registered.
type loadState struct {
	project   *project.Project
	deps      []namedRef // task -> dependsOn name
	resources []namedRef // task -> assignedResourceName
}

type namedRef struct {
	task *task.Task
	name string
}

func (ld *loadState) parseTask(item gjson.Result, parent *task.Task) (*task.Task, error) {
	name := item.Get("name").String()

	d := time.Duration(item.Get("durationSeconds").Int())*time.Second +
		time.Duration(item.Get("durationMinutes").Int())*time.Minute +
		time.Duration(item.Get("durationHours").Int())*time.Hour

	t, err := task.New(name, d)
	if err != nil {
		return nil, err
	}
	if pr := item.Get("priority"); pr.Exists() {
		if err := t.SetPriority(int(pr.Int())); err != nil && !errors.Is(err, task.ErrPriorityRange) {
			return nil, err
		}
	}
	if err := ld.project.AddTask(t); err != nil {
		return nil, err
	}

	if parent != nil {
		if err := parent.AddSubTask(t); err != nil {
			return nil, fmt.Errorf("subtask %s of %s: %w", name, parent.Name, err)
		}
	}

	if r := item.Get("assignedResourceName"); r.Exists() {
		ld.resources = append(ld.resources, namedRef{task: t, name: r.String()})
	}
	item.Get("dependsOn").ForEach(func(_, dep gjson.Result) bool {
		ld.deps = append(ld.deps, namedRef{task: t, name: dep.String()})
		return true
	})

	var walkErr error
	item.Get("subtasks").ForEach(func(_, sub gjson.Result) bool {
		if _, err := ld.parseTask(sub, t); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return t, nil
}

func (ld *loadState) resolveDeps() error {
	for _, ref := range ld.deps {
		dep, err := ld.project.Task(ref.name)
		if err != nil {
			return fmt.Errorf("task %s dependsOn %q: %w", ref.task.Name, ref.name, err)
		}
		if err := ref.task.AddDependency(dep); err != nil {
			return fmt.Errorf("task %s dependsOn %q: %w", ref.task.Name, ref.name, err)
		}
	}
	return nil
}

func (ld *loadState) assignResources() error {
	for _, ref := range ld.resources {
		r, err := ld.project.Resource(ref.name)
		if err != nil {
			return fmt.Errorf("task %s resource %q: %w", ref.task.Name, ref.name, err)
		}
		if err := ref.task.AssignResource(r, time.Time{}); err != nil {
			return fmt.Errorf("task %s resource %q: %w", ref.task.Name, ref.name, err)
		}
	}
	return nil
}
