package live

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/calendar"
	"github.com/leo-Leon1d/gantt-chart/internal/project"
	"github.com/leo-Leon1d/gantt-chart/internal/resource"
	"github.com/leo-Leon1d/gantt-chart/internal/task"
)

func buildProject(t *testing.T, durations map[string]time.Duration) (*project.Project, *resource.Resource) {
	t.Helper()

	cal, err := calendar.New(9, 17, nil, []int{6, 7})
	if err != nil {
		t.Fatal(err)
	}
	p := project.New("replay", cal)

	ben, err := resource.New("ben", cal)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.AddResource(ben); err != nil {
		t.Fatal(err)
	}

	for name, d := range durations {
		tk, err := task.New(name, d)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.AddTask(tk); err != nil {
			t.Fatal(err)
		}
		if err := tk.AssignResource(ben, time.Time{}); err != nil {
			t.Fatal(err)
		}
	}
	p.SetEstimatedStart(time.Date(2024, 11, 4, 9, 0, 0, 0, time.UTC))
	return p, ben
}

func TestRun_CompletesChain(t *testing.T) {
	defer os.RemoveAll(".gantt")

	p, _ := buildProject(t, map[string]time.Duration{
		"a": 20 * time.Millisecond,
		"b": 20 * time.Millisecond,
	})
	a, _ := p.Task("a")
	b, _ := p.Task("b")
	if err := b.AddDependency(a); err != nil {
		t.Fatal(err)
	}

	r := New(p, 1, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.Status() != task.StatusCompleted || b.Status() != task.StatusCompleted {
		t.Fatalf("statuses = %s, %s, want both completed", a.Status(), b.Status())
	}
	if b.FactualStart().Before(*a.FactualEnd()) {
		t.Errorf("b started %v before its dependency finished %v", b.FactualStart(), a.FactualEnd())
	}

	if r.State.GetTask("a") == nil || r.State.GetTask("b") == nil {
		t.Error("expected state records for both tasks")
	}
	if r.State.Status != "completed" {
		t.Errorf("run status = %s, want completed", r.State.Status)
	}
}

func TestRun_SerializesSharedResource(t *testing.T) {
	defer os.RemoveAll(".gantt")

	p, _ := buildProject(t, map[string]time.Duration{
		"a": 20 * time.Millisecond,
		"b": 20 * time.Millisecond,
	})

	r := New(p, 1, nil)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	a, _ := p.Task("a")
	b, _ := p.Task("b")
	first, second := a, b
	if b.FactualStart().Before(*a.FactualStart()) {
		first, second = b, a
	}
	if second.FactualStart().Before(*first.FactualEnd()) {
		t.Errorf("tasks on one resource overlapped: %v < %v",
			second.FactualStart(), first.FactualEnd())
	}
}

func TestRun_SpeedupCompressesClock(t *testing.T) {
	defer os.RemoveAll(".gantt")

	p, _ := buildProject(t, map[string]time.Duration{"a": 2 * time.Hour})

	wall := time.Now()
	r := New(p, 3600*100, nil) // 2h of schedule in ~20ms of wall time
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(wall); elapsed > 5*time.Second {
		t.Fatalf("run took %v of wall time", elapsed)
	}

	a, _ := p.Task("a")
	if a.FactualDuration() < time.Hour {
		t.Errorf("simulated duration = %v, want roughly 2h", a.FactualDuration())
	}
}

func TestRun_CancelledContext(t *testing.T) {
	defer os.RemoveAll(".gantt")

	p, _ := buildProject(t, map[string]time.Duration{"a": time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(p, 1, nil) // 1x speedup: only cancellation can end this quickly
	if err := r.Run(ctx); err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if r.State.Status != "cancelled" {
		t.Errorf("run status = %s, want cancelled", r.State.Status)
	}
}
