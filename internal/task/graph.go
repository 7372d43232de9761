package task

import "fmt"

// AddSubTask inserts the directed edge t -> sub, making t a dependency of
// sub. The edge is validated before anything is mutated: self-edges,
// duplicates, reversed duplicates and edges that would close a cycle
// anywhere in the reachable graph are rejected, leaving both tasks
// untouched.
func (t *Task) AddSubTask(sub *Task) error {
	if sub == nil {
		return fmt.Errorf("task %s: nil sub-task", t.Name)
	}
	if t == sub || t.Name == sub.Name {
		return fmt.Errorf("task %s: %w", t.Name, ErrSelfEdge)
	}
	for _, existing := range t.subTasks {
		if existing == sub {
			return fmt.Errorf("task %s -> %s: %w", t.Name, sub.Name, ErrEdgeExists)
		}
	}
	for _, dep := range t.deps {
		if dep == sub {
			return fmt.Errorf("task %s -> %s: %w", t.Name, sub.Name, ErrReverseEdge)
		}
	}
	// Full reachability check: if t is reachable from sub via sub-task
	// edges, adding t -> sub closes a cycle.
	if reaches(sub, t) {
		return fmt.Errorf("task %s -> %s: %w", t.Name, sub.Name, ErrWouldCycle)
	}

	t.subTasks = append(t.subTasks, sub)
	sub.deps = append(sub.deps, t)
	return nil
}

// AddSubTasks inserts edges to each sub-task in order, stopping at the
// first rejected edge. Edges inserted before the failure remain.
func (t *Task) AddSubTasks(subs []*Task) error {
	for _, sub := range subs {
		if err := t.AddSubTask(sub); err != nil {
			return err
		}
	}
	return nil
}

// AddDependency inserts the directed edge dep -> t: t cannot start until
// dep completes.
func (t *Task) AddDependency(dep *Task) error {
	if dep == nil {
		return fmt.Errorf("task %s: nil dependency", t.Name)
	}
	return dep.AddSubTask(t)
}

// AddDependencies inserts each dependency edge in order, stopping at the
// first rejected edge.
func (t *Task) AddDependencies(deps []*Task) error {
	for _, dep := range deps {
		if err := t.AddDependency(dep); err != nil {
			return err
		}
	}
	return nil
}

// reaches walks sub-task edges depth-first from src looking for dst.
func reaches(src, dst *Task) bool {
	if src == dst {
		return true
	}
	seen := map[*Task]bool{src: true}
	stack := []*Task{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range cur.subTasks {
			if next == dst {
				return true
			}
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
