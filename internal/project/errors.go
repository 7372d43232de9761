package project

import (
	"errors"
	"fmt"
	"strings"
)

// Precondition errors: the triggering call fails and project state is left
// untouched.
var (
	ErrNoAnchor            = errors.New("project has no estimated start date")
	ErrUnassignedResource  = errors.New("task has no assigned resource")
	ErrTasksIncomplete     = errors.New("not every task is completed")
	ErrUnknownTask         = errors.New("task is not part of the project")
	ErrDuplicateTask       = errors.New("task name already registered")
	ErrDuplicateResource   = errors.New("resource name already registered")
	ErrUnknownResourceName = errors.New("no resource with that name")
)

// CycleError is returned when the topological sort cannot order every task:
// the tasks that never became ready sit on or behind a dependency cycle.
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among tasks: %s", strings.Join(e.Remaining, ", "))
}
