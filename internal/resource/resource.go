// Package resource models a named actor that performs tasks under its own
// working-time calendar.
package resource

import (
	"fmt"

	"github.com/leo-Leon1d/gantt-chart/internal/calendar"
)

// Resource is an executor of tasks. It owns a calendar describing when it
// works; availability bookkeeping during a schedule pass is the scheduler's
// concern and is not part of resource state.
type Resource struct {
	Name     string
	Calendar *calendar.Calendar
}

// New creates a resource. The calendar may be nil, in which case the
// resource is treated as always available.
func New(name string, cal *calendar.Calendar) (*Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource: name must not be empty")
	}
	return &Resource{Name: name, Calendar: cal}, nil
}

func (r *Resource) String() string { return r.Name }
