package task

import (
	"time"

	"github.com/leo-Leon1d/gantt-chart/internal/calendar"
)

// EndDate projects the instant at which work started at start finishes,
// consuming the duration one minute at a time. A minute counts only when it
// is a working minute under every present calendar; a nil calendar means
// always working. Non-working stretches are skipped wholesale through
// NextWorkingTime of the project calendar (falling back to the resource
// calendar), with a single-minute step when the jump cannot advance — the
// result is identical to stepping every minute naively.
func EndDate(start time.Time, duration time.Duration, projectCal, resourceCal *calendar.Calendar) time.Time {
	jump := projectCal
	if jump == nil {
		jump = resourceCal
	}

	minutes := int(duration / time.Minute)
	end := start
	for minutes > 0 {
		end = end.Add(time.Minute)
		for !workMinute(projectCal, end) || !workMinute(resourceCal, end) {
			if jump == nil {
				break
			}
			if next := jump.NextWorkingTime(end); next.After(end) {
				end = next
			} else {
				end = end.Add(time.Minute)
			}
		}
		minutes--
	}
	return end
}

// CalculateEndDate projects this task's end when started at start, honoring
// both the project calendar and the resource calendar.
func (t *Task) CalculateEndDate(start time.Time, projectCal, resourceCal *calendar.Calendar) time.Time {
	return EndDate(start, t.EstimatedDuration, projectCal, resourceCal)
}

func workMinute(c *calendar.Calendar, at time.Time) bool {
	return c == nil || c.WorkMinute(at)
}
