// Package calendar provides the business-time arithmetic used to project
// task start and end dates: work-day and work-hour predicates, snapping an
// instant forward to working time, and remaining-hours accounting.
package calendar

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Calendar is an immutable working-time rule set: a daily hour range, a set
// of holiday dates and a set of weekly rest days. Weekday numbers are ISO
// (Monday=1 .. Sunday=7).
type Calendar struct {
	startHour int
	endHour   int
	holidays  map[string]struct{}
	weekends  map[int]struct{}
}

// New builds a Calendar. startHour and endHour are whole hours in [0,23]
// with startHour < endHour.
func New(startHour, endHour int, holidays []time.Time, weekends []int) (*Calendar, error) {
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 {
		return nil, fmt.Errorf("calendar: hours must be in [0,23], got %d-%d", startHour, endHour)
	}
	if startHour >= endHour {
		return nil, fmt.Errorf("calendar: start hour %d must be before end hour %d", startHour, endHour)
	}
	c := &Calendar{
		startHour: startHour,
		endHour:   endHour,
		holidays:  make(map[string]struct{}, len(holidays)),
		weekends:  make(map[int]struct{}, len(weekends)),
	}
	for _, h := range holidays {
		c.holidays[h.Format(dateLayout)] = struct{}{}
	}
	for _, w := range weekends {
		if w < 1 || w > 7 {
			return nil, fmt.Errorf("calendar: weekday %d out of range (ISO 1-7)", w)
		}
		c.weekends[w] = struct{}{}
	}
	return c, nil
}

// StartHour returns the first working hour of a work day.
func (c *Calendar) StartHour() int { return c.startHour }

// EndHour returns the hour at which a work day ends.
func (c *Calendar) EndHour() int { return c.endHour }

// Weekends returns the configured rest weekdays in ISO numbering.
func (c *Calendar) Weekends() []int {
	out := make([]int, 0, len(c.weekends))
	for d := 1; d <= 7; d++ {
		if _, ok := c.weekends[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// WithHoliday returns a copy of the calendar with one extra holiday.
// The receiver is never mutated; callers holding schedules computed against
// the old value must recompute against the new one.
func (c *Calendar) WithHoliday(day time.Time) *Calendar {
	next := &Calendar{
		startHour: c.startHour,
		endHour:   c.endHour,
		holidays:  make(map[string]struct{}, len(c.holidays)+1),
		weekends:  c.weekends,
	}
	for k := range c.holidays {
		next.holidays[k] = struct{}{}
	}
	next.holidays[day.Format(dateLayout)] = struct{}{}
	return next
}

// isoWeekday maps Go's Sunday=0 numbering to ISO Monday=1..Sunday=7.
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// IsWorkDay reports whether the date is neither a holiday nor a rest day.
func (c *Calendar) IsWorkDay(date time.Time) bool {
	if _, holiday := c.holidays[date.Format(dateLayout)]; holiday {
		return false
	}
	_, rest := c.weekends[isoWeekday(date)]
	return !rest
}

// IsWorkHour reports whether the instant falls on a work day within the
// working hour range. The range is inclusive on both ends: an instant at
// exactly EndHour:00 still counts as the closing boundary of the day.
func (c *Calendar) IsWorkHour(t time.Time) bool {
	return c.IsWorkDay(t) && t.Hour() >= c.startHour && t.Hour() <= c.endHour
}

// WorkMinute reports whether the minute ending at t lies inside working
// time. This is the predicate minute-granularity duration accounting uses:
// a task may finish at exactly EndHour:00, and the first minute consumed
// on a fresh day is the one ending at StartHour:01.
func (c *Calendar) WorkMinute(t time.Time) bool {
	m := t.Add(-time.Minute)
	return c.IsWorkDay(m) && m.Hour() >= c.startHour && m.Hour() < c.endHour
}

// dayStart returns StartHour:00 on the same date as t.
func (c *Calendar) dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.startHour, 0, 0, 0, t.Location())
}

// dayEnd returns EndHour:00 on the same date as t.
func (c *Calendar) dayEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, c.endHour, 0, 0, 0, t.Location())
}

// nextWorkDayStart walks forward from the day after t to the first work day
// and returns its StartHour:00.
func (c *Calendar) nextWorkDayStart(t time.Time) time.Time {
	day := t.AddDate(0, 0, 1)
	for !c.IsWorkDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	return c.dayStart(day)
}

// NextWorkingTime snaps an instant forward to the nearest working instant:
// a non-work day or an instant at/after the day's end rolls to the next work
// day's StartHour:00, an instant before StartHour snaps to StartHour:00, and
// an instant already inside working time is returned unchanged. The function
// is idempotent.
func (c *Calendar) NextWorkingTime(t time.Time) time.Time {
	if !c.IsWorkDay(t) {
		day := t
		for !c.IsWorkDay(day) {
			day = day.AddDate(0, 0, 1)
		}
		return c.dayStart(day)
	}
	if !t.Before(c.dayEnd(t)) {
		return c.nextWorkDayStart(t)
	}
	if start := c.dayStart(t); t.Before(start) {
		return start
	}
	return t
}

// WorkHoursLeft returns the number of whole working hours remaining on the
// given date as seen from now: zero on non-work days or at/after the day's
// end, the full day span before the day begins, otherwise the hours between
// now and EndHour.
func (c *Calendar) WorkHoursLeft(date time.Time, now time.Time) int {
	if !c.IsWorkDay(date) {
		return 0
	}
	start, end := c.dayStart(date), c.dayEnd(date)
	if !now.Before(end) {
		return 0
	}
	if now.Before(start) {
		return c.endHour - c.startHour
	}
	return int(end.Sub(now).Hours())
}
