package calendar

import (
	"testing"
	"time"
)

// mustNew builds the standard 09:00-17:00 Mon-Fri calendar used across tests.
func mustNew(t *testing.T, holidays []time.Time) *Calendar {
	t.Helper()
	c, err := New(9, 17, holidays, []int{6, 7})
	if err != nil {
		t.Fatalf("build calendar: %v", err)
	}
	return c
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(17, 9, nil, nil); err == nil {
		t.Error("expected error for start >= end")
	}
	if _, err := New(-1, 9, nil, nil); err == nil {
		t.Error("expected error for negative hour")
	}
	if _, err := New(9, 17, nil, []int{0}); err == nil {
		t.Error("expected error for weekday 0")
	}
	if _, err := New(9, 17, nil, []int{8}); err == nil {
		t.Error("expected error for weekday 8")
	}
}

func TestIsWorkDay(t *testing.T) {
	holiday := date(2024, time.October, 10, 0, 0)
	c := mustNew(t, []time.Time{holiday})

	cases := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"monday", date(2024, time.November, 4, 0, 0), true},
		{"friday", date(2024, time.November, 8, 0, 0), true},
		{"saturday", date(2024, time.November, 9, 0, 0), false},
		{"sunday", date(2024, time.November, 10, 0, 0), false},
		{"holiday thursday", holiday, false},
	}
	for _, tc := range cases {
		if got := c.IsWorkDay(tc.day); got != tc.want {
			t.Errorf("%s: IsWorkDay = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsWorkHour_InclusiveBounds(t *testing.T) {
	c := mustNew(t, nil)

	mon := func(hh, mm int) time.Time { return date(2024, time.November, 4, hh, mm) }
	if !c.IsWorkHour(mon(9, 0)) {
		t.Error("09:00 should be a work hour")
	}
	if !c.IsWorkHour(mon(17, 0)) {
		t.Error("17:00 boundary should still be a work hour")
	}
	if c.IsWorkHour(mon(18, 0)) {
		t.Error("18:00 should not be a work hour")
	}
	if c.IsWorkHour(mon(8, 59)) {
		t.Error("08:59 should not be a work hour")
	}
	if c.IsWorkHour(date(2024, time.November, 9, 10, 0)) {
		t.Error("saturday 10:00 should not be a work hour")
	}
}

func TestWorkMinute(t *testing.T) {
	c := mustNew(t, nil)

	mon := func(hh, mm int) time.Time { return date(2024, time.November, 4, hh, mm) }
	if c.WorkMinute(mon(9, 0)) {
		t.Error("minute ending 09:00 is before the day starts")
	}
	if !c.WorkMinute(mon(9, 1)) {
		t.Error("minute ending 09:01 is the first working minute")
	}
	if !c.WorkMinute(mon(17, 0)) {
		t.Error("minute ending 17:00 closes the day and must count")
	}
	if c.WorkMinute(mon(17, 1)) {
		t.Error("minute ending 17:01 is past the day end")
	}
}

func TestNextWorkingTime(t *testing.T) {
	holiday := date(2024, time.November, 5, 0, 0) // Tuesday
	c := mustNew(t, []time.Time{holiday})

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"inside working time unchanged", date(2024, time.November, 4, 11, 30), date(2024, time.November, 4, 11, 30)},
		{"before start snaps to start", date(2024, time.November, 4, 7, 15), date(2024, time.November, 4, 9, 0)},
		{"at end rolls to next work day", date(2024, time.November, 4, 17, 0), date(2024, time.November, 6, 9, 0)},
		{"after end skips holiday tuesday", date(2024, time.November, 4, 19, 45), date(2024, time.November, 6, 9, 0)},
		{"saturday rolls to monday", date(2024, time.November, 9, 12, 0), date(2024, time.November, 11, 9, 0)},
		{"friday evening rolls over weekend", date(2024, time.November, 8, 17, 1), date(2024, time.November, 11, 9, 0)},
	}
	for _, tc := range cases {
		got := c.NextWorkingTime(tc.in)
		if !got.Equal(tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		// Idempotency: applying again must not move the instant.
		if again := c.NextWorkingTime(got); !again.Equal(got) {
			t.Errorf("%s: not idempotent, second application moved %v -> %v", tc.name, got, again)
		}
	}
}

func TestWorkHoursLeft(t *testing.T) {
	c := mustNew(t, nil)
	mon := date(2024, time.November, 4, 0, 0)

	if got := c.WorkHoursLeft(mon, date(2024, time.November, 4, 14, 0)); got != 3 {
		t.Errorf("14:00 -> %d hours left, want 3", got)
	}
	if got := c.WorkHoursLeft(mon, date(2024, time.November, 4, 6, 0)); got != 8 {
		t.Errorf("before start -> %d hours left, want full day 8", got)
	}
	if got := c.WorkHoursLeft(mon, date(2024, time.November, 4, 17, 0)); got != 0 {
		t.Errorf("at end -> %d hours left, want 0", got)
	}
	sat := date(2024, time.November, 9, 0, 0)
	if got := c.WorkHoursLeft(sat, date(2024, time.November, 9, 10, 0)); got != 0 {
		t.Errorf("saturday -> %d hours left, want 0", got)
	}
}

func TestWithHoliday_Immutable(t *testing.T) {
	c := mustNew(t, nil)
	wed := date(2024, time.November, 6, 0, 0)

	c2 := c.WithHoliday(wed)
	if c2.IsWorkDay(wed) {
		t.Error("derived calendar should treat the added holiday as non-working")
	}
	if !c.IsWorkDay(wed) {
		t.Error("original calendar must be unchanged")
	}
}
