package store

import (
	"strings"
	"testing"
)

// Archive and History need a live postgres; the migration DDL is the one
// piece checkable without one.
func TestSchemaShape(t *testing.T) {
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS schedules",
		"CREATE TABLE IF NOT EXISTS schedule_tasks",
		"REFERENCES schedules(id) ON DELETE CASCADE",
		"PRIMARY KEY (schedule_id, name)",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q", want)
		}
	}

	for _, col := range []string{"status", "priority", "resource", "est_start", "est_end"} {
		if !strings.Contains(schema, col) {
			t.Errorf("schedule_tasks missing column %q", col)
		}
	}
}
