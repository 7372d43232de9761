// Package store archives computed schedules to PostgreSQL so runs can be
// compared over time.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/leo-Leon1d/gantt-chart/internal/project"
)

const schema = `
CREATE TABLE IF NOT EXISTS schedules (
	id          TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	anchor      TIMESTAMPTZ,
	span_sec    BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS schedule_tasks (
	schedule_id  TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	status       TEXT NOT NULL,
	priority     INT NOT NULL,
	resource     TEXT,
	est_start    TIMESTAMPTZ,
	est_end      TIMESTAMPTZ,
	PRIMARY KEY (schedule_id, name)
);
`

// Store wraps the schedule archive database.
type Store struct {
	db *sql.DB
}

// Open connects to postgres with the given DSN and ensures the schema
// exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Archive writes a schedule snapshot under the given id. The whole
// snapshot lands in one transaction.
func (s *Store) Archive(ctx context.Context, id string, p *project.Project) error {
	sorted, err := p.SortedTasks()
	if err != nil {
		return fmt.Errorf("store: archive %s: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schedules (id, project, anchor, span_sec) VALUES ($1, $2, $3, $4)`,
		id, p.Name, p.EstimatedStart(), int64(p.EstimatedDuration()/time.Second))
	if err != nil {
		return fmt.Errorf("store: insert schedule: %w", err)
	}

	for _, t := range sorted {
		var resName *string
		if r := t.Resource(); r != nil {
			resName = &r.Name
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedule_tasks (schedule_id, name, status, priority, resource, est_start, est_end)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, t.Name, string(t.Status()), t.Priority(), resName, t.EstimatedStart(), t.EstimatedEnd())
		if err != nil {
			return fmt.Errorf("store: insert task %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// ArchivedRun is one row of the schedule history listing.
type ArchivedRun struct {
	ID        string
	Project   string
	Anchor    *time.Time
	Span      time.Duration
	CreatedAt time.Time
}

// History returns the most recent archived schedules, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]ArchivedRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project, anchor, span_sec, created_at
		 FROM schedules ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: history: %w", err)
	}
	defer rows.Close()

	var runs []ArchivedRun
	for rows.Next() {
		var r ArchivedRun
		var spanSec int64
		if err := rows.Scan(&r.ID, &r.Project, &r.Anchor, &spanSec, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		r.Span = time.Duration(spanSec) * time.Second
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
