// Package ledger persists submitted sweep points so a re-run can skip
// them. The sweep driver works without it; wiring a ledger is strictly
// opt-in.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tabfm-labs/evalsweep/internal/domain"
)

// DB is the slice of database/sql the store needs.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const DefaultNamespace = "default"

const createSubmissionsTableQuery = `CREATE TABLE IF NOT EXISTS sweep_submissions (
	id UUID PRIMARY KEY,
	namespace TEXT NOT NULL,
	task TEXT NOT NULL,
	strategy TEXT NOT NULL DEFAULT '',
	job_name TEXT NOT NULL,
	scheduler TEXT NOT NULL,
	sweep_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (namespace, task, strategy)
)`

const insertSubmissionQuery = `INSERT INTO sweep_submissions (
	id, namespace, task, strategy, job_name, scheduler, sweep_id, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (namespace, task, strategy) DO NOTHING`

const seenSubmissionQuery = `SELECT EXISTS (
	SELECT 1 FROM sweep_submissions WHERE namespace = $1 AND task = $2 AND strategy = $3
)`

// Store records successful submissions, one row per (namespace, task,
// strategy). Conflicting inserts are silently dropped, so re-recording
// a point is harmless.
type Store struct {
	db        DB
	namespace string
	now       func() time.Time
}

func NewStore(db DB, namespace string) (*Store, error) {
	if db == nil {
		return nil, errors.New("ledger db is required")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{db: db, namespace: namespace, now: time.Now}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("ledger store not initialized")
	}
	if _, err := s.db.ExecContext(ctx, createSubmissionsTableQuery); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *Store) Seen(ctx context.Context, point domain.SweepPoint) (bool, error) {
	if s == nil || s.db == nil {
		return false, errors.New("ledger store not initialized")
	}
	var seen bool
	err := s.db.QueryRowContext(ctx, seenSubmissionQuery, s.namespace, string(point.Task), point.Strategy).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("ledger lookup: %w", err)
	}
	return seen, nil
}

func (s *Store) Record(ctx context.Context, sweepID string, sub domain.Submission) error {
	if s == nil || s.db == nil {
		return errors.New("ledger store not initialized")
	}
	if err := sub.Point.Task.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(sub.Status) == "" {
		return errors.New("submission status is required")
	}
	_, err := s.db.ExecContext(ctx, insertSubmissionQuery,
		uuid.NewString(),
		s.namespace,
		string(sub.Point.Task),
		sub.Point.Strategy,
		sub.Point.JobName(),
		sub.Scheduler,
		strings.TrimSpace(sweepID),
		sub.Status,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("ledger record: %w", err)
	}
	return nil
}
