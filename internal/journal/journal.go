// Package journal records every submission attempt in Postgres. The
// submission core issues no compensating deletes, so after a partial
// submission an operator has to clean up by hand; the journal gives them
// the root report id, the failing step, and the original error for every
// attempt. Writes are best-effort and never block or fail a submission.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Submission outcome recorded per attempt.
const (
	StatusSubmitted = "submitted"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Entry is one submission attempt.
type Entry struct {
	ID             string        `json:"id"`
	IdempotencyKey string        `json:"idempotencyKey,omitempty"`
	RootReportID   string        `json:"rootReportId,omitempty"`
	ReportType     string        `json:"reportType"`
	JobNumber      string        `json:"jobNumber,omitempty"`
	Status         string        `json:"status"`
	ErrorText      string        `json:"errorText,omitempty"`
	Duration       time.Duration `json:"duration"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// Service writes and reads journal entries.
type Service struct {
	pool *pgxpool.Pool
}

// New creates a journal service on the given pool.
func New(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS submission_journal (
	id              UUID PRIMARY KEY,
	idempotency_key UUID,
	root_report_id  TEXT NOT NULL DEFAULT '',
	report_type     TEXT NOT NULL,
	job_number      TEXT NOT NULL DEFAULT '',
	status          TEXT NOT NULL,
	error_text      TEXT NOT NULL DEFAULT '',
	duration_ms     BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS submission_journal_root_idx
	ON submission_journal (root_report_id);
`

// EnsureSchema creates the journal table if it does not exist.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure journal schema: %w", err)
	}
	return nil
}

// Record writes one attempt. The entry id is assigned here.
func (s *Service) Record(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO submission_journal
			(id, idempotency_key, root_report_id, report_type, job_number,
			 status, error_text, duration_ms)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(), e.IdempotencyKey, e.RootReportID, e.ReportType,
		e.JobNumber, e.Status, e.ErrorText, e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

// ByRootReport returns every attempt recorded for a root report, newest
// first. Used by operators diagnosing a partial submission.
func (s *Service) ByRootReport(ctx context.Context, rootReportID string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(idempotency_key::text, ''), root_report_id,
		       report_type, job_number, status, error_text, duration_ms,
		       created_at
		FROM submission_journal
		WHERE root_report_id = $1
		ORDER BY created_at DESC`,
		rootReportID,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.IdempotencyKey, &e.RootReportID,
			&e.ReportType, &e.JobNumber, &e.Status, &e.ErrorText,
			&durationMS, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
