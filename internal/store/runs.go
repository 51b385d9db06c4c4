package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dshills/precheck/internal/review"
)

// RunRecord is one persisted review run.
type RunRecord struct {
	ID               string
	Repo             string
	Branch           string
	Head             string
	Verdict          review.Verdict
	RawFindings      int
	FilteredFindings int
	Threshold        int
	ChangeCount      int
	DurationMs       int64
	CreatedAt        time.Time
}

// Record persists a completed run.
func (s *Store) Record(report *review.Report) error {
	if report.RunID == "" {
		return fmt.Errorf("report has no run id")
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (id, repo, branch, head, verdict, raw_findings,
			filtered_findings, threshold, change_count, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.Repo.Root,
		report.Repo.Branch,
		report.Repo.Head,
		string(report.Summary.Verdict),
		report.Summary.RawFindings,
		report.Summary.FilteredFindings,
		report.Summary.Threshold,
		report.ChangeCount,
		report.Timing.TotalMs,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns the latest runs for a repository, newest first. A repo of
// "" returns runs across all repositories.
func (s *Store) Recent(repo string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, repo, branch, head, verdict, raw_findings,
			filtered_findings, threshold, change_count, duration_ms, created_at
		FROM runs`
	args := []any{}
	if repo != "" {
		query += ` WHERE repo = ?`
		args = append(args, repo)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var verdict string
		if err := rows.Scan(
			&r.ID,
			&r.Repo,
			&r.Branch,
			&r.Head,
			&verdict,
			&r.RawFindings,
			&r.FilteredFindings,
			&r.Threshold,
			&r.ChangeCount,
			&r.DurationMs,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		r.Verdict = review.Verdict(verdict)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Clear removes all recorded runs. A repo of "" clears everything.
func (s *Store) Clear(repo string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if repo == "" {
		res, err = s.db.Exec(`DELETE FROM runs`)
	} else {
		res, err = s.db.Exec(`DELETE FROM runs WHERE repo = ?`, repo)
	}
	if err != nil {
		return 0, fmt.Errorf("clearing run history: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
