package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
)

// RunMode records how a validation run was performed.
type RunMode string

const (
	// ModeFailFast stops at the first violation (invariant.CheckAll).
	ModeFailFast RunMode = "fail_fast"

	// ModeEach runs every check (invariant.CheckEach).
	ModeEach RunMode = "each"
)

// ValidationRun is one check of a stored snapshot.
type ValidationRun struct {
	ID             string                 `json:"id"`
	SnapshotDigest string                 `json:"snapshot_digest"`
	Mode           RunMode                `json:"mode"`
	Passed         bool                   `json:"passed"`
	EngineVersion  string                 `json:"engine_version"`
	CreatedAt      time.Time              `json:"created_at"`
	Violations     []*invariant.Violation `json:"violations"`
}

// WriteValidationRun stores a run and its violations atomically. ID,
// EngineVersion, and CreatedAt are filled in when empty; Passed is derived
// from the violations. The snapshot must already be stored (foreign key).
func (s *Store) WriteValidationRun(ctx context.Context, run ValidationRun) (ValidationRun, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	if run.Violations == nil {
		run.Violations = []*invariant.Violation{}
	}
	run.Passed = len(run.Violations) == 0

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ValidationRun{}, fmt.Errorf("write validation run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO validation_runs
		(id, snapshot_digest, mode, passed, engine_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SnapshotDigest,
		string(run.Mode),
		run.Passed,
		run.EngineVersion,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return ValidationRun{}, fmt.Errorf("write validation run: %w", err)
	}

	for i, v := range run.Violations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO violations (run_id, position, property, message)
			VALUES (?, ?, ?, ?)
		`, run.ID, i, string(v.Property), v.Message)
		if err != nil {
			return ValidationRun{}, fmt.Errorf("write validation run: violation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ValidationRun{}, fmt.Errorf("write validation run: commit: %w", err)
	}
	return run, nil
}

// ReadValidationRuns returns every run recorded for a snapshot digest,
// ordered by created_at ASC, id ASC COLLATE BINARY, each with its violations
// in check order.
//
// Returns an empty slice (not nil) if the snapshot has no runs.
func (s *Store) ReadValidationRuns(ctx context.Context, digest string) ([]ValidationRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, snapshot_digest, mode, passed, engine_version, created_at
		FROM validation_runs
		WHERE snapshot_digest = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query validation runs: %w", err)
	}

	runs := []ValidationRun{}
	for rows.Next() {
		var run ValidationRun
		var mode, created string
		if err := rows.Scan(&run.ID, &run.SnapshotDigest, &mode, &run.Passed, &run.EngineVersion, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan validation run: %w", err)
		}
		run.Mode = RunMode(mode)
		run.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan validation run: created_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate validation runs: %w", err)
	}
	rows.Close()

	// The pool holds a single connection, so violations are read only after
	// the runs cursor is closed.
	for i := range runs {
		violations, err := s.readViolations(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Violations = violations
	}
	return runs, nil
}

func (s *Store) readViolations(ctx context.Context, runID string) ([]*invariant.Violation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property, message
		FROM violations
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}
	defer rows.Close()

	violations := []*invariant.Violation{}
	for rows.Next() {
		var property, message string
		if err := rows.Scan(&property, &message); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		violations = append(violations, &invariant.Violation{Property: invariant.Property(property), Message: message})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate violations: %w", err)
	}
	return violations, nil
}
