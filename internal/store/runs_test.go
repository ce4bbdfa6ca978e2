package store

import (
	"context"
	"testing"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
)

func TestWriteValidationRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, _, err := s.SaveSnapshot(ctx, "", createTestSnapshot(t, "Vera"))
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	passed, err := s.WriteValidationRun(ctx, ValidationRun{SnapshotDigest: rec.Digest, Mode: ModeFailFast})
	if err != nil {
		t.Fatalf("WriteValidationRun() failed: %v", err)
	}
	if passed.ID != "run-0001" || !passed.Passed || passed.EngineVersion != ir.EngineVersion {
		t.Errorf("unexpected run: %+v", passed)
	}

	failed, err := s.WriteValidationRun(ctx, ValidationRun{
		SnapshotDigest: rec.Digest,
		Mode:           ModeEach,
		Violations: []*invariant.Violation{
			{Property: invariant.MemoryConsistency, Message: "first"},
			{Property: invariant.DeathFinality, Message: "second"},
		},
	})
	if err != nil {
		t.Fatalf("WriteValidationRun() failed: %v", err)
	}
	if failed.Passed {
		t.Error("run with violations marked passed")
	}

	runs, err := s.ReadValidationRuns(ctx, rec.Digest)
	if err != nil {
		t.Fatalf("ReadValidationRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	if runs[0].ID != "run-0001" || runs[1].ID != "run-0002" {
		t.Errorf("order = %s, %s", runs[0].ID, runs[1].ID)
	}
	if len(runs[0].Violations) != 0 {
		t.Errorf("passed run has violations: %v", runs[0].Violations)
	}
	if runs[1].Mode != ModeEach || len(runs[1].Violations) != 2 {
		t.Fatalf("unexpected failed run: %+v", runs[1])
	}
	if v := runs[1].Violations[1]; v.Property != invariant.DeathFinality || v.Message != "second" {
		t.Errorf("violations[1] = %+v", v)
	}
	if !runs[1].CreatedAt.Equal(failed.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", runs[1].CreatedAt, failed.CreatedAt)
	}
}

func TestWriteValidationRun_RequiresSnapshot(t *testing.T) {
	s := createTestStore(t)

	_, err := s.WriteValidationRun(context.Background(), ValidationRun{SnapshotDigest: "missing", Mode: ModeFailFast})
	if err == nil {
		t.Fatal("expected foreign key error")
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM validation_runs`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestWriteValidationRun_AtomicOnViolationFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, _, err := s.SaveSnapshot(ctx, "", createTestSnapshot(t, "Vera"))
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	_, err = s.WriteValidationRun(ctx, ValidationRun{SnapshotDigest: rec.Digest, Mode: "sometimes"})
	if err == nil {
		t.Fatal("expected CHECK constraint error for mode")
	}

	runs, err := s.ReadValidationRuns(ctx, rec.Digest)
	if err != nil {
		t.Fatalf("ReadValidationRuns() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("len = %d, want 0", len(runs))
	}
}
