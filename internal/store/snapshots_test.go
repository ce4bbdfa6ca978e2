package store

import (
	"context"
	"errors"
	"testing"

	"github.com/roach88/multiverse/internal/multiverse"
	"github.com/roach88/multiverse/internal/testutil"
)

func TestSaveSnapshot_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot(t, "Vera", "Khelis")

	first, inserted, err := s.SaveSnapshot(ctx, "first", snap)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if !inserted {
		t.Error("first save: inserted = false")
	}
	if first.Seq != 1 || first.Label != "first" || first.Characters != 2 || first.Events != 1 || first.Timelines != 1 {
		t.Errorf("unexpected record: %+v", first)
	}
	if !first.CreatedAt.Equal(testutil.Epoch.Add(1e9)) {
		t.Errorf("CreatedAt = %v", first.CreatedAt)
	}

	second, inserted, err := s.SaveSnapshot(ctx, "second", snap)
	if err != nil {
		t.Fatalf("second SaveSnapshot() failed: %v", err)
	}
	if inserted {
		t.Error("second save: inserted = true")
	}
	if second != first {
		t.Errorf("second save returned %+v, want %+v", second, first)
	}
}

func TestLoadSnapshot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	snap := createTestSnapshot(t, "Vera", "Khelis", "Nameless")

	rec, _, err := s.SaveSnapshot(ctx, "", snap)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	loaded, loadedRec, err := s.LoadSnapshot(ctx, rec.Digest[:12])
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	if loadedRec.Digest != rec.Digest {
		t.Errorf("digest = %s, want %s", loadedRec.Digest, rec.Digest)
	}

	m, err := multiverse.Restore(loaded)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	digest, err := m.Snapshot().Digest()
	if err != nil {
		t.Fatalf("Digest() failed: %v", err)
	}
	if digest != rec.Digest {
		t.Errorf("restored digest = %s, want %s", digest, rec.Digest)
	}
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.LoadSnapshot(context.Background(), "deadbeef")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = s.ResolveSnapshot(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("empty ref err = %v, want ErrNotFound", err)
	}
}

func TestResolveSnapshot_Ambiguous(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, names := range [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}, {"f"}, {"g"}, {"h"}, {"i"}, {"j"}, {"k"}, {"l"}, {"m"}, {"n"}, {"o"}, {"p"}, {"q"}} {
		if _, _, err := s.SaveSnapshot(ctx, "", createTestSnapshot(t, names...)); err != nil {
			t.Fatalf("SaveSnapshot() failed: %v", err)
		}
	}

	// Seventeen digests over sixteen hex digits share at least one first character.
	records, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() failed: %v", err)
	}
	seen := map[byte]bool{}
	var shared string
	for _, rec := range records {
		if seen[rec.Digest[0]] {
			shared = rec.Digest[:1]
			break
		}
		seen[rec.Digest[0]] = true
	}
	if shared == "" {
		t.Fatal("expected two digests with a common first character")
	}

	_, err = s.ResolveSnapshot(ctx, shared)
	if !errors.Is(err, ErrAmbiguous) {
		t.Errorf("err = %v, want ErrAmbiguous", err)
	}
}

func TestListSnapshots_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty store: got %v, want empty non-nil slice", empty)
	}

	labels := []string{"one", "two", "three"}
	for i, label := range labels {
		names := make([]string, i+1)
		for j := range names {
			names[j] = label
		}
		if _, _, err := s.SaveSnapshot(ctx, label, createTestSnapshot(t, names...)); err != nil {
			t.Fatalf("SaveSnapshot(%s) failed: %v", label, err)
		}
	}

	records, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for i, rec := range records {
		if rec.Label != labels[i] || rec.Seq != int64(i+1) || rec.Characters != i+1 {
			t.Errorf("records[%d] = %+v", i, rec)
		}
	}
}

func TestLoadSnapshot_DetectsTamperedBody(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, _, err := s.SaveSnapshot(ctx, "", createTestSnapshot(t, "Vera"))
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	other := createTestSnapshot(t, "Mara")
	otherRec, _, err := s.SaveSnapshot(ctx, "", other)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}

	_, err = s.db.Exec(`UPDATE snapshots SET body = (SELECT body FROM snapshots WHERE digest = ?) WHERE digest = ?`, otherRec.Digest, rec.Digest)
	if err != nil {
		t.Fatalf("tamper: %v", err)
	}

	if _, _, err := s.LoadSnapshot(ctx, rec.Digest); err == nil {
		t.Error("LoadSnapshot() of tampered body succeeded")
	}
}
