package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
	"github.com/roach88/multiverse/internal/testutil"
)

// createTestStore opens a store in a temp dir with a deterministic clock
// and sequential run ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDGenerator(testutil.NewSequentialIDs("run")),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSnapshot builds a small multiverse with one event and returns its
// snapshot.
func createTestSnapshot(t *testing.T, names ...string) multiverse.Snapshot {
	t.Helper()
	m := multiverse.New()
	var ids []ir.CharacterID
	for _, name := range names {
		ids = append(ids, m.CreateCharacter(name, m.Root()))
	}
	m.RecordEvent(ir.Event{Timeline: m.Root(), Description: "gathering", Participants: ir.NewSet(ids...)})
	return m.Snapshot()
}
