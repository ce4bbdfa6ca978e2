package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// SnapshotRecord describes a stored snapshot without its body.
type SnapshotRecord struct {
	Seq        int64     `json:"seq"`
	Digest     string    `json:"digest"`
	Label      string    `json:"label"`
	Version    string    `json:"version"`
	Timelines  int       `json:"timelines"`
	Characters int       `json:"characters"`
	Memories   int       `json:"memories"`
	Events     int       `json:"events"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveSnapshot stores snap under its digest. Uses ON CONFLICT(digest) DO
// NOTHING: saving a state that is already stored returns the existing record
// and inserted=false.
//
// The body is the canonical JSON the digest was computed over.
func (s *Store) SaveSnapshot(ctx context.Context, label string, snap multiverse.Snapshot) (rec SnapshotRecord, inserted bool, err error) {
	body, err := ir.MarshalCanonical(snap)
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	digest, err := snap.Digest()
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots
		(digest, label, version, body, timelines, characters, memories, events, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(digest) DO NOTHING
	`,
		digest,
		label,
		snap.Version,
		string(body),
		len(snap.Timelines),
		len(snap.Characters),
		len(snap.Memories),
		len(snap.Events),
		s.timestamp(),
	)
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: rows affected: %w", err)
	}

	row := tx.QueryRowContext(ctx, `
		SELECT seq, digest, label, version, timelines, characters, memories, events, created_at
		FROM snapshots WHERE digest = ?
	`, digest)
	rec, err = scanSnapshotRecord(row)
	if err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SnapshotRecord{}, false, fmt.Errorf("save snapshot: commit: %w", err)
	}
	return rec, affected > 0, nil
}

// ResolveSnapshot finds the record for a full digest or a unique digest
// prefix. Returns ErrNotFound or ErrAmbiguous (wrapped) when the reference
// does not pick exactly one snapshot.
func (s *Store) ResolveSnapshot(ctx context.Context, ref string) (SnapshotRecord, error) {
	if ref == "" {
		return SnapshotRecord{}, fmt.Errorf("resolve snapshot: empty reference: %w", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, digest, label, version, timelines, characters, memories, events, created_at
		FROM snapshots
		WHERE substr(digest, 1, ?) = ?
		ORDER BY seq ASC
		LIMIT 2
	`, len(ref), ref)
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("resolve snapshot: %w", err)
	}
	defer rows.Close()

	var found []SnapshotRecord
	for rows.Next() {
		rec, err := scanSnapshotRecord(rows)
		if err != nil {
			return SnapshotRecord{}, fmt.Errorf("resolve snapshot: %w", err)
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return SnapshotRecord{}, fmt.Errorf("resolve snapshot: iterate: %w", err)
	}

	switch len(found) {
	case 0:
		return SnapshotRecord{}, fmt.Errorf("snapshot %q: %w", ref, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return SnapshotRecord{}, fmt.Errorf("snapshot %q: %w", ref, ErrAmbiguous)
	}
}

// LoadSnapshot reads and decodes a stored snapshot by digest or unique
// prefix. The decoded body is re-hashed and must match its stored digest.
func (s *Store) LoadSnapshot(ctx context.Context, ref string) (multiverse.Snapshot, SnapshotRecord, error) {
	rec, err := s.ResolveSnapshot(ctx, ref)
	if err != nil {
		return multiverse.Snapshot{}, SnapshotRecord{}, err
	}

	var body string
	if err := s.db.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE digest = ?`, rec.Digest).Scan(&body); err != nil {
		return multiverse.Snapshot{}, SnapshotRecord{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap multiverse.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return multiverse.Snapshot{}, SnapshotRecord{}, fmt.Errorf("load snapshot %s: decode: %w", rec.Digest, err)
	}
	digest, err := snap.Digest()
	if err != nil {
		return multiverse.Snapshot{}, SnapshotRecord{}, fmt.Errorf("load snapshot %s: %w", rec.Digest, err)
	}
	if digest != rec.Digest {
		return multiverse.Snapshot{}, SnapshotRecord{}, fmt.Errorf("load snapshot %s: body hashes to %s", rec.Digest, digest)
	}
	return snap, rec, nil
}

// ListSnapshots returns every stored snapshot record ordered by seq.
//
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, digest, label, version, timelines, characters, memories, events, created_at
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	records := []SnapshotRecord{}
	for rows.Next() {
		rec, err := scanSnapshotRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshotRecord(row rowScanner) (SnapshotRecord, error) {
	var rec SnapshotRecord
	var created string
	err := row.Scan(
		&rec.Seq,
		&rec.Digest,
		&rec.Label,
		&rec.Version,
		&rec.Timelines,
		&rec.Characters,
		&rec.Memories,
		&rec.Events,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRecord{}, fmt.Errorf("scan snapshot: %w", ErrNotFound)
	}
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("scan snapshot: %w", err)
	}
	rec.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return SnapshotRecord{}, fmt.Errorf("scan snapshot: created_at: %w", err)
	}
	return rec, nil
}
