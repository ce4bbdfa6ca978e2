// Package store provides SQLite-backed durable storage for multiverse
// snapshots and the validation runs performed against them.
//
// The store is append-only:
//   - Snapshots: full structural snapshots, content addressed by digest
//   - Validation runs: one record per check of a stored snapshot
//   - Violations: the failed properties of a run, in check order
//
// # Patterns
//
// Idempotent snapshots
//   - UNIQUE(digest); saving the same state twice keeps the first row
//
// Atomic runs
//   - A run and its violations are written in one transaction
//
// Deterministic reads
//   - Snapshots list by seq ASC; runs list by created_at ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Snapshot digests are computed by multiverse.Snapshot.Digest using the RFC
// 8785 canonical JSON in internal/ir.
package store
