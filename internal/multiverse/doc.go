// Package multiverse owns the entity graph: every timeline, character,
// memory, and event, plus the four per-store id counters.
//
// Entities live in flat maps keyed by id and reference each other only by
// id. Mutations never fail: a call that names a missing entity is a silent
// no-op for that part of the work, and correctness is checked afterwards by
// package invariant.
//
// A Multiverse is not safe for concurrent use. Hand readers on other
// goroutines a Clone or a Snapshot; never validate while mutating.
package multiverse
