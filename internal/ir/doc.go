// Package ir defines the entity graph of the multiverse: identifiers, the
// four entity kinds, and the closed variant families (effects, memory
// provenance, causality violations).
//
// Entities reference each other only by id; ownership lives in the flat
// maps of a multiverse.Multiverse. This package holds type definitions,
// their JSON encoding, and canonical hashing. It imports nothing internal
// except the emotion leaf package.
//
// Key design constraints:
//   - Ids are bare uint64 values displayed as "Kind#N"
//   - Variant families are sealed interfaces (marker methods); every
//     consumer type-switches over the full set
//   - JSON encodes variants as {"kind": ..., "value": ...} envelopes
//   - All JSON tags use snake_case
package ir
