// Package invariant checks a settled multiverse against the narrative
// consistency properties.
//
// Every check is a pure function of a *multiverse.Multiverse. Checks that
// depend on history re-derive the expected state by replaying each
// timeline's event list and compare it against what the store holds. A
// failed check returns a *Violation naming the property and the offending
// ids; a passing check returns nil.
//
// CheckAll runs the checks in a fixed order and stops at the first
// violation. CheckEach runs all of them and returns every violation.
//
// Callers must not mutate the store while a check runs.
package invariant
