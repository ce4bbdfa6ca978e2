package invariant

import (
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// CheckCausalityJustification verifies that every causality-violating event
// names a mechanism and sits in a timeline marked unstable. Events whose
// timeline does not exist are only checked for the mechanism.
func CheckCausalityJustification(m *multiverse.Multiverse) error {
	for id, e := range m.Events() {
		if e.Violation == nil {
			continue
		}
		if ir.ViolationMechanism(e.Violation) == "" {
			return violationf(CausalityJustification, "%s violates causality (%s) without a mechanism", id, e.Violation.Kind())
		}
		if t, ok := m.Timeline(e.Timeline); ok && t.CausalityStable {
			return violationf(CausalityJustification, "%s violates causality but %s is marked stable", id, t.ID)
		}
	}
	return nil
}
