package invariant

import (
	"errors"
	"fmt"
)

// Property names one consistency property.
type Property string

const (
	MemoryConsistency       Property = "memory_consistency"
	TimelinePerception      Property = "timeline_perception"
	CausalityJustification  Property = "causality_justification"
	RelationshipConsistency Property = "relationship_consistency"
	DeathFinality           Property = "death_finality"
	KnowledgePropagation    Property = "knowledge_propagation"
	EmotionalBounds         Property = "emotional_bounds"
)

// Violation is a failed property check.
type Violation struct {
	// Property is the property that does not hold.
	Property Property `json:"property"`

	// Message describes the offending entities and the mismatch.
	Message string `json:"message"`
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Property, v.Message)
}

func violationf(p Property, format string, args ...any) *Violation {
	return &Violation{Property: p, Message: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is, or wraps, a *Violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

// PropertyOf returns the property of a wrapped *Violation.
func PropertyOf(err error) (Property, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v.Property, true
	}
	return "", false
}
