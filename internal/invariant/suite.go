package invariant

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/multiverse/internal/multiverse"
)

// Check is one property check.
type Check func(m *multiverse.Multiverse) error

// Rule pairs a property with its check.
type Rule struct {
	Property Property
	Check    Check
}

var rules = []Rule{
	{MemoryConsistency, CheckMemoryConsistency},
	{TimelinePerception, CheckTimelinePerception},
	{CausalityJustification, CheckCausalityJustification},
	{RelationshipConsistency, CheckRelationshipConsistency},
	{DeathFinality, CheckDeathFinality},
	{KnowledgePropagation, CheckKnowledgePropagation},
	{EmotionalBounds, CheckEmotionalBounds},
}

// Rules returns every rule in the order CheckAll runs them.
func Rules() []Rule {
	return slices.Clone(rules)
}

// Properties returns every property name in check order.
func Properties() []Property {
	out := make([]Property, len(rules))
	for i, r := range rules {
		out[i] = r.Property
	}
	return out
}

// Lookup finds the rule for a property name.
func Lookup(name string) (Rule, error) {
	for _, r := range rules {
		if string(r.Property) == name {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("unknown property %q", name)
}

// CheckAll runs every check in order and returns the first violation.
func CheckAll(m *multiverse.Multiverse) error {
	for _, r := range rules {
		if err := r.Check(m); err != nil {
			return err
		}
	}
	return nil
}

// CheckEach runs every check and returns all violations in check order.
// A nil result means every property holds.
func CheckEach(m *multiverse.Multiverse) []*Violation {
	var out []*Violation
	for _, r := range rules {
		err := r.Check(m)
		if err == nil {
			continue
		}
		var v *Violation
		if !errors.As(err, &v) {
			v = &Violation{Property: r.Property, Message: err.Error()}
		}
		out = append(out, v)
	}
	return out
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
