package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/multiverse/internal/emotion"
	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
)

// ExpectationError is returned when an expectation does not match the final
// state. It renders on one line so results stay golden-friendly.
type ExpectationError struct {
	Kind     string // holds, fails, or character
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Kind, e.Expected, e.Actual)
}

func (h *Harness) evaluate(e Expectation) error {
	switch {
	case e.Holds != "":
		return h.expectHolds(e.Holds)
	case e.Fails != "":
		return h.expectFails(e.Fails, e.Message)
	case e.Character != "":
		return h.expectCharacter(e)
	default:
		return fmt.Errorf("empty expectation")
	}
}

// expectHolds checks every property ("all") or a single one.
func (h *Harness) expectHolds(property string) error {
	var err error
	if property == HoldsAll {
		err = invariant.CheckAll(h.m)
	} else {
		rule, lookupErr := invariant.Lookup(property)
		if lookupErr != nil {
			return lookupErr
		}
		err = rule.Check(h.m)
	}
	if err != nil {
		return &ExpectationError{
			Kind:     "holds",
			Expected: fmt.Sprintf("%s to hold", property),
			Actual:   err.Error(),
		}
	}
	return nil
}

// expectFails checks that property is violated and, when message is set,
// that the violation mentions it.
func (h *Harness) expectFails(property, message string) error {
	rule, err := invariant.Lookup(property)
	if err != nil {
		return err
	}
	checkErr := rule.Check(h.m)
	if checkErr == nil {
		return &ExpectationError{
			Kind:     "fails",
			Expected: fmt.Sprintf("%s to be violated", property),
			Actual:   "property holds",
		}
	}
	if message != "" && !strings.Contains(checkErr.Error(), message) {
		return &ExpectationError{
			Kind:     "fails",
			Expected: fmt.Sprintf("%s violation mentioning %q", property, message),
			Actual:   checkErr.Error(),
		}
	}
	return nil
}

// expectCharacter compares a character's state with the set fields of e.
func (h *Harness) expectCharacter(e Expectation) error {
	id, err := h.character(e.Character)
	if err != nil {
		return err
	}
	c, ok := h.m.Character(id)
	if !ok {
		return fmt.Errorf("character %q (%s) is not stored", e.Character, id)
	}

	mismatch := func(field string, expected, actual any) error {
		return &ExpectationError{
			Kind:     "character",
			Expected: fmt.Sprintf("%s %s %v", e.Character, field, expected),
			Actual:   fmt.Sprint(actual),
		}
	}

	if e.Alive != nil && c.Alive != *e.Alive {
		return mismatch("alive", *e.Alive, c.Alive)
	}

	if e.Timeline != "" {
		want, err := h.timeline(e.Timeline)
		if err != nil {
			return err
		}
		if c.CurrentTimeline != want {
			return mismatch("in", want, c.CurrentTimeline)
		}
	}

	for _, flag := range e.Knows {
		if !c.KnowledgeFlags.Has(flag) {
			return mismatch("knows", flag, c.KnowledgeFlags.Sorted())
		}
	}

	for _, label := range e.Remembers {
		event, err := h.event(label)
		if err != nil {
			return err
		}
		if !h.m.HasMemoryOfEvent(id, event) {
			return mismatch("remembers", label, "no memory of "+event.String())
		}
	}

	for _, label := range e.Perceives {
		timeline, err := h.timeline(label)
		if err != nil {
			return err
		}
		if !h.m.CanPerceiveTimeline(id, timeline) {
			return mismatch("perceives", label, "cannot perceive "+timeline.String())
		}
	}

	for _, name := range sortedKeys(e.Relationships) {
		other, err := h.character(name)
		if err != nil {
			return err
		}
		want, err := ir.ParseRelationshipState(e.Relationships[name])
		if err != nil {
			return err
		}
		got, ok := c.Relationships[other]
		if !ok {
			return mismatch("toward "+name, want, "no relationship")
		}
		if got != want {
			return mismatch("toward "+name, want, got)
		}
	}

	for _, name := range e.Feels {
		t, err := emotion.ParseType(name)
		if err != nil {
			return err
		}
		if !c.Emotional.Has(t) {
			return mismatch("feels", name, feelings(c.Emotional))
		}
	}

	return nil
}

// feelings lists the emotion names a state currently holds.
func feelings(s emotion.State) []string {
	out := make([]string, 0, len(s.Emotions))
	for _, e := range s.Emotions {
		out = append(out, e.Type.String())
	}
	slices.Sort(out)
	return out
}
