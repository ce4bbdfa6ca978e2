package invariant

import (
	"fmt"

	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// CheckMemoryConsistency verifies that every memory a character owns exists
// and that its provenance is justified:
//   - Witnessed: the witness took part in the event (skipped if the event is unknown)
//   - Traded: always accepted
//   - Forged: the forger is named
//   - Compound: every source memory exists; cycles are not checked
func CheckMemoryConsistency(m *multiverse.Multiverse) error {
	for id, c := range m.Characters() {
		for _, memID := range c.Memories.Sorted() {
			mem, ok := m.Memory(memID)
			if !ok {
				return violationf(MemoryConsistency, "%s owns %s, which does not exist", describe(id, c), memID)
			}
			switch p := mem.Provenance.(type) {
			case ir.Witnessed:
				event, ok := m.Event(mem.Event)
				if ok && !event.Participants.Has(p.Character) {
					return violationf(MemoryConsistency,
						"%s holds witnessed %s of %s, but witness %s was not present",
						describe(id, c), memID, mem.Event, p.Character)
				}
			case ir.Traded:
			case ir.Forged:
				if p.Forger == "" {
					return violationf(MemoryConsistency, "%s holds forged %s with no forger", describe(id, c), memID)
				}
			case ir.Compound:
				for _, src := range p.Sources {
					if _, ok := m.Memory(src); !ok {
						return violationf(MemoryConsistency, "compound %s references missing source %s", memID, src)
					}
				}
			default:
				return violationf(MemoryConsistency, "%s has unknown provenance %T", memID, mem.Provenance)
			}
		}
	}
	return nil
}

// CheckTimelinePerception verifies that a character holding a memory from
// another timeline than its current one has TimelinePerception.
func CheckTimelinePerception(m *multiverse.Multiverse) error {
	for id, c := range m.Characters() {
		for _, memID := range c.Memories.Sorted() {
			mem, ok := m.Memory(memID)
			if !ok {
				return violationf(TimelinePerception, "%s owns %s, which does not exist", describe(id, c), memID)
			}
			if mem.SourceTimeline != c.CurrentTimeline && !c.HasAbility(ir.TimelinePerception) {
				return violationf(TimelinePerception,
					"%s has memory from %s but is in %s without TimelinePerception",
					describe(id, c), mem.SourceTimeline, c.CurrentTimeline)
			}
		}
	}
	return nil
}

// describe formats a character as "Name (Character#N)".
func describe(id ir.CharacterID, c *ir.Character) string {
	return fmt.Sprintf("%s (%s)", c.Name, id)
}
