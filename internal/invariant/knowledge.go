package invariant

import (
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// CheckKnowledgePropagation requires every knowledge flag a character holds
// to have been granted to it by a KnowledgeGained effect in its current
// timeline. Characters whose current timeline does not exist are skipped.
func CheckKnowledgePropagation(m *multiverse.Multiverse) error {
	granted := make(map[ir.TimelineID]map[ir.CharacterID]ir.Set[string])
	for tid, t := range m.Timelines() {
		byCharacter := make(map[ir.CharacterID]ir.Set[string])
		for _, eid := range t.Events {
			e, ok := m.Event(eid)
			if !ok {
				continue
			}
			for _, effect := range e.Effects {
				if kg, ok := effect.(ir.KnowledgeGained); ok {
					if byCharacter[kg.Character] == nil {
						byCharacter[kg.Character] = ir.NewSet[string]()
					}
					byCharacter[kg.Character].Add(kg.Flag)
				}
			}
		}
		granted[tid] = byCharacter
	}

	for id, c := range m.Characters() {
		byCharacter, ok := granted[c.CurrentTimeline]
		if !ok {
			continue
		}
		flags, ok := byCharacter[id]
		if !ok {
			if len(c.KnowledgeFlags) > 0 {
				return violationf(KnowledgePropagation,
					"%s has knowledge flags %v but no event in %s granted any",
					describe(id, c), c.KnowledgeFlags.Sorted(), c.CurrentTimeline)
			}
			continue
		}
		for _, flag := range c.KnowledgeFlags.Sorted() {
			if !flags.Has(flag) {
				return violationf(KnowledgePropagation,
					"%s has knowledge flag %q but no event in %s granted it",
					describe(id, c), flag, c.CurrentTimeline)
			}
		}
	}
	return nil
}
