package multiverse

import (
	"github.com/roach88/multiverse/internal/ir"
)

// applyEffects interprets e's effects in order. Each effect stands alone: one
// that names a missing character is skipped and the rest still apply.
func (m *Multiverse) applyEffects(e *ir.Event) {
	for _, effect := range e.Effects {
		m.applyEffect(effect)
	}
}

func (m *Multiverse) applyEffect(effect ir.Effect) {
	switch eff := effect.(type) {
	case nil:
	case ir.CharacterDeath:
		if c, ok := m.characters[eff.Character]; ok {
			c.Alive = false
		}
	case ir.CharacterResurrection:
		// The mechanism lives only in the event log.
		if c, ok := m.characters[eff.Character]; ok {
			c.Alive = true
		}
	case ir.RelationshipChange:
		if c, ok := m.characters[eff.Character1]; ok {
			c.Relationships[eff.Character2] = eff.State
		}
		if c, ok := m.characters[eff.Character2]; ok {
			c.Relationships[eff.Character1] = eff.State
		}
	case ir.KnowledgeGained:
		if c, ok := m.characters[eff.Character]; ok {
			c.KnowledgeFlags.Add(eff.Flag)
		}
	case ir.MemoryTransfer:
		// Copy, not move: the giver keeps the memory.
		if c, ok := m.characters[eff.To]; ok {
			c.Memories.Add(eff.Memory)
		}
	case ir.TimelineBranch:
		// Marker only. Branching goes through CreateTimelineBranch.
	case ir.AppraisalTrigger:
		if c, ok := m.characters[eff.Character]; ok {
			c.Emotional.Appraise(eff.Belief)
		}
	case ir.AddGoal:
		if c, ok := m.characters[eff.Character]; ok {
			c.Emotional.AddGoal(eff.Goal)
		}
	default:
		// Effects this store does not know are skipped like dangling ones.
	}
}
