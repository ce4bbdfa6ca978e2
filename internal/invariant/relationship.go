package invariant

import (
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

type pair struct {
	from, to ir.CharacterID
}

// CheckRelationshipConsistency replays each timeline's RelationshipChange
// effects and requires every member's stored relationship toward a partner
// to equal the last replayed value for that pair. A change sets both
// directions, so the replay does too. Pairs with no history in the timeline
// are unconstrained.
func CheckRelationshipConsistency(m *multiverse.Multiverse) error {
	for tid, t := range m.Timelines() {
		last := make(map[pair]ir.RelationshipState)
		for _, eid := range t.Events {
			e, ok := m.Event(eid)
			if !ok {
				continue
			}
			for _, effect := range e.Effects {
				if rc, ok := effect.(ir.RelationshipChange); ok {
					last[pair{rc.Character1, rc.Character2}] = rc.State
					last[pair{rc.Character2, rc.Character1}] = rc.State
				}
			}
		}
		if len(last) == 0 {
			continue
		}

		for _, cid := range t.Characters.Sorted() {
			c, ok := m.Character(cid)
			if !ok {
				continue
			}
			for _, other := range sortedKeys(c.Relationships) {
				want, ok := last[pair{cid, other}]
				if !ok {
					continue
				}
				if got := c.Relationships[other]; got != want {
					return violationf(RelationshipConsistency,
						"relationship of %s toward %s is %s but the last event in %s set it to %s",
						describe(cid, c), other, got, tid, want)
				}
			}
		}
	}
	return nil
}
