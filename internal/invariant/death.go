package invariant

import (
	"maps"

	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// liveness maps characters to whether they are alive at a point in a
// timeline's replay.
type liveness map[ir.CharacterID]bool

// CheckDeathFinality replays timelines in ascending id order, so a parent is
// replayed before its branches as long as branch ids only grow.
//
// A branch starts from its parent's table as it stood right after the
// divergence event, or from the parent's starting table if the branch has no
// divergence event or it is not in the parent's list. The inherited table is
// cut down to the branch's own members, so a character that joined the parent
// after the branch was created is absent from it and counts as dead there.
// Members missing from the table start alive. While replaying, every participant must be alive unless the
// event itself resurrects them, and a resurrection must name a mechanism.
// Finally each character's stored alive flag must match the table of its
// current timeline; characters absent from that table are expected alive.
func CheckDeathFinality(m *multiverse.Multiverse) error {
	divergences := make(map[ir.TimelineID]ir.Set[ir.EventID])
	for _, t := range m.Timelines() {
		if t.Parent == nil || t.DivergenceEvent == nil {
			continue
		}
		if divergences[*t.Parent] == nil {
			divergences[*t.Parent] = ir.NewSet[ir.EventID]()
		}
		divergences[*t.Parent].Add(*t.DivergenceEvent)
	}

	tables := make(map[ir.TimelineID]liveness)
	starts := make(map[ir.TimelineID]liveness)
	forks := make(map[ir.TimelineID]map[ir.EventID]liveness)

	for tid, t := range m.Timelines() {
		alive := make(liveness)
		if t.Parent != nil {
			var fork liveness
			if t.DivergenceEvent != nil {
				fork = forks[*t.Parent][*t.DivergenceEvent]
			}
			if fork == nil {
				fork = starts[*t.Parent]
			}
			for cid, live := range fork {
				if t.Characters.Has(cid) {
					alive[cid] = live
				}
			}
		}
		for cid := range t.Characters {
			if _, known := alive[cid]; !known {
				alive[cid] = true
			}
		}
		starts[tid] = maps.Clone(alive)

		for _, eid := range t.Events {
			e, ok := m.Event(eid)
			if !ok {
				continue
			}
			for _, p := range e.Participants.Sorted() {
				if alive[p] || resurrects(e, p) {
					continue
				}
				name := "Unknown"
				if c, ok := m.Character(p); ok {
					name = c.Name
				}
				return violationf(DeathFinality, "dead character %s (%s) participates in %s without resurrection", name, p, eid)
			}

			for _, effect := range e.Effects {
				switch eff := effect.(type) {
				case ir.CharacterDeath:
					alive[eff.Character] = false
				case ir.CharacterResurrection:
					if eff.Mechanism == "" {
						return violationf(DeathFinality, "%s resurrected in %s without a mechanism", eff.Character, eid)
					}
					alive[eff.Character] = true
				}
			}

			if divergences[tid].Has(eid) {
				if forks[tid] == nil {
					forks[tid] = make(map[ir.EventID]liveness)
				}
				forks[tid][eid] = maps.Clone(alive)
			}
		}
		tables[tid] = alive
	}

	for id, c := range m.Characters() {
		table, ok := tables[c.CurrentTimeline]
		if !ok {
			continue
		}
		expected, known := table[id]
		if !known {
			expected = true
		}
		if c.Alive != expected {
			return violationf(DeathFinality,
				"%s alive status is %t but events in %s say %t",
				describe(id, c), c.Alive, c.CurrentTimeline, expected)
		}
	}
	return nil
}

func resurrects(e *ir.Event, character ir.CharacterID) bool {
	for _, effect := range e.Effects {
		if r, ok := effect.(ir.CharacterResurrection); ok && r.Character == character {
			return true
		}
	}
	return false
}
