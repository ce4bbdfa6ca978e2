package multiverse

import (
	"iter"
	"maps"
	"slices"

	"github.com/roach88/multiverse/internal/ir"
)

// CanPerceiveTimeline reports whether character is in timeline or holds
// TimelinePerception. Unknown characters perceive nothing.
func (m *Multiverse) CanPerceiveTimeline(character ir.CharacterID, timeline ir.TimelineID) bool {
	c, ok := m.characters[character]
	if !ok {
		return false
	}
	return c.CurrentTimeline == timeline || c.HasAbility(ir.TimelinePerception)
}

// HasMemoryOfEvent reports whether any memory owned by character refers to
// event. Owned ids that do not resolve are ignored.
func (m *Multiverse) HasMemoryOfEvent(character ir.CharacterID, event ir.EventID) bool {
	c, ok := m.characters[character]
	if !ok {
		return false
	}
	for id := range c.Memories {
		if mem, ok := m.memories[id]; ok && mem.Event == event {
			return true
		}
	}
	return false
}

// The accessors below return stored entities. Callers must treat them as
// read-only; use UpdateCharacter or the mutation methods to change state.

// Timeline looks up a timeline by id.
func (m *Multiverse) Timeline(id ir.TimelineID) (*ir.Timeline, bool) {
	t, ok := m.timelines[id]
	return t, ok
}

// Character looks up a character by id.
func (m *Multiverse) Character(id ir.CharacterID) (*ir.Character, bool) {
	c, ok := m.characters[id]
	return c, ok
}

// Memory looks up a memory by id.
func (m *Multiverse) Memory(id ir.MemoryID) (*ir.Memory, bool) {
	mem, ok := m.memories[id]
	return mem, ok
}

// Event looks up an event by id.
func (m *Multiverse) Event(id ir.EventID) (*ir.Event, bool) {
	e, ok := m.events[id]
	return e, ok
}

// Timelines yields every timeline in ascending id order, which is creation
// order.
func (m *Multiverse) Timelines() iter.Seq2[ir.TimelineID, *ir.Timeline] {
	return ordered(m.timelines)
}

// Characters yields every character in ascending id order.
func (m *Multiverse) Characters() iter.Seq2[ir.CharacterID, *ir.Character] {
	return ordered(m.characters)
}

// Memories yields every memory in ascending id order.
func (m *Multiverse) Memories() iter.Seq2[ir.MemoryID, *ir.Memory] {
	return ordered(m.memories)
}

// Events yields every event in ascending id order.
func (m *Multiverse) Events() iter.Seq2[ir.EventID, *ir.Event] {
	return ordered(m.events)
}

// Len returns the number of timelines, characters, memories, and events.
func (m *Multiverse) Len() (timelines, characters, memories, events int) {
	return len(m.timelines), len(m.characters), len(m.memories), len(m.events)
}

func ordered[K ~uint64, V any](entries map[K]V) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range slices.Sorted(maps.Keys(entries)) {
			if !yield(k, entries[k]) {
				return
			}
		}
	}
}
