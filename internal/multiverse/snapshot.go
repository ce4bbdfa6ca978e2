package multiverse

import (
	"errors"
	"fmt"

	"github.com/roach88/multiverse/internal/emotion"
	"github.com/roach88/multiverse/internal/ir"
)

// Counters are the next id each kind will hand out.
type Counters struct {
	NextTimeline  uint64 `json:"next_timeline"`
	NextCharacter uint64 `json:"next_character"`
	NextMemory    uint64 `json:"next_memory"`
	NextEvent     uint64 `json:"next_event"`
}

// Snapshot is a full structural copy of a store: every entity in ascending id
// order plus the id counters. It shares nothing with the store it came from.
type Snapshot struct {
	Version    string          `json:"version"`
	Timelines  []*ir.Timeline  `json:"timelines"`
	Characters []*ir.Character `json:"characters"`
	Memories   []*ir.Memory    `json:"memories"`
	Events     []*ir.Event     `json:"events"`
	Counters   Counters        `json:"counters"`
}

// Snapshot captures the current state.
func (m *Multiverse) Snapshot() Snapshot {
	s := Snapshot{
		Version:    ir.SnapshotVersion,
		Timelines:  make([]*ir.Timeline, 0, len(m.timelines)),
		Characters: make([]*ir.Character, 0, len(m.characters)),
		Memories:   make([]*ir.Memory, 0, len(m.memories)),
		Events:     make([]*ir.Event, 0, len(m.events)),
		Counters: Counters{
			NextTimeline:  m.nextTimeline,
			NextCharacter: m.nextCharacter,
			NextMemory:    m.nextMemory,
			NextEvent:     m.nextEvent,
		},
	}
	for _, t := range m.Timelines() {
		s.Timelines = append(s.Timelines, t.Clone())
	}
	for _, c := range m.Characters() {
		s.Characters = append(s.Characters, c.Clone())
	}
	for _, mem := range m.Memories() {
		s.Memories = append(s.Memories, mem.Clone())
	}
	for _, e := range m.Events() {
		s.Events = append(s.Events, e.Clone())
	}
	return s
}

// Digest returns the content address of the snapshot: SHA-256 over its
// canonical JSON, domain separated.
func (s Snapshot) Digest() (string, error) {
	return ir.Digest(ir.DomainSnapshot, s)
}

// Restore rebuilds a store from a snapshot. It rejects snapshots with
// duplicate ids, a missing root timeline, or counters that would hand out an
// id already in use.
func Restore(s Snapshot) (*Multiverse, error) {
	if s.Version != ir.SnapshotVersion {
		return nil, fmt.Errorf("restore: unsupported snapshot version %q (want %q)", s.Version, ir.SnapshotVersion)
	}
	m := &Multiverse{
		timelines:     make(map[ir.TimelineID]*ir.Timeline, len(s.Timelines)),
		characters:    make(map[ir.CharacterID]*ir.Character, len(s.Characters)),
		memories:      make(map[ir.MemoryID]*ir.Memory, len(s.Memories)),
		events:        make(map[ir.EventID]*ir.Event, len(s.Events)),
		nextTimeline:  s.Counters.NextTimeline,
		nextCharacter: s.Counters.NextCharacter,
		nextMemory:    s.Counters.NextMemory,
		nextEvent:     s.Counters.NextEvent,
	}

	for _, t := range s.Timelines {
		if t == nil {
			return nil, errors.New("restore: nil timeline")
		}
		if _, dup := m.timelines[t.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate %s", t.ID)
		}
		if uint64(t.ID) >= m.nextTimeline {
			return nil, fmt.Errorf("restore: %s not below timeline counter %d", t.ID, m.nextTimeline)
		}
		t = t.Clone()
		if t.Events == nil {
			t.Events = []ir.EventID{}
		}
		m.timelines[t.ID] = t
	}
	if _, ok := m.timelines[ir.RootTimeline]; !ok {
		return nil, errors.New("restore: missing root timeline")
	}

	for _, c := range s.Characters {
		if c == nil {
			return nil, errors.New("restore: nil character")
		}
		if _, dup := m.characters[c.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate %s", c.ID)
		}
		if uint64(c.ID) >= m.nextCharacter {
			return nil, fmt.Errorf("restore: %s not below character counter %d", c.ID, m.nextCharacter)
		}
		c = c.Clone()
		if c.Emotional.Goals == nil {
			c.Emotional.Goals = make(map[string]emotion.Goal)
		}
		m.characters[c.ID] = c
	}

	for _, mem := range s.Memories {
		if mem == nil {
			return nil, errors.New("restore: nil memory")
		}
		if _, dup := m.memories[mem.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate %s", mem.ID)
		}
		if uint64(mem.ID) >= m.nextMemory {
			return nil, fmt.Errorf("restore: %s not below memory counter %d", mem.ID, m.nextMemory)
		}
		m.memories[mem.ID] = mem.Clone()
	}

	for _, e := range s.Events {
		if e == nil {
			return nil, errors.New("restore: nil event")
		}
		if _, dup := m.events[e.ID]; dup {
			return nil, fmt.Errorf("restore: duplicate %s", e.ID)
		}
		if uint64(e.ID) >= m.nextEvent {
			return nil, fmt.Errorf("restore: %s not below event counter %d", e.ID, m.nextEvent)
		}
		m.events[e.ID] = e.Clone()
	}
	return m, nil
}

// Clone returns an independent copy of the store, suitable for handing to a
// reader while the original keeps being mutated.
func (m *Multiverse) Clone() *Multiverse {
	out := &Multiverse{
		timelines:     make(map[ir.TimelineID]*ir.Timeline, len(m.timelines)),
		characters:    make(map[ir.CharacterID]*ir.Character, len(m.characters)),
		memories:      make(map[ir.MemoryID]*ir.Memory, len(m.memories)),
		events:        make(map[ir.EventID]*ir.Event, len(m.events)),
		nextTimeline:  m.nextTimeline,
		nextCharacter: m.nextCharacter,
		nextMemory:    m.nextMemory,
		nextEvent:     m.nextEvent,
	}
	for id, t := range m.timelines {
		out.timelines[id] = t.Clone()
	}
	for id, c := range m.characters {
		out.characters[id] = c.Clone()
	}
	for id, mem := range m.memories {
		out.memories[id] = mem.Clone()
	}
	for id, e := range m.events {
		out.events[id] = e.Clone()
	}
	return out
}
