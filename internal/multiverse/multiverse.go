package multiverse

import (
	"github.com/roach88/multiverse/internal/emotion"
	"github.com/roach88/multiverse/internal/ir"
)

// Multiverse is the entity store.
type Multiverse struct {
	timelines  map[ir.TimelineID]*ir.Timeline
	characters map[ir.CharacterID]*ir.Character
	memories   map[ir.MemoryID]*ir.Memory
	events     map[ir.EventID]*ir.Event

	nextTimeline  uint64
	nextCharacter uint64
	nextMemory    uint64
	nextEvent     uint64
}

// New returns a store holding only the root timeline (id 0, no parent,
// causally stable, empty).
func New() *Multiverse {
	m := &Multiverse{
		timelines:    make(map[ir.TimelineID]*ir.Timeline),
		characters:   make(map[ir.CharacterID]*ir.Character),
		memories:     make(map[ir.MemoryID]*ir.Memory),
		events:       make(map[ir.EventID]*ir.Event),
		nextTimeline: uint64(ir.RootTimeline) + 1,
	}
	m.timelines[ir.RootTimeline] = &ir.Timeline{
		ID:              ir.RootTimeline,
		Events:          []ir.EventID{},
		Characters:      ir.NewSet[ir.CharacterID](),
		CausalityStable: true,
	}
	return m
}

// Root returns the root timeline id.
func (m *Multiverse) Root() ir.TimelineID { return ir.RootTimeline }

// CreateCharacter allocates a living character native to timeline and adds
// it to that timeline's character set. The timeline is not required to
// exist; if it does not, only the character is created.
func (m *Multiverse) CreateCharacter(name string, timeline ir.TimelineID) ir.CharacterID {
	id := ir.CharacterID(m.nextCharacter)
	m.nextCharacter++

	m.characters[id] = &ir.Character{
		ID:              id,
		Name:            name,
		CurrentTimeline: timeline,
		NativeTimeline:  timeline,
		Memories:        ir.NewSet[ir.MemoryID](),
		KnowledgeFlags:  ir.NewSet[string](),
		Alive:           true,
		Abilities:       ir.NewSet[ir.Ability](),
		Relationships:   make(map[ir.CharacterID]ir.RelationshipState),
		Emotional:       emotion.NewState(),
	}
	if t, ok := m.timelines[timeline]; ok {
		t.Characters.Add(id)
	}
	return id
}

// CreateTimelineBranch allocates a timeline whose character set is a copy of
// parent's current set. Neither the parent nor the divergence event is
// verified; a missing parent yields an empty character set.
func (m *Multiverse) CreateTimelineBranch(parent ir.TimelineID, divergence ir.EventID) ir.TimelineID {
	return m.branch(parent, &divergence)
}

// CreateTimelineBranchAtStart allocates a branch of parent with no divergence
// event. It splits off before anything happened in parent, so none of
// parent's events are part of its history.
func (m *Multiverse) CreateTimelineBranchAtStart(parent ir.TimelineID) ir.TimelineID {
	return m.branch(parent, nil)
}

func (m *Multiverse) branch(parent ir.TimelineID, divergence *ir.EventID) ir.TimelineID {
	id := ir.TimelineID(m.nextTimeline)
	m.nextTimeline++

	characters := ir.NewSet[ir.CharacterID]()
	if p, ok := m.timelines[parent]; ok {
		characters = p.Characters.Clone()
	}
	m.timelines[id] = &ir.Timeline{
		ID:              id,
		Parent:          &parent,
		DivergenceEvent: divergence,
		Events:          []ir.EventID{},
		Characters:      characters,
		CausalityStable: true,
	}
	return id
}

// CreateWitnessedMemory allocates a full-fidelity memory of event witnessed
// by character. It does not attach the memory to anyone, and it does not
// check that character took part in event.
func (m *Multiverse) CreateWitnessedMemory(event ir.EventID, timeline ir.TimelineID, character ir.CharacterID) ir.MemoryID {
	return m.CreateMemory(event, timeline, ir.Witnessed{Character: character}, 1.0)
}

// CreateMemory allocates a memory with explicit provenance and fidelity.
// Fidelity is stored as given.
func (m *Multiverse) CreateMemory(event ir.EventID, timeline ir.TimelineID, provenance ir.Provenance, fidelity float64) ir.MemoryID {
	id := ir.MemoryID(m.nextMemory)
	m.nextMemory++

	m.memories[id] = &ir.Memory{
		ID:             id,
		Event:          event,
		SourceTimeline: timeline,
		Provenance:     provenance,
		Fidelity:       fidelity,
	}
	return id
}

// RecordEvent stores e under a fresh id (any id on e is ignored), appends it
// to its timeline's event list when that timeline exists, and applies its
// effects in order. The event is stored and its effects applied even when
// the timeline is missing.
func (m *Multiverse) RecordEvent(e ir.Event) ir.EventID {
	id := ir.EventID(m.nextEvent)
	m.nextEvent++

	stored := e.Clone()
	stored.ID = id
	if stored.Participants == nil {
		stored.Participants = ir.NewSet[ir.CharacterID]()
	}
	if stored.Effects == nil {
		stored.Effects = ir.EffectList{}
	}

	if t, ok := m.timelines[stored.Timeline]; ok {
		t.Events = append(t.Events, id)
	}
	m.applyEffects(stored)
	m.events[id] = stored
	return id
}

// DecayEmotions decays every character's emotions by factor.
func (m *Multiverse) DecayEmotions(factor float64) {
	for _, c := range m.characters {
		c.Emotional.Decay(factor)
	}
}

// GiveMemory attaches an existing memory id to a character. Neither side is
// checked; an unknown memory id is attached as-is.
func (m *Multiverse) GiveMemory(character ir.CharacterID, memory ir.MemoryID) {
	if c, ok := m.characters[character]; ok {
		c.Memories.Add(memory)
	}
}

// GrantAbility adds an ability to a character.
func (m *Multiverse) GrantAbility(character ir.CharacterID, ability ir.Ability) {
	if c, ok := m.characters[character]; ok {
		c.Abilities.Add(ability)
	}
}

// MoveCharacter sets a character's current timeline. Timeline character sets
// are left alone; they record who was present at creation or branch time.
func (m *Multiverse) MoveCharacter(character ir.CharacterID, timeline ir.TimelineID) {
	if c, ok := m.characters[character]; ok {
		c.CurrentTimeline = timeline
	}
}

// DestabilizeTimeline marks a timeline as no longer causally stable.
func (m *Multiverse) DestabilizeTimeline(timeline ir.TimelineID) {
	if t, ok := m.timelines[timeline]; ok {
		t.CausalityStable = false
	}
}

// UpdateCharacter runs fn against the stored character, bypassing the event
// log. It reports whether the character exists.
func (m *Multiverse) UpdateCharacter(id ir.CharacterID, fn func(c *ir.Character)) bool {
	c, ok := m.characters[id]
	if !ok {
		return false
	}
	fn(c)
	return true
}
