package ir

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/multiverse/internal/emotion"
)

// Ability is a closed set of special powers a character may hold.
type Ability int

const (
	TimelinePerception Ability = iota
	Precognition
	MemoryImmunity
	LoopMemory
	CausalityHacking
)

// AllAbilities lists every ability in declaration order.
var AllAbilities = []Ability{TimelinePerception, Precognition, MemoryImmunity, LoopMemory, CausalityHacking}

var abilityNames = [...]string{
	TimelinePerception: "timeline_perception",
	Precognition:       "precognition",
	MemoryImmunity:     "memory_immunity",
	LoopMemory:         "loop_memory",
	CausalityHacking:   "causality_hacking",
}

func (a Ability) String() string {
	if a < TimelinePerception || a > CausalityHacking {
		return fmt.Sprintf("ability(%d)", int(a))
	}
	return abilityNames[a]
}

// ParseAbility resolves a snake_case ability name.
func ParseAbility(name string) (Ability, error) {
	for _, a := range AllAbilities {
		if abilityNames[a] == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown ability %q", name)
}

func (a Ability) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func (a *Ability) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseAbility(name)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// RelationshipState is ordered Hostile < Distrustful < Neutral < Friendly < Allied.
type RelationshipState int

const (
	Hostile     RelationshipState = -2
	Distrustful RelationshipState = -1
	Neutral     RelationshipState = 0
	Friendly    RelationshipState = 1
	Allied      RelationshipState = 2
)

var relationshipNames = map[RelationshipState]string{
	Hostile:     "hostile",
	Distrustful: "distrustful",
	Neutral:     "neutral",
	Friendly:    "friendly",
	Allied:      "allied",
}

func (r RelationshipState) String() string {
	if name, ok := relationshipNames[r]; ok {
		return name
	}
	return fmt.Sprintf("relationship(%d)", int(r))
}

// ParseRelationshipState resolves a relationship name.
func ParseRelationshipState(name string) (RelationshipState, error) {
	for state, n := range relationshipNames {
		if n == name {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown relationship state %q", name)
}

func (r RelationshipState) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *RelationshipState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRelationshipState(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Timeline is one causally ordered branch of events.
type Timeline struct {
	ID              TimelineID       `json:"id"`
	Parent          *TimelineID      `json:"parent,omitempty"`
	DivergenceEvent *EventID         `json:"divergence_event,omitempty"`
	Events          []EventID        `json:"events"`     // Append-only, insertion order
	Characters      Set[CharacterID] `json:"characters"`
	CausalityStable bool             `json:"causality_stable"`
}

// Clone returns a deep copy.
func (t *Timeline) Clone() *Timeline {
	out := *t
	if t.Parent != nil {
		p := *t.Parent
		out.Parent = &p
	}
	if t.DivergenceEvent != nil {
		e := *t.DivergenceEvent
		out.DivergenceEvent = &e
	}
	out.Events = slices.Clone(t.Events)
	out.Characters = t.Characters.Clone()
	return &out
}

// Character is a protagonist or extra. NativeTimeline never changes after
// creation; CurrentTimeline moves when the character travels.
type Character struct {
	ID              CharacterID                       `json:"id"`
	Name            string                            `json:"name"`
	CurrentTimeline TimelineID                        `json:"current_timeline"`
	NativeTimeline  TimelineID                        `json:"native_timeline"`
	Memories        Set[MemoryID]                     `json:"memories"`
	KnowledgeFlags  Set[string]                       `json:"knowledge_flags"`
	Alive           bool                              `json:"alive"`
	Abilities       Set[Ability]                      `json:"abilities"`
	Relationships   map[CharacterID]RelationshipState `json:"relationships"`
	Emotional       emotion.State                     `json:"emotional_state"`
}

// HasAbility reports whether the character holds a.
func (c *Character) HasAbility(a Ability) bool {
	return c.Abilities.Has(a)
}

// Clone returns a deep copy.
func (c *Character) Clone() *Character {
	out := *c
	out.Memories = c.Memories.Clone()
	out.KnowledgeFlags = c.KnowledgeFlags.Clone()
	out.Abilities = c.Abilities.Clone()
	out.Relationships = make(map[CharacterID]RelationshipState, len(c.Relationships))
	for other, state := range c.Relationships {
		out.Relationships[other] = state
	}
	out.Emotional = c.Emotional.Clone()
	return &out
}

// Memory is a character-ownable recollection of an event.
type Memory struct {
	ID             MemoryID   `json:"id"`
	Event          EventID    `json:"event"`
	SourceTimeline TimelineID `json:"source_timeline"`
	Provenance     Provenance `json:"provenance"`
	Fidelity       float64    `json:"fidelity"` // [0, 1], not enforced
}

// Clone returns a copy. Provenance values are immutable.
func (m *Memory) Clone() *Memory {
	out := *m
	return &out
}

// Event is something that happened in one timeline. Effects are applied in
// order when the event is recorded.
type Event struct {
	ID           EventID            `json:"id"`
	Timeline     TimelineID         `json:"timeline"`
	Description  string             `json:"description"`
	Participants Set[CharacterID]   `json:"participants"`
	Effects      EffectList         `json:"effects"`
	Violation    CausalityViolation `json:"causality_violation,omitempty"`
}

// Clone returns a copy. Recorded events are never mutated, so effect values
// are shared.
func (e *Event) Clone() *Event {
	out := *e
	out.Participants = e.Participants.Clone()
	out.Effects = slices.Clone(e.Effects)
	return &out
}
