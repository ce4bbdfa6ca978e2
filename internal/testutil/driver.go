package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// ActionKind enumerates the random narrative actions the driver can take.
type ActionKind int

const (
	CreateCharacter ActionKind = iota
	KillCharacter
	ResurrectCharacter
	ChangeRelationship
	GrantKnowledge
	TradeMemory
	BranchTimeline
	GrantAbility
)

var actionNames = [...]string{
	CreateCharacter:    "create_character",
	KillCharacter:      "kill_character",
	ResurrectCharacter: "resurrect_character",
	ChangeRelationship: "change_relationship",
	GrantKnowledge:     "grant_knowledge",
	TradeMemory:        "trade_memory",
	BranchTimeline:     "branch_timeline",
	GrantAbility:       "grant_ability",
}

func (k ActionKind) String() string { return actionNames[k] }

// Action is one narrative action. Only the fields its Kind uses are set.
type Action struct {
	Kind      ActionKind
	Name      string
	Character ir.CharacterID
	Other     ir.CharacterID
	Timeline  ir.TimelineID
	State     ir.RelationshipState
	Flag      string
	Mechanism string
	Ability   ir.Ability
}

func (a Action) String() string {
	switch a.Kind {
	case CreateCharacter:
		return fmt.Sprintf("%s(%q, %s)", a.Kind, a.Name, a.Timeline)
	case KillCharacter:
		return fmt.Sprintf("%s(%s, %s)", a.Kind, a.Character, a.Timeline)
	case ResurrectCharacter:
		return fmt.Sprintf("%s(%s, %s, %q)", a.Kind, a.Character, a.Timeline, a.Mechanism)
	case ChangeRelationship:
		return fmt.Sprintf("%s(%s, %s, %s, %s)", a.Kind, a.Character, a.Other, a.State, a.Timeline)
	case GrantKnowledge:
		return fmt.Sprintf("%s(%s, %q, %s)", a.Kind, a.Character, a.Flag, a.Timeline)
	case TradeMemory:
		return fmt.Sprintf("%s(%s -> %s, %q)", a.Kind, a.Character, a.Other, a.Mechanism)
	case BranchTimeline:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Timeline)
	case GrantAbility:
		return fmt.Sprintf("%s(%s, %s)", a.Kind, a.Character, a.Ability)
	default:
		return fmt.Sprintf("action(%d)", int(a.Kind))
	}
}

// Apply performs a through the store's mutation API. Actions whose
// preconditions do not hold (unknown ids, dead actors, actors in another
// timeline) are skipped, so every applied action is a legal narrative move.
func Apply(m *multiverse.Multiverse, a Action) {
	switch a.Kind {
	case CreateCharacter:
		if _, ok := m.Timeline(a.Timeline); ok {
			m.CreateCharacter(a.Name, a.Timeline)
		}

	case KillCharacter:
		c, ok := m.Character(a.Character)
		if !ok || !c.Alive || c.CurrentTimeline != a.Timeline || !timelineExists(m, a.Timeline) {
			return
		}
		m.RecordEvent(ir.Event{
			Timeline:     a.Timeline,
			Description:  fmt.Sprintf("%s dies", a.Character),
			Participants: ir.NewSet(a.Character),
			Effects:      ir.EffectList{ir.CharacterDeath{Character: a.Character}},
		})

	case ResurrectCharacter:
		c, ok := m.Character(a.Character)
		if !ok || c.CurrentTimeline != a.Timeline || !timelineExists(m, a.Timeline) {
			return
		}
		m.RecordEvent(ir.Event{
			Timeline:     a.Timeline,
			Description:  fmt.Sprintf("%s is resurrected", a.Character),
			Participants: ir.NewSet(a.Character),
			Effects:      ir.EffectList{ir.CharacterResurrection{Character: a.Character, Mechanism: a.Mechanism}},
		})

	case ChangeRelationship:
		c1, ok1 := m.Character(a.Character)
		c2, ok2 := m.Character(a.Other)
		if !ok1 || !ok2 || !c1.Alive || !c2.Alive ||
			c1.CurrentTimeline != a.Timeline || c2.CurrentTimeline != a.Timeline {
			return
		}
		m.RecordEvent(ir.Event{
			Timeline:     a.Timeline,
			Description:  fmt.Sprintf("relationship changes between %s and %s", a.Character, a.Other),
			Participants: ir.NewSet(a.Character, a.Other),
			Effects:      ir.EffectList{ir.RelationshipChange{Character1: a.Character, Character2: a.Other, State: a.State}},
		})

	case GrantKnowledge:
		c, ok := m.Character(a.Character)
		if !ok || !c.Alive || c.CurrentTimeline != a.Timeline {
			return
		}
		m.RecordEvent(ir.Event{
			Timeline:     a.Timeline,
			Description:  fmt.Sprintf("%s learns %s", a.Character, a.Flag),
			Participants: ir.NewSet(a.Character),
			Effects:      ir.EffectList{ir.KnowledgeGained{Character: a.Character, Flag: a.Flag}},
		})

	case TradeMemory:
		from, ok1 := m.Character(a.Character)
		to, ok2 := m.Character(a.Other)
		if !ok1 || !ok2 || !from.Alive || !to.Alive || from.CurrentTimeline != to.CurrentTimeline {
			return
		}
		timeline := to.CurrentTimeline
		giver := a.Character
		mem := m.CreateMemory(0, timeline, ir.Traded{OriginalOwner: giver, AcquiredVia: a.Mechanism}, 0.9)
		m.RecordEvent(ir.Event{
			Timeline:     timeline,
			Description:  fmt.Sprintf("memory traded from %s to %s", a.Character, a.Other),
			Participants: ir.NewSet(a.Character, a.Other),
			Effects:      ir.EffectList{ir.MemoryTransfer{Memory: mem, From: &giver, To: a.Other}},
		})

	case BranchTimeline:
		t, ok := m.Timeline(a.Timeline)
		if !ok || len(t.Events) == 0 {
			return
		}
		m.CreateTimelineBranch(a.Timeline, t.Events[len(t.Events)-1])

	case GrantAbility:
		if c, ok := m.Character(a.Character); ok && c.Alive {
			m.GrantAbility(a.Character, a.Ability)
		}
	}
}

func timelineExists(m *multiverse.Multiverse, id ir.TimelineID) bool {
	_, ok := m.Timeline(id)
	return ok
}

// Kinds lists every action kind in declaration order.
func Kinds() []ActionKind {
	kinds := make([]ActionKind, len(actionNames))
	for i := range kinds {
		kinds[i] = ActionKind(i)
	}
	return kinds
}

var (
	nameGen      = rapid.StringMatching(`[a-z]{4,10}`)
	flagGen      = rapid.StringMatching(`[a-z]{5,12}`)
	mechanismGen = rapid.StringMatching(`[a-z]{5,15}`)
	stateGen     = rapid.IntRange(-2, 2)
	abilityGen   = rapid.SampledFrom(ir.AllAbilities)
)

// DrawAction draws an action of the given kind against m's current
// population. Ids are drawn slightly past the populated range so that
// actions against missing entities are exercised too.
func DrawAction(t *rapid.T, m *multiverse.Multiverse, kind ActionKind) Action {
	timelines, characters, _, _ := m.Len()
	timelineGen := rapid.IntRange(0, timelines)
	characterGen := rapid.IntRange(0, characters+1)

	a := Action{Kind: kind}
	switch kind {
	case CreateCharacter:
		a.Name = nameGen.Draw(t, "name")
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
	case KillCharacter:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
	case ResurrectCharacter:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
		a.Mechanism = mechanismGen.Draw(t, "mechanism")
	case ChangeRelationship:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Other = ir.CharacterID(characterGen.Draw(t, "other"))
		a.State = ir.RelationshipState(stateGen.Draw(t, "state"))
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
	case GrantKnowledge:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Flag = flagGen.Draw(t, "flag")
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
	case TradeMemory:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Other = ir.CharacterID(characterGen.Draw(t, "other"))
		a.Mechanism = mechanismGen.Draw(t, "mechanism")
	case BranchTimeline:
		a.Timeline = ir.TimelineID(timelineGen.Draw(t, "timeline"))
	case GrantAbility:
		a.Character = ir.CharacterID(characterGen.Draw(t, "character"))
		a.Ability = abilityGen.Draw(t, "ability")
	}
	return a
}

// DrawAnyAction draws an action of a random kind.
func DrawAnyAction(t *rapid.T, m *multiverse.Multiverse) Action {
	return DrawAction(t, m, rapid.SampledFrom(Kinds()).Draw(t, "kind"))
}

// Actions returns a state machine over m for (*rapid.T).Repeat: one entry
// per action kind that draws and applies a single action, and the "" entry
// that runs every check after each step. rapid shrinks a failing run to a
// minimal action sequence and replays it from the printed seed.
func Actions(m *multiverse.Multiverse) map[string]func(*rapid.T) {
	actions := make(map[string]func(*rapid.T), len(actionNames)+1)
	for _, kind := range Kinds() {
		actions[kind.String()] = func(t *rapid.T) {
			a := DrawAction(t, m, kind)
			t.Log(a)
			Apply(m, a)
		}
	}
	actions[""] = func(t *rapid.T) {
		if err := invariant.CheckAll(m); err != nil {
			t.Fatal(err)
		}
	}
	return actions
}
