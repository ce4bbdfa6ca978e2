package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

var protagonists = []string{
	"Vera Kandros", "Khelis Tev", "Dr. Elian Saros", "Nameless", "Corvus Shal",
	"Yash-Tel", "Riven Blackwood", "The Cartographer", "Synthesis", "Mara Vex",
	"Kor-Valeth", "Dr. Theo Lux", "The Conductor",
}

func TestRandomActionSequencesHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := multiverse.New()
		for _, name := range protagonists {
			m.CreateCharacter(name, m.Root())
		}
		t.Repeat(Actions(m))
	})
}

func TestRandomActionSequencesFromEmptyHold(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		t.Repeat(Actions(multiverse.New()))
	})
}

func TestActionSequencesReplayIdentically(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a, b := multiverse.New(), multiverse.New()
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			act := DrawAnyAction(t, a)
			Apply(a, act)
			Apply(b, act)
		}

		digestA, err := a.Snapshot().Digest()
		if err != nil {
			t.Fatal(err)
		}
		digestB, err := b.Snapshot().Digest()
		if err != nil {
			t.Fatal(err)
		}
		if digestA != digestB {
			t.Fatalf("digests differ: %s != %s", digestA, digestB)
		}
	})
}

func TestDrawActionKeepsKind(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := multiverse.New()
		kind := rapid.SampledFrom(Kinds()).Draw(t, "kind")
		if got := DrawAction(t, m, kind).Kind; got != kind {
			t.Fatalf("drew %s, want %s", got, kind)
		}
	})
}

func TestApplySkipsIllegalActions(t *testing.T) {
	m := multiverse.New()
	a := m.CreateCharacter("A", m.Root())

	Apply(m, Action{Kind: CreateCharacter, Name: "ghost", Timeline: 5})
	Apply(m, Action{Kind: KillCharacter, Character: a, Timeline: 3})
	Apply(m, Action{Kind: BranchTimeline, Timeline: m.Root()})
	Apply(m, Action{Kind: TradeMemory, Character: a, Other: 9, Mechanism: "market"})

	timelines, characters, memories, events := m.Len()
	assert.Equal(t, []int{1, 1, 0, 0}, []int{timelines, characters, memories, events})
}

func TestApplyKillThenResurrect(t *testing.T) {
	m := multiverse.New()
	a := m.CreateCharacter("Nameless", m.Root())

	Apply(m, Action{Kind: KillCharacter, Character: a, Timeline: m.Root()})
	c, _ := m.Character(a)
	assert.False(t, c.Alive)
	require.NoError(t, invariant.CheckAll(m))

	// Dead characters cannot be granted knowledge.
	Apply(m, Action{Kind: GrantKnowledge, Character: a, Flag: "gate", Timeline: m.Root()})
	assert.Empty(t, c.KnowledgeFlags)

	Apply(m, Action{Kind: ResurrectCharacter, Character: a, Timeline: m.Root(), Mechanism: "Living Gate"})
	assert.True(t, c.Alive)
	require.NoError(t, invariant.CheckAll(m))
}

func TestApplyTradeMemory(t *testing.T) {
	m := multiverse.New()
	khelis := m.CreateCharacter("Khelis Tev", m.Root())
	customer := m.CreateCharacter("Customer", m.Root())

	for range 5 {
		Apply(m, Action{Kind: TradeMemory, Character: khelis, Other: customer, Mechanism: "Memory Market"})
	}

	c, _ := m.Character(customer)
	assert.Len(t, c.Memories, 5)
	for _, id := range c.Memories.Sorted() {
		mem, ok := m.Memory(id)
		require.True(t, ok)
		assert.Equal(t, ir.Traded{OriginalOwner: khelis, AcquiredVia: "Memory Market"}, mem.Provenance)
	}
	require.NoError(t, invariant.CheckAll(m))
}

func TestFoldDriveBranching(t *testing.T) {
	m := multiverse.New()
	vera := m.CreateCharacter("Vera Kandros", m.Root())
	m.GrantAbility(vera, ir.TimelinePerception)

	current := m.Root()
	for range 4 {
		e := m.RecordEvent(ir.Event{Timeline: current, Description: "Vera decides", Participants: ir.NewSet(vera)})
		current = m.CreateTimelineBranch(current, e)
		m.MoveCharacter(vera, current)
	}

	require.NoError(t, invariant.CheckAll(m))
	timelines, _, _, _ := m.Len()
	assert.Equal(t, 5, timelines)
}

func TestActionString(t *testing.T) {
	a := Action{Kind: ChangeRelationship, Character: 1, Other: 2, State: ir.Allied, Timeline: 0}
	assert.Equal(t, "change_relationship(Character#1, Character#2, allied, Timeline#0)", a.String())
}
