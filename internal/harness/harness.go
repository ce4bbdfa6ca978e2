package harness

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/multiverse/internal/config"
	"github.com/roach88/multiverse/internal/emotion"
	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/ir"
	"github.com/roach88/multiverse/internal/multiverse"
)

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger routes step logging to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) { h.logger = logger }
}

// WithDecayFactor sets the factor used by decay steps that name none.
func WithDecayFactor(factor float64) Option {
	return func(h *Harness) { h.decayFactor = factor }
}

// Harness executes one scenario against a fresh multiverse and resolves
// scenario labels to entity ids.
type Harness struct {
	m           *multiverse.Multiverse
	logger      *slog.Logger
	decayFactor float64

	characters map[string]ir.CharacterID
	timelines  map[string]ir.TimelineID
	events     map[string]ir.EventID
	memories   map[string]ir.MemoryID
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh multiverse. Steps never fail on their
// own (store mutations are infallible); an error is returned only for a
// scenario that references something it never created or uses an unknown
// name. Expectation failures are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		m:           multiverse.New(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs by default
		decayFactor: config.DefaultDecayFactor,
		characters:  map[string]ir.CharacterID{},
		timelines:   map[string]ir.TimelineID{RootLabel: ir.RootTimeline},
		events:      map[string]ir.EventID{},
		memories:    map[string]ir.MemoryID{},
	}
	for _, opt := range opts {
		opt(h)
	}

	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
		h.logger.Debug("step completed", "scenario", scenario.Name, "step", i, "op", step.Op)
	}

	result := NewResult(scenario.Name)
	result.Multiverse = h.m
	for i, e := range scenario.Expect {
		if err := h.evaluate(e); err != nil {
			result.AddError(fmt.Sprintf("expect[%d]: %v", i, err))
		}
	}
	if v := invariant.CheckEach(h.m); v != nil {
		result.Violations = v
	}
	h.summarise(result)

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"violations", len(result.Violations),
	)
	return result, nil
}

func (h *Harness) execute(step Step) error {
	switch step.Op {
	case OpCreateCharacter:
		timeline, err := h.timeline(step.Timeline)
		if err != nil {
			return err
		}
		if _, dup := h.characters[step.Name]; dup {
			return fmt.Errorf("character %q defined twice", step.Name)
		}
		h.characters[step.Name] = h.m.CreateCharacter(step.Name, timeline)

	case OpBranch:
		parent, err := h.timeline(step.From)
		if err != nil {
			return err
		}
		divergence, ok, err := h.divergence(parent, step.After)
		if err != nil {
			return err
		}
		if ok {
			h.timelines[step.Label] = h.m.CreateTimelineBranch(parent, divergence)
		} else {
			h.timelines[step.Label] = h.m.CreateTimelineBranchAtStart(parent)
		}

	case OpRecordEvent:
		return h.recordEvent(step)

	case OpWitness, OpForge:
		event, err := h.event(step.Event)
		if err != nil {
			return err
		}
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		stored, _ := h.m.Event(event)
		var mem ir.MemoryID
		if step.Op == OpWitness {
			mem = h.m.CreateWitnessedMemory(event, stored.Timeline, character)
		} else {
			fidelity := 1.0
			if step.Fidelity != nil {
				fidelity = *step.Fidelity
			}
			mem = h.m.CreateMemory(event, stored.Timeline, ir.Forged{Forger: step.Forger}, fidelity)
		}
		h.m.GiveMemory(character, mem)
		if step.Label != "" {
			h.memories[step.Label] = mem
		}

	case OpGiveMemory:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		mem, err := h.memory(step.Memory)
		if err != nil {
			return err
		}
		h.m.GiveMemory(character, mem)

	case OpGrantAbility:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		ability, err := ir.ParseAbility(step.Ability)
		if err != nil {
			return err
		}
		h.m.GrantAbility(character, ability)

	case OpMoveCharacter:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		timeline, err := h.timeline(step.Timeline)
		if err != nil {
			return err
		}
		h.m.MoveCharacter(character, timeline)

	case OpDestabilize:
		timeline, err := h.timeline(step.Timeline)
		if err != nil {
			return err
		}
		h.m.DestabilizeTimeline(timeline)

	case OpDecay:
		factor := h.decayFactor
		if step.Factor != nil {
			factor = *step.Factor
		}
		h.m.DecayEmotions(factor)

	case OpSetRelationship:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		other, err := h.character(step.Other)
		if err != nil {
			return err
		}
		state, err := ir.ParseRelationshipState(step.State)
		if err != nil {
			return err
		}
		h.m.UpdateCharacter(character, func(c *ir.Character) { c.Relationships[other] = state })

	case OpGrantFlag:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		h.m.UpdateCharacter(character, func(c *ir.Character) { c.KnowledgeFlags.Add(step.Flag) })

	case OpSetAlive:
		character, err := h.character(step.Character)
		if err != nil {
			return err
		}
		if step.Alive == nil {
			return fmt.Errorf("alive is required")
		}
		alive := *step.Alive
		h.m.UpdateCharacter(character, func(c *ir.Character) { c.Alive = alive })

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func (h *Harness) recordEvent(step Step) error {
	timeline, err := h.timeline(step.Timeline)
	if err != nil {
		return err
	}

	participants := ir.NewSet[ir.CharacterID]()
	for _, name := range step.Participants {
		id, err := h.character(name)
		if err != nil {
			return err
		}
		participants.Add(id)
	}

	effects := make(ir.EffectList, 0, len(step.Effects))
	for _, spec := range step.Effects {
		effect, err := h.effect(spec)
		if err != nil {
			return fmt.Errorf("effect %s: %w", spec.Kind, err)
		}
		effects = append(effects, effect)
	}

	var violation ir.CausalityViolation
	if step.Violation != nil {
		switch step.Violation.Kind {
		case "effect_before_cause":
			violation = ir.EffectBeforeCause{Mechanism: step.Violation.Mechanism}
		case "retroactive_change":
			violation = ir.RetroactiveChange{Mechanism: step.Violation.Mechanism}
		case "superposition":
			violation = ir.Superposition{Mechanism: step.Violation.Mechanism}
		default:
			return fmt.Errorf("unknown causality violation %q", step.Violation.Kind)
		}
	}

	id := h.m.RecordEvent(ir.Event{
		Timeline:     timeline,
		Description:  step.Description,
		Participants: participants,
		Effects:      effects,
		Violation:    violation,
	})
	if step.Label != "" {
		h.events[step.Label] = id
	}
	return nil
}

func (h *Harness) effect(spec EffectSpec) (ir.Effect, error) {
	switch spec.Kind {
	case "character_death":
		c, err := h.character(spec.Character)
		return ir.CharacterDeath{Character: c}, err

	case "character_resurrection":
		c, err := h.character(spec.Character)
		return ir.CharacterResurrection{Character: c, Mechanism: spec.Mechanism}, err

	case "relationship_change":
		c1, err := h.character(spec.Character)
		if err != nil {
			return nil, err
		}
		c2, err := h.character(spec.Other)
		if err != nil {
			return nil, err
		}
		state, err := ir.ParseRelationshipState(spec.State)
		return ir.RelationshipChange{Character1: c1, Character2: c2, State: state}, err

	case "knowledge_gained":
		c, err := h.character(spec.Character)
		return ir.KnowledgeGained{Character: c, Flag: spec.Flag}, err

	case "memory_transfer":
		mem, err := h.memory(spec.Memory)
		if err != nil {
			return nil, err
		}
		to, err := h.character(spec.To)
		if err != nil {
			return nil, err
		}
		transfer := ir.MemoryTransfer{Memory: mem, To: to}
		if spec.From != "" {
			from, err := h.character(spec.From)
			if err != nil {
				return nil, err
			}
			transfer.From = &from
		}
		return transfer, nil

	case "timeline_branch":
		t, err := h.timeline(spec.Timeline)
		return ir.TimelineBranch{NewTimeline: t}, err

	case "appraisal_trigger":
		c, err := h.character(spec.Character)
		if err != nil {
			return nil, err
		}
		if spec.Belief == nil {
			return nil, fmt.Errorf("belief is required")
		}
		return ir.AppraisalTrigger{Character: c, Belief: *spec.Belief}, nil

	case "add_goal":
		c, err := h.character(spec.Character)
		if err != nil {
			return nil, err
		}
		if spec.Goal == nil {
			return nil, fmt.Errorf("goal is required")
		}
		goal := emotion.NewGoal(spec.Goal.Name, spec.Goal.Utility, spec.Goal.IsMaintenance)
		if spec.Goal.Likelihood != nil {
			goal.Likelihood = *spec.Goal.Likelihood
		}
		return ir.AddGoal{Character: c, Goal: goal}, nil

	default:
		return nil, fmt.Errorf("unknown effect kind %q", spec.Kind)
	}
}

// divergence resolves a branch point. Without an explicit event the branch
// diverges after the parent's latest event. ok is false when the parent has
// no events yet, and the branch then has no divergence event at all.
func (h *Harness) divergence(parent ir.TimelineID, label string) (id ir.EventID, ok bool, err error) {
	if label != "" {
		id, err = h.event(label)
		return id, err == nil, err
	}
	if t, found := h.m.Timeline(parent); found && len(t.Events) > 0 {
		return t.Events[len(t.Events)-1], true, nil
	}
	return 0, false, nil
}

func (h *Harness) character(name string) (ir.CharacterID, error) {
	return resolve(h.characters, "character", name)
}

// timeline resolves a timeline label; empty means the root timeline.
func (h *Harness) timeline(label string) (ir.TimelineID, error) {
	if label == "" {
		return ir.RootTimeline, nil
	}
	return resolve(h.timelines, "timeline", label)
}

func (h *Harness) event(label string) (ir.EventID, error) {
	return resolve(h.events, "event", label)
}

func (h *Harness) memory(label string) (ir.MemoryID, error) {
	return resolve(h.memories, "memory", label)
}

func resolve[ID any](table map[string]ID, kind, label string) (ID, error) {
	id, ok := table[label]
	if !ok {
		var zero ID
		return zero, fmt.Errorf("unknown %s %q", kind, label)
	}
	return id, nil
}

// summarise fills the entity counts and character summaries.
func (h *Harness) summarise(r *Result) {
	timelines, characters, memories, events := h.m.Len()
	r.Counts = Counts{Timelines: timelines, Characters: characters, Memories: memories, Events: events}

	for id, c := range h.m.Characters() {
		summary := CharacterSummary{
			ID:        id.String(),
			Name:      c.Name,
			Alive:     c.Alive,
			Timeline:  c.CurrentTimeline.String(),
			Knowledge: c.KnowledgeFlags.Sorted(),
			Memories:  len(c.Memories),
			Abilities: []string{},
			Emotions:  []string{},
		}
		for _, a := range c.Abilities.Sorted() {
			summary.Abilities = append(summary.Abilities, a.String())
		}
		for _, e := range c.Emotional.Emotions {
			summary.Emotions = append(summary.Emotions, e.Type.String())
		}
		r.Characters = append(r.Characters, summary)
	}
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
