package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/multiverse/internal/emotion"
)

// RootLabel names the root timeline in scenario references.
const RootLabel = "root"

// Scenario is a scripted sequence of store operations followed by
// expectations about the resulting multiverse.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps run in order against a fresh multiverse.
	Steps []Step `yaml:"steps"`

	// Expect is evaluated against the final state.
	Expect []Expectation `yaml:"expect,omitempty"`
}

// Step is one operation. Op selects which of the remaining fields apply.
//
// Characters are referenced by name, timelines, events, and memories by the
// label given when they were created. The root timeline is "root".
type Step struct {
	Op string `yaml:"op"`

	Name      string `yaml:"name,omitempty"`
	Label     string `yaml:"label,omitempty"`
	Timeline  string `yaml:"timeline,omitempty"`
	Character string `yaml:"character,omitempty"`
	Other     string `yaml:"other,omitempty"`
	Event     string `yaml:"event,omitempty"`
	Memory    string `yaml:"memory,omitempty"`

	// branch
	From  string `yaml:"from,omitempty"`
	After string `yaml:"after,omitempty"`

	// record_event
	Description  string         `yaml:"description,omitempty"`
	Participants []string       `yaml:"participants,omitempty"`
	Effects      []EffectSpec   `yaml:"effects,omitempty"`
	Violation    *ViolationSpec `yaml:"violation,omitempty"`

	// forge
	Forger   string   `yaml:"forger,omitempty"`
	Fidelity *float64 `yaml:"fidelity,omitempty"`

	Ability string   `yaml:"ability,omitempty"`
	State   string   `yaml:"state,omitempty"`
	Flag    string   `yaml:"flag,omitempty"`
	Alive   *bool    `yaml:"alive,omitempty"`
	Factor  *float64 `yaml:"factor,omitempty"`
}

// Step operations.
const (
	OpCreateCharacter = "create_character"
	OpBranch          = "branch"
	OpRecordEvent     = "record_event"
	OpWitness         = "witness"
	OpForge           = "forge"
	OpGiveMemory      = "give_memory"
	OpGrantAbility    = "grant_ability"
	OpMoveCharacter   = "move_character"
	OpDestabilize     = "destabilize"
	OpDecay           = "decay"
	OpSetRelationship = "set_relationship"
	OpGrantFlag       = "grant_flag"
	OpSetAlive        = "set_alive"
)

// EffectSpec describes one effect of a record_event step. Kind uses the
// effect's wire name ("character_death", "memory_transfer", ...).
type EffectSpec struct {
	Kind      string          `yaml:"kind"`
	Character string          `yaml:"character,omitempty"`
	Other     string          `yaml:"other,omitempty"`
	State     string          `yaml:"state,omitempty"`
	Mechanism string          `yaml:"mechanism,omitempty"`
	Flag      string          `yaml:"flag,omitempty"`
	Memory    string          `yaml:"memory,omitempty"`
	From      string          `yaml:"from,omitempty"`
	To        string          `yaml:"to,omitempty"`
	Timeline  string          `yaml:"timeline,omitempty"`
	Belief    *emotion.Belief `yaml:"belief,omitempty"`
	Goal      *GoalSpec       `yaml:"goal,omitempty"`
}

// GoalSpec is a goal as written in a scenario. Likelihood defaults to
// emotion.DefaultLikelihood.
type GoalSpec struct {
	Name          string   `yaml:"name"`
	Utility       float64  `yaml:"utility"`
	Likelihood    *float64 `yaml:"likelihood,omitempty"`
	IsMaintenance bool     `yaml:"is_maintenance,omitempty"`
}

// ViolationSpec marks a recorded event as breaking causality.
type ViolationSpec struct {
	Kind      string `yaml:"kind"`
	Mechanism string `yaml:"mechanism"`
}

// Expectation is one check on the final state. Exactly one of Holds, Fails,
// or Character is set.
type Expectation struct {
	// Holds is "all" (every property) or a single property name.
	Holds string `yaml:"holds,omitempty"`

	// Fails names a property that must be violated. Message, when set, must
	// be a substring of the violation message.
	Fails   string `yaml:"fails,omitempty"`
	Message string `yaml:"message,omitempty"`

	// Character selects a character by name for the state checks below.
	// Unset checks are skipped; list checks are subset matches.
	Character     string            `yaml:"character,omitempty"`
	Alive         *bool             `yaml:"alive,omitempty"`
	Timeline      string            `yaml:"timeline,omitempty"`
	Knows         []string          `yaml:"knows,omitempty"`
	Remembers     []string          `yaml:"remembers,omitempty"`
	Perceives     []string          `yaml:"perceives,omitempty"`
	Relationships map[string]string `yaml:"relationships,omitempty"`
	Feels         []string          `yaml:"feels,omitempty"`
}

// HoldsAll is the Holds value that checks every property.
const HoldsAll = "all"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), fails the schema, or references
// characters, timelines, events, or memories before they exist.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario parses scenario YAML. filename is used in error positions.
func ParseScenario(filename string, data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "efects:" before the schema runs
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ValidateSchema(filename, data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// labels tracks which references a scenario has defined so far.
type labels struct {
	characters map[string]bool
	timelines  map[string]bool
	events     map[string]bool
	memories   map[string]bool
}

func newLabels() *labels {
	return &labels{
		characters: map[string]bool{},
		timelines:  map[string]bool{RootLabel: true},
		events:     map[string]bool{},
		memories:   map[string]bool{},
	}
}

func define(table map[string]bool, kind, label string) error {
	if label == "" {
		return nil
	}
	if table[label] {
		return fmt.Errorf("%s %q defined twice", kind, label)
	}
	table[label] = true
	return nil
}

func need(table map[string]bool, kind, label string) error {
	if label == "" || table[label] {
		return nil
	}
	return fmt.Errorf("unknown %s %q", kind, label)
}

// validateScenario checks required fields and that every reference names
// something an earlier step created. The schema covers value shapes; this
// covers ordering.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	l := newLabels()
	for i, step := range s.Steps {
		if err := validateStep(l, step); err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Op, err)
		}
	}

	for i, e := range s.Expect {
		if err := validateExpectation(l, e); err != nil {
			return fmt.Errorf("expect[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(l *labels, step Step) error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch step.Op {
	case OpCreateCharacter:
		if step.Name == "" {
			return fmt.Errorf("name is required")
		}
		check(need(l.timelines, "timeline", step.Timeline))
		check(define(l.characters, "character", step.Name))
	case OpBranch:
		if step.Label == "" {
			return fmt.Errorf("label is required")
		}
		check(need(l.timelines, "timeline", step.From))
		check(need(l.events, "event", step.After))
		check(define(l.timelines, "timeline", step.Label))
	case OpRecordEvent:
		check(need(l.timelines, "timeline", step.Timeline))
		for _, p := range step.Participants {
			check(need(l.characters, "character", p))
		}
		for _, eff := range step.Effects {
			check(validateEffect(l, eff))
		}
		check(define(l.events, "event", step.Label))
	case OpWitness, OpForge:
		if step.Event == "" || step.Character == "" {
			return fmt.Errorf("event and character are required")
		}
		check(need(l.events, "event", step.Event))
		check(need(l.characters, "character", step.Character))
		check(define(l.memories, "memory", step.Label))
	case OpGiveMemory:
		check(need(l.characters, "character", step.Character))
		check(need(l.memories, "memory", step.Memory))
	case OpGrantAbility, OpGrantFlag, OpSetAlive:
		check(need(l.characters, "character", step.Character))
	case OpMoveCharacter:
		check(need(l.characters, "character", step.Character))
		check(need(l.timelines, "timeline", step.Timeline))
	case OpDestabilize:
		check(need(l.timelines, "timeline", step.Timeline))
	case OpDecay:
	case OpSetRelationship:
		check(need(l.characters, "character", step.Character))
		check(need(l.characters, "character", step.Other))
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	return errors.Join(errs...)
}

func validateEffect(l *labels, eff EffectSpec) error {
	for _, ref := range []struct {
		table map[string]bool
		kind  string
		label string
	}{
		{l.characters, "character", eff.Character},
		{l.characters, "character", eff.Other},
		{l.characters, "character", eff.From},
		{l.characters, "character", eff.To},
		{l.memories, "memory", eff.Memory},
		{l.timelines, "timeline", eff.Timeline},
	} {
		if err := need(ref.table, ref.kind, ref.label); err != nil {
			return fmt.Errorf("effect %s: %w", eff.Kind, err)
		}
	}
	return nil
}

func validateExpectation(l *labels, e Expectation) error {
	set := 0
	for _, present := range []bool{e.Holds != "", e.Fails != "", e.Character != ""} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of holds, fails, character is required")
	}
	if e.Character == "" {
		return nil
	}

	if err := need(l.characters, "character", e.Character); err != nil {
		return err
	}
	if err := need(l.timelines, "timeline", e.Timeline); err != nil {
		return err
	}
	for _, ev := range e.Remembers {
		if err := need(l.events, "event", ev); err != nil {
			return err
		}
	}
	for _, tl := range e.Perceives {
		if err := need(l.timelines, "timeline", tl); err != nil {
			return err
		}
	}
	for _, other := range sortedKeys(e.Relationships) {
		if err := need(l.characters, "character", other); err != nil {
			return err
		}
	}
	return nil
}
