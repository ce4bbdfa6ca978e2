package ir

import (
	"encoding/json"
	"errors"
	"fmt"
)

// envelope is the wire shape of every variant: {"kind": tag, "value": payload}.
type envelope struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

type variant interface{ Kind() string }

func marshalVariant(v variant) ([]byte, error) {
	if v == nil {
		return nil, errors.New("marshal variant: nil value")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", v.Kind(), err)
	}
	return json.Marshal(envelope{Kind: v.Kind(), Value: raw})
}

// decodeAs unmarshals raw into a concrete T and returns it as the family
// interface I.
func decodeAs[T any, I any](raw json.RawMessage) (I, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero I
		return zero, err
	}
	return any(v).(I), nil
}

func unmarshalVariant[I any](family string, decoders map[string]func(json.RawMessage) (I, error), data []byte) (I, error) {
	var zero I
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", family, err)
	}
	decode, ok := decoders[env.Kind]
	if !ok {
		return zero, fmt.Errorf("unmarshal %s: unknown kind %q", family, env.Kind)
	}
	v, err := decode(env.Value)
	if err != nil {
		return zero, fmt.Errorf("unmarshal %s %s: %w", family, env.Kind, err)
	}
	return v, nil
}

var effectDecoders = map[string]func(json.RawMessage) (Effect, error){
	CharacterDeath{}.Kind():        decodeAs[CharacterDeath, Effect],
	CharacterResurrection{}.Kind(): decodeAs[CharacterResurrection, Effect],
	RelationshipChange{}.Kind():    decodeAs[RelationshipChange, Effect],
	KnowledgeGained{}.Kind():       decodeAs[KnowledgeGained, Effect],
	MemoryTransfer{}.Kind():        decodeAs[MemoryTransfer, Effect],
	TimelineBranch{}.Kind():        decodeAs[TimelineBranch, Effect],
	AppraisalTrigger{}.Kind():      decodeAs[AppraisalTrigger, Effect],
	AddGoal{}.Kind():               decodeAs[AddGoal, Effect],
}

var provenanceDecoders = map[string]func(json.RawMessage) (Provenance, error){
	Witnessed{}.Kind(): decodeAs[Witnessed, Provenance],
	Traded{}.Kind():    decodeAs[Traded, Provenance],
	Forged{}.Kind():    decodeAs[Forged, Provenance],
	Compound{}.Kind():  decodeAs[Compound, Provenance],
}

var violationDecoders = map[string]func(json.RawMessage) (CausalityViolation, error){
	EffectBeforeCause{}.Kind(): decodeAs[EffectBeforeCause, CausalityViolation],
	RetroactiveChange{}.Kind(): decodeAs[RetroactiveChange, CausalityViolation],
	Superposition{}.Kind():     decodeAs[Superposition, CausalityViolation],
}

// MarshalEffect encodes e as a kind/value envelope.
func MarshalEffect(e Effect) ([]byte, error) { return marshalVariant(e) }

// UnmarshalEffect decodes a kind/value envelope into an Effect.
func UnmarshalEffect(data []byte) (Effect, error) {
	return unmarshalVariant("effect", effectDecoders, data)
}

// UnmarshalProvenance decodes a kind/value envelope into a Provenance.
func UnmarshalProvenance(data []byte) (Provenance, error) {
	return unmarshalVariant("provenance", provenanceDecoders, data)
}

// UnmarshalCausalityViolation decodes a kind/value envelope.
func UnmarshalCausalityViolation(data []byte) (CausalityViolation, error) {
	return unmarshalVariant("causality violation", violationDecoders, data)
}

// EffectList is an ordered effect sequence with envelope encoding.
type EffectList []Effect

func (l EffectList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for i, e := range l {
		raw, err := MarshalEffect(e)
		if err != nil {
			return nil, fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (l *EffectList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(EffectList, 0, len(raws))
	for i, raw := range raws {
		e, err := UnmarshalEffect(raw)
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

type memoryWire struct {
	ID             MemoryID        `json:"id"`
	Event          EventID         `json:"event"`
	SourceTimeline TimelineID      `json:"source_timeline"`
	Provenance     json.RawMessage `json:"provenance"`
	Fidelity       float64         `json:"fidelity"`
}

func (m Memory) MarshalJSON() ([]byte, error) {
	prov, err := marshalVariant(m.Provenance)
	if err != nil {
		return nil, fmt.Errorf("memory %s: %w", m.ID, err)
	}
	return json.Marshal(memoryWire{
		ID:             m.ID,
		Event:          m.Event,
		SourceTimeline: m.SourceTimeline,
		Provenance:     prov,
		Fidelity:       m.Fidelity,
	})
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var w memoryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	prov, err := UnmarshalProvenance(w.Provenance)
	if err != nil {
		return fmt.Errorf("memory %s: %w", w.ID, err)
	}
	*m = Memory{
		ID:             w.ID,
		Event:          w.Event,
		SourceTimeline: w.SourceTimeline,
		Provenance:     prov,
		Fidelity:       w.Fidelity,
	}
	return nil
}

type eventWire struct {
	ID           EventID          `json:"id"`
	Timeline     TimelineID       `json:"timeline"`
	Description  string           `json:"description"`
	Participants Set[CharacterID] `json:"participants"`
	Effects      EffectList       `json:"effects"`
	Violation    json.RawMessage  `json:"causality_violation,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{
		ID:           e.ID,
		Timeline:     e.Timeline,
		Description:  e.Description,
		Participants: e.Participants,
		Effects:      e.Effects,
	}
	if w.Effects == nil {
		w.Effects = EffectList{}
	}
	if e.Violation != nil {
		raw, err := marshalVariant(e.Violation)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", e.ID, err)
		}
		w.Violation = raw
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Event{
		ID:           w.ID,
		Timeline:     w.Timeline,
		Description:  w.Description,
		Participants: w.Participants,
		Effects:      w.Effects,
	}
	if out.Participants == nil {
		out.Participants = NewSet[CharacterID]()
	}
	if len(w.Violation) > 0 && string(w.Violation) != "null" {
		v, err := UnmarshalCausalityViolation(w.Violation)
		if err != nil {
			return fmt.Errorf("event %s: %w", w.ID, err)
		}
		out.Violation = v
	}
	*e = out
	return nil
}
