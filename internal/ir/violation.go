package ir

// CausalityViolation is a sealed interface for the ways an event may break
// causality. A nil value means the event is causally ordinary.
type CausalityViolation interface {
	violationNode()
	Kind() string
}

// EffectBeforeCause: the effect precedes its cause.
type EffectBeforeCause struct {
	Mechanism string `json:"mechanism"`
}

func (EffectBeforeCause) violationNode() {}

// Kind returns the variant tag.
func (EffectBeforeCause) Kind() string { return "effect_before_cause" }

// RetroactiveChange: the past was rewritten.
type RetroactiveChange struct {
	Mechanism string `json:"mechanism"`
}

func (RetroactiveChange) violationNode() {}

// Kind returns the variant tag.
func (RetroactiveChange) Kind() string { return "retroactive_change" }

// Superposition: contradictory states coexist.
type Superposition struct {
	Mechanism string `json:"mechanism"`
}

func (Superposition) violationNode() {}

// Kind returns the variant tag.
func (Superposition) Kind() string { return "superposition" }

// ViolationMechanism returns the explanation carried by v, or "" for nil.
func ViolationMechanism(v CausalityViolation) string {
	switch v := v.(type) {
	case EffectBeforeCause:
		return v.Mechanism
	case RetroactiveChange:
		return v.Mechanism
	case Superposition:
		return v.Mechanism
	default:
		return ""
	}
}

var (
	_ CausalityViolation = EffectBeforeCause{}
	_ CausalityViolation = RetroactiveChange{}
	_ CausalityViolation = Superposition{}
)
