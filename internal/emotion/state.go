package emotion

import "math"

const (
	// DefaultGain is the PAD squashing gain of a fresh State.
	DefaultGain = 1.0

	// DefaultLikelihood is the likelihood a Goal starts with.
	DefaultLikelihood = 0.5

	// DecayThreshold is the intensity at or below which Decay prunes an entry.
	DecayThreshold = 0.001

	// epsilon is float64 machine epsilon; likelihood comparisons against the
	// resolved values 0 and 1 use it as tolerance.
	epsilon = 0x1p-52
)

// Goal is something a character wants (positive utility) or wants to avoid
// (negative utility). Likelihood is mutated by appraisal.
type Goal struct {
	Name          string  `json:"name" yaml:"name"`
	Utility       float64 `json:"utility" yaml:"utility"`       // [-1, 1]
	Likelihood    float64 `json:"likelihood" yaml:"likelihood"` // [-1, 1]
	IsMaintenance bool    `json:"is_maintenance" yaml:"is_maintenance"`
}

// NewGoal returns a goal with the default likelihood.
func NewGoal(name string, utility float64, isMaintenance bool) Goal {
	return Goal{
		Name:          name,
		Utility:       utility,
		Likelihood:    DefaultLikelihood,
		IsMaintenance: isMaintenance,
	}
}

// Belief is evidence about the world. AffectedGoals and Congruences are
// matched by position; extra entries on either side are ignored.
type Belief struct {
	Likelihood    float64   `json:"likelihood" yaml:"likelihood"` // [0, 1]
	CausalAgent   string    `json:"causal_agent,omitempty" yaml:"causal_agent,omitempty"`
	AffectedGoals []string  `json:"affected_goals" yaml:"affected_goals"`
	Congruences   []float64 `json:"congruences" yaml:"congruences"` // [-1, 1]
	IsIncremental bool      `json:"is_incremental" yaml:"is_incremental"`
}

// State is a character's emotional state: accumulated emotions (one entry per
// type, in first-emitted order), goals keyed by name, and the PAD gain.
type State struct {
	Emotions []Emotion      `json:"emotions"`
	Goals    map[string]Goal `json:"goals"`
	Gain     float64        `json:"gain"`
}

// NewState returns an empty state with DefaultGain.
func NewState() State {
	return State{
		Emotions: []Emotion{},
		Goals:    make(map[string]Goal),
		Gain:     DefaultGain,
	}
}

// AddGoal inserts or overwrites the goal by name.
func (s *State) AddGoal(g Goal) {
	if s.Goals == nil {
		s.Goals = make(map[string]Goal)
	}
	s.Goals[g.Name] = g
}

// Intensity returns the accumulated intensity of t (0 when absent).
func (s *State) Intensity(t Type) float64 {
	for _, e := range s.Emotions {
		if e.Type == t {
			return e.Intensity
		}
	}
	return 0
}

// Has reports whether an entry of type t is present.
func (s *State) Has(t Type) bool {
	for _, e := range s.Emotions {
		if e.Type == t {
			return true
		}
	}
	return false
}

// accumulate adds intensity to the entry of the same type or appends one.
func (s *State) accumulate(e Emotion) {
	for i := range s.Emotions {
		if s.Emotions[i].Type == e.Type {
			s.Emotions[i].Intensity += e.Intensity
			return
		}
	}
	s.Emotions = append(s.Emotions, e)
}

type appraisal struct {
	utility    float64
	delta      float64
	likelihood float64
}

// Appraise applies a belief to the matching goals and emits the resulting
// emotions. Goal names not present in the goal map are skipped.
//
// All likelihood updates happen first; emotions are derived afterwards from
// (utility, delta, resulting likelihood) in belief order.
func (s *State) Appraise(b Belief) {
	n := min(len(b.AffectedGoals), len(b.Congruences))
	updates := make([]appraisal, 0, n)

	for i := 0; i < n; i++ {
		goal, ok := s.Goals[b.AffectedGoals[i]]
		if !ok {
			continue
		}
		delta := updateLikelihood(&goal, b.Congruences[i], b.Likelihood, b.IsIncremental)
		s.Goals[goal.Name] = goal
		updates = append(updates, appraisal{
			utility:    goal.Utility,
			delta:      delta,
			likelihood: goal.Likelihood,
		})
	}

	for _, u := range updates {
		s.evaluate(u.utility, u.delta, u.likelihood)
	}
}

// updateLikelihood moves the goal's likelihood and returns the delta.
// A resolved (±1) non-maintenance goal cannot move.
func updateLikelihood(g *Goal, congruence, likelihood float64, incremental bool) float64 {
	old := g.Likelihood
	if !g.IsMaintenance && (old >= 1 || old <= -1) {
		return 0
	}

	var next float64
	if incremental {
		next = math.Max(-1, math.Min(1, old+likelihood*congruence))
	} else {
		next = (congruence*likelihood + 1) / 2
	}

	g.Likelihood = next
	return next - old
}

// evaluate derives emotions for one goal update.
func (s *State) evaluate(utility, delta, likelihood float64) {
	positive := (utility >= 0 && delta >= 0) || (utility < 0 && delta < 0)

	var types []Type
	switch {
	case likelihood > 0 && likelihood < 1:
		if positive {
			types = append(types, Hope)
		} else {
			types = append(types, Fear)
		}
	case math.Abs(likelihood-1) < epsilon:
		if utility >= 0 {
			if delta < 0.5 {
				types = append(types, Satisfaction)
			}
			types = append(types, Joy)
		} else {
			if delta < 0.5 {
				types = append(types, FearConfirmed)
			}
			types = append(types, Distress)
		}
	case math.Abs(likelihood) < epsilon:
		// Mirror image of the resolved-true branch.
		if utility >= 0 {
			if delta > 0.5 {
				types = append(types, Disappointment)
			}
			types = append(types, Distress)
		} else {
			if delta > 0.5 {
				types = append(types, Relief)
			}
			types = append(types, Joy)
		}
	}

	intensity := math.Abs(utility * delta)
	if intensity == 0 {
		return
	}
	for _, t := range types {
		s.accumulate(Emotion{Type: t, Intensity: intensity})
	}
}

// PAD returns the squashed Pleasure/Arousal/Dominance coordinate.
func (s *State) PAD() [3]float64 {
	var sum [3]float64
	for _, e := range s.Emotions {
		pad := e.Type.PAD()
		for axis := range sum {
			sum[axis] += e.Intensity * pad[axis]
		}
	}

	var out [3]float64
	for axis, x := range sum {
		out[axis] = squash(s.Gain, x)
	}
	return out
}

func squash(gain, x float64) float64 {
	if x >= 0 {
		return gain * x / (gain*x + 1)
	}
	return -gain * x / (gain*x - 1)
}

// Decay scales every intensity by factor and prunes entries that fall to
// DecayThreshold or below.
func (s *State) Decay(factor float64) {
	kept := s.Emotions[:0]
	for _, e := range s.Emotions {
		e.Intensity *= factor
		if e.Intensity > DecayThreshold {
			kept = append(kept, e)
		}
	}
	s.Emotions = kept
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := State{
		Emotions: make([]Emotion, len(s.Emotions)),
		Goals:    make(map[string]Goal, len(s.Goals)),
		Gain:     s.Gain,
	}
	copy(out.Emotions, s.Emotions)
	for name, g := range s.Goals {
		out.Goals[name] = g
	}
	return out
}
