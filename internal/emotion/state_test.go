package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func singleGoalBelief(goal string, likelihood, congruence float64, incremental bool) Belief {
	return Belief{
		Likelihood:    likelihood,
		AffectedGoals: []string{goal},
		Congruences:   []float64{congruence},
		IsIncremental: incremental,
	}
}

func TestNewGoal_DefaultLikelihood(t *testing.T) {
	g := NewGoal("survive", 1, true)
	assert.Equal(t, DefaultLikelihood, g.Likelihood)
	assert.True(t, g.IsMaintenance)
}

func TestAppraise_AbsoluteResolvesToJoy(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("find the gate", 1, false))

	s.Appraise(singleGoalBelief("find the gate", 1, 1, false))

	assert.Equal(t, 1.0, s.Goals["find the gate"].Likelihood)
	require.Len(t, s.Emotions, 1, "delta of exactly 0.5 emits Joy without Satisfaction")
	assert.Equal(t, Joy, s.Emotions[0].Type)
	assert.InDelta(t, 0.5, s.Emotions[0].Intensity, 1e-12)
	assert.Greater(t, s.PAD()[0], 0.0)
}

func TestAppraise_HopeThenFear(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("goal", 1, false))

	s.Appraise(singleGoalBelief("goal", 0.1, 1, true))
	assert.True(t, s.Has(Hope))
	assert.InDelta(t, 0.6, s.Goals["goal"].Likelihood, 1e-12)

	s.Appraise(singleGoalBelief("goal", 0.2, -1, true))
	assert.True(t, s.Has(Fear))
	assert.InDelta(t, 0.4, s.Goals["goal"].Likelihood, 1e-12)
	assert.InDelta(t, 0.2, s.Intensity(Fear), 1e-12)
}

func TestAppraise_LikelihoodSaturates(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("goal", 1, false))
	b := singleGoalBelief("goal", 1, 1, true)

	s.Appraise(b)
	assert.Equal(t, 1.0, s.Goals["goal"].Likelihood)
	joy := s.Intensity(Joy)
	assert.InDelta(t, 0.5, joy, 1e-12)

	for i := 0; i < 10; i++ {
		s.Appraise(b)
		assert.Equal(t, 1.0, s.Goals["goal"].Likelihood)
	}
	assert.Len(t, s.Emotions, 1)
	assert.Equal(t, joy, s.Intensity(Joy), "resolved goal emits nothing further")
}

func TestAppraise_MaintenanceGoalCanLeaveResolution(t *testing.T) {
	s := NewState()
	g := NewGoal("keep the crew alive", 1, true)
	g.Likelihood = 1
	s.AddGoal(g)

	s.Appraise(singleGoalBelief("keep the crew alive", 0.5, -1, true))

	assert.InDelta(t, 0.5, s.Goals["keep the crew alive"].Likelihood, 1e-12)
	assert.True(t, s.Has(Fear))
	assert.InDelta(t, 0.5, s.Intensity(Fear), 1e-12)
}

func TestAppraise_ResolvedTrueNegativeUtility(t *testing.T) {
	s := NewState()
	g := NewGoal("the fleet arrives", -0.8, false)
	g.Likelihood = 0.8
	s.AddGoal(g)

	s.Appraise(singleGoalBelief("the fleet arrives", 1, 1, false))

	assert.True(t, s.Has(FearConfirmed))
	assert.True(t, s.Has(Distress))
	assert.InDelta(t, 0.16, s.Intensity(Distress), 1e-9)
}

func TestAppraise_ResolvedFalse(t *testing.T) {
	tests := []struct {
		name    string
		utility float64
		want    Type
	}{
		{"positive utility distress", 1, Distress},
		{"negative utility joy", -1, Joy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.AddGoal(NewGoal("goal", tt.utility, false))

			s.Appraise(singleGoalBelief("goal", 1, -1, false))

			assert.Equal(t, 0.0, s.Goals["goal"].Likelihood)
			require.Len(t, s.Emotions, 1)
			assert.Equal(t, tt.want, s.Emotions[0].Type)
			assert.InDelta(t, 0.5, s.Emotions[0].Intensity, 1e-12)
		})
	}
}

func TestAppraise_ZeroIntensityEmitsNothing(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("indifferent", 0, false))

	s.Appraise(singleGoalBelief("indifferent", 1, 1, false))

	assert.Equal(t, 1.0, s.Goals["indifferent"].Likelihood)
	assert.Empty(t, s.Emotions)
}

func TestAppraise_UnknownGoalAndShortCongruences(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("a", 1, false))
	s.AddGoal(NewGoal("b", 1, false))

	s.Appraise(Belief{
		Likelihood:    0.2,
		AffectedGoals: []string{"missing", "a", "b"},
		Congruences:   []float64{1, 1},
		IsIncremental: true,
	})

	assert.InDelta(t, 0.7, s.Goals["a"].Likelihood, 1e-12)
	assert.Equal(t, DefaultLikelihood, s.Goals["b"].Likelihood, "b has no paired congruence")
	assert.True(t, s.Has(Hope))
}

func TestAppraise_RepeatedEmotionAccumulates(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("goal", 1, false))

	s.Appraise(singleGoalBelief("goal", 0.1, 1, true))
	s.Appraise(singleGoalBelief("goal", 0.1, 1, true))

	require.Len(t, s.Emotions, 1)
	assert.InDelta(t, 0.2, s.Intensity(Hope), 1e-12)
}

func TestPAD_SquashesNegativeSums(t *testing.T) {
	s := NewState()
	s.accumulate(Emotion{Type: Distress, Intensity: 2})

	pad := s.PAD()
	x := 2 * Distress.PAD()[0]
	assert.InDelta(t, -x/(x-1), pad[0], 1e-12)
	assert.Less(t, pad[0], 0.0)
	assert.Greater(t, pad[0], -1.0)
}

func TestPAD_EmptyStateIsOrigin(t *testing.T) {
	s := NewState()
	assert.Equal(t, [3]float64{0, 0, 0}, s.PAD())
}

func TestPAD_BoundedUnderRandomAppraisal(t *testing.T) {
	names := []string{"g0", "g1", "g2", "g3"}
	unit := rapid.Float64Range(0, 1)
	signed := rapid.Float64Range(-1, 1)

	rapid.Check(t, func(t *rapid.T) {
		s := NewState()
		for _, n := range names {
			s.AddGoal(NewGoal(n, signed.Draw(t, "utility"), rapid.Bool().Draw(t, "maintenance")))
		}

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := range steps {
			s.Appraise(Belief{
				Likelihood:    unit.Draw(t, "likelihood"),
				AffectedGoals: []string{rapid.SampledFrom(names).Draw(t, "goal")},
				Congruences:   []float64{signed.Draw(t, "congruence")},
				IsIncremental: rapid.Bool().Draw(t, "incremental"),
			})
			for axis, v := range s.PAD() {
				if v <= -1 || v >= 1 {
					t.Fatalf("axis %d is %v after %d appraisals", axis, v, i+1)
				}
			}
		}
	})
}

func TestDecay_PrunesAtThreshold(t *testing.T) {
	s := NewState()
	s.accumulate(Emotion{Type: Joy, Intensity: 0.5})
	s.accumulate(Emotion{Type: Fear, Intensity: 0.002})

	s.Decay(0.5)
	require.Len(t, s.Emotions, 1, "fear decays to exactly the threshold and is pruned")
	assert.InDelta(t, 0.25, s.Intensity(Joy), 1e-12)

	s.Decay(0.001)
	assert.Empty(t, s.Emotions)
}

func TestClone_IsIndependent(t *testing.T) {
	s := NewState()
	s.AddGoal(NewGoal("goal", 1, false))
	s.accumulate(Emotion{Type: Hope, Intensity: 0.3})

	c := s.Clone()
	c.AddGoal(NewGoal("other", 1, false))
	c.Emotions[0].Intensity = 9

	assert.Len(t, s.Goals, 1)
	assert.InDelta(t, 0.3, s.Intensity(Hope), 1e-12)
}

func TestType_NamesRoundTrip(t *testing.T) {
	for _, typ := range AllTypes {
		parsed, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
	assert.Equal(t, "fear-confirmed", FearConfirmed.String())

	_, err := ParseType("ennui")
	assert.Error(t, err)
}
