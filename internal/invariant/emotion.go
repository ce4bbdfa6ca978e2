package invariant

import (
	"math"

	"github.com/roach88/multiverse/internal/multiverse"
)

var padAxes = [3]string{"pleasure", "arousal", "dominance"}

// CheckEmotionalBounds requires every character's PAD coordinate to lie in
// [-1, 1] on all three axes. NaN is out of bounds.
func CheckEmotionalBounds(m *multiverse.Multiverse) error {
	for id, c := range m.Characters() {
		pad := c.Emotional.PAD()
		for axis, v := range pad {
			if math.IsNaN(v) || v < -1 || v > 1 {
				return violationf(EmotionalBounds, "%s has %s %v outside [-1, 1]", describe(id, c), padAxes[axis], v)
			}
		}
	}
	return nil
}
