package harness

import (
	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/multiverse"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Pass indicates overall success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors"`

	// Violations lists every property that does not hold on the final
	// state, in check order. Independent of Pass: a scenario may expect
	// violations.
	Violations []*invariant.Violation `json:"violations"`

	// Counts holds final entity totals.
	Counts Counts `json:"counts"`

	// Characters summarises every character in id order.
	Characters []CharacterSummary `json:"characters"`

	// Multiverse is the final state, for snapshotting.
	Multiverse *multiverse.Multiverse `json:"-"`
}

// Counts are entity totals.
type Counts struct {
	Timelines  int `json:"timelines"`
	Characters int `json:"characters"`
	Memories   int `json:"memories"`
	Events     int `json:"events"`
}

// CharacterSummary is the golden view of one character. Intensities are
// left out so golden files stay readable.
type CharacterSummary struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Alive     bool     `json:"alive"`
	Timeline  string   `json:"timeline"`
	Knowledge []string `json:"knowledge"`
	Memories  int      `json:"memories"`
	Abilities []string `json:"abilities"`
	Emotions  []string `json:"emotions"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Scenario:   name,
		Pass:       true,
		Errors:     []string{},
		Violations: []*invariant.Violation{},
		Characters: []CharacterSummary{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
