package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/multiverse/internal/config"
	"github.com/roach88/multiverse/internal/ir"
)

// GoldenDir is where scenario outcomes are stored, relative to the test's
// package directory.
const GoldenDir = config.DefaultGoldenDir

// MarshalResult renders a result as canonical JSON for golden comparison.
func MarshalResult(result *Result) ([]byte, error) {
	return ir.MarshalCanonical(result)
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalResult(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
