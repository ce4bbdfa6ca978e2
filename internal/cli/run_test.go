package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/multiverse/internal/invariant"
	"github.com/roach88/multiverse/internal/store"
)

const failingScenario = `name: broken_vow
description: "Expects a living character to be dead"
steps:
  - op: create_character
    name: Ash
expect:
  - character: Ash
    alive: false
`

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decodeRunReport(t *testing.T, out string) (CLIResponse, RunReport) {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report RunReport
	require.NoError(t, json.Unmarshal(raw, &report))
	return resp, report
}

func TestRunAllScenarios(t *testing.T) {
	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, scenarioDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ grief_and_hope")
	assert.Contains(t, out, "✓ unjustified_paradox")
	assert.Contains(t, out, "Summary: 5 passed, 0 failed, 5 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestRunAllScenariosJSON(t *testing.T) {
	cmd := NewRunCommand(testOptions(t, "json"))
	out, _, err := execute(cmd, scenarioDir)
	require.NoError(t, err)

	resp, report := decodeRunReport(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 5, report.Passed)
	require.Len(t, report.Scenarios, 5)

	byName := map[string]ScenarioReport{}
	for _, sr := range report.Scenarios {
		byName[sr.Name] = sr
	}
	paradox := byName["unjustified_paradox"]
	require.Len(t, paradox.Violations, 3)
	assert.Equal(t, invariant.MemoryConsistency, paradox.Violations[0].Property)
	assert.Equal(t, invariant.CausalityJustification, paradox.Violations[1].Property)
	assert.Equal(t, invariant.KnowledgePropagation, paradox.Violations[2].Property)
	assert.Empty(t, byName["death_and_return"].Violations)
	assert.Empty(t, byName["death_and_return"].Snapshot, "nothing is saved without --save")
}

func TestRunFailingScenario(t *testing.T) {
	path := writeScenario(t, "broken_vow.yaml", failingScenario)

	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ broken_vow")
	assert.Contains(t, out, "expect[0]: character: expected Ash alive false, got true")
	assert.Contains(t, out, "Summary: 0 passed, 1 failed, 1 total")
}

func TestRunFailingScenarioJSON(t *testing.T) {
	path := writeScenario(t, "broken_vow.yaml", failingScenario)

	cmd := NewRunCommand(testOptions(t, "json"))
	out, _, err := execute(cmd, path, scenarioFile("grief_and_hope"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, report := decodeRunReport(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, 1, report.Passed)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.Scenarios[0].Pass)
	assert.True(t, report.Scenarios[1].Pass)
}

func TestRunInvalidScenarioCountsAsFailure(t *testing.T) {
	path := writeScenario(t, "typo.yaml", `name: typo
description: "misspelled steps"
stepz: []
`)

	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ typo.yaml")
	assert.Contains(t, out, "failed to parse YAML")
}

func TestRunMissingPath(t *testing.T) {
	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestRunEmptyDirectory(t *testing.T) {
	cmd := NewRunCommand(testOptions(t, "text"))
	_, _, err := execute(cmd, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no scenario files found")
}

func TestRunGolden(t *testing.T) {
	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, "--golden", scenarioDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Summary: 5 passed, 0 failed, 5 total")
}

func TestRunGoldenUpdateThenCompare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "golden")

	cmd := NewRunCommand(testOptions(t, "text"))
	_, _, err := execute(cmd, "--update", "--golden-dir", dir, scenarioFile("memory_trade"))
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, "memory_trade.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(goldenDir, "memory_trade.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	cmd = NewRunCommand(testOptions(t, "text"))
	_, _, err = execute(cmd, "--golden", "--golden-dir", dir, scenarioFile("memory_trade"))
	require.NoError(t, err)
}

func TestRunGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grief_and_hope.golden"), []byte(`{"scenario":"stale"}`), 0644))

	cmd := NewRunCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, "--golden", "--golden-dir", dir, scenarioFile("grief_and_hope"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "outcome does not match")
}

func TestRunSave(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "saved.db")

	cmd := NewRunCommand(testOptions(t, "json"))
	out, _, err := execute(cmd, "--save", "--db", dbPath, scenarioFile("grief_and_hope"), scenarioFile("unjustified_paradox"))
	require.NoError(t, err)

	_, report := decodeRunReport(t, out)
	require.Len(t, report.Scenarios, 2)
	for _, sr := range report.Scenarios {
		assert.Len(t, sr.Snapshot, 64, "%s should be saved", sr.Name)
		assert.NotEmpty(t, sr.RunID)
	}

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	records, err := db.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "grief_and_hope", records[0].Label)
	assert.Equal(t, "unjustified_paradox", records[1].Label)

	runs, err := db.ReadValidationRuns(ctx, records[1].Digest)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.ModeEach, runs[0].Mode)
	assert.False(t, runs[0].Passed)
	assert.Len(t, runs[0].Violations, 3)
	assert.Equal(t, report.Scenarios[1].RunID, runs[0].ID)
}

func TestRunSaveIsIdempotentPerState(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "saved.db")

	for range 2 {
		cmd := NewRunCommand(testOptions(t, "text"))
		_, _, err := execute(cmd, "--save", "--db", dbPath, scenarioFile("death_and_return"))
		require.NoError(t, err)
	}

	db, err := store.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	records, err := db.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1, "the same final state is stored once")

	runs, err := db.ReadValidationRuns(ctx, records[0].Digest)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "each run is recorded")
}
