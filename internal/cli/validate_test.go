package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidScenarios(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, scenarioDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All scenarios valid (5 file(s))")
}

func TestValidateValidScenariosJSON(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "json"))
	out, _, err := execute(cmd, scenarioDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 5, resp.Data.Files)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidateSchemaError(t *testing.T) {
	path := writeScenario(t, "bad_ability.yaml", `name: bad_ability
description: "grants an ability that does not exist"
steps:
  - op: create_character
    name: Ash
  - op: grant_ability
    character: Ash
    ability: flight
`)

	cmd := NewValidateCommand(testOptions(t, "json"))
	out, _, err := execute(cmd, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidScenario, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, path, resp.Data.Errors[0].File)
	assert.Contains(t, resp.Data.Errors[0].Message, "invalid scenario")
}

func TestValidateReferenceError(t *testing.T) {
	path := writeScenario(t, "ghost.yaml", `name: ghost
description: "moves a character nobody created"
steps:
  - op: move_character
    character: Ghost
    timeline: root
`)

	cmd := NewValidateCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, path, scenarioFile("grief_and_hope"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `unknown character "Ghost"`)
	assert.Contains(t, out, "1 of 2 scenario(s) invalid")
}

func TestValidateNonExistentPath(t *testing.T) {
	cmd := NewValidateCommand(testOptions(t, "text"))
	out, _, err := execute(cmd, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}
