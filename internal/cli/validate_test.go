package cli

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Testdata(t *testing.T) {
	out := run(t, simulatedConfig(t), "validate", scenariosDir)
	require.Equal(t, ExitSuccess, out.code, out.stderr)
	assert.Equal(t, "✓ 6 scenario(s) valid\n", out.stdout)
}

func invalidScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", brokenOweMoney)
	writeScenario(t, dir, "b.yaml", brokenOweMoney)
	writeScenario(t, dir, "c.yml", "name: c\nflow:\n  - call: hero.fly\n")
	writeScenario(t, dir, "notes.txt", "not a scenario")
	return dir
}

func TestValidate_ReportsEveryInvalidFile(t *testing.T) {
	out := run(t, simulatedConfig(t), "validate", invalidScenarioDir(t))
	assert.Equal(t, ExitFailure, out.code)
	assert.Contains(t, out.stdout, `✗ b.yaml: duplicate scenario name "broken" (also in a.yaml)`)
	assert.Contains(t, out.stdout, `✗ c.yml:`)
	assert.Contains(t, out.stdout, `unknown call "hero.fly"`)
	assert.NotContains(t, out.stdout, "a.yaml:")
	assert.Contains(t, out.stderr, "validation failed with 2 error(s)")
}

func TestValidate_JSON(t *testing.T) {
	out := run(t, simulatedConfig(t), "validate", invalidScenarioDir(t), "--format", "json")
	assert.Equal(t, ExitFailure, out.code)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 1, resp.Data.Scenarios)
	require.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, "b.yaml", resp.Data.Errors[0].File)
	assert.Equal(t, "c.yml", resp.Data.Errors[1].File)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}

func TestValidate_MissingDirectory(t *testing.T) {
	out := run(t, simulatedConfig(t), "validate", "/does/not/exist")
	assert.Equal(t, ExitCommandError, out.code)
	assert.Contains(t, out.stdout, "Error [E_INVALID_INPUT]: scenarios directory not found: /does/not/exist")
}
