package cli

import (
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/herocheck/internal/harness"
)

func TestTrace_Text(t *testing.T) {
	out := run(t, simulatedConfig(t), "trace", filepath.Join(scenariosDir, "owe_money.yaml"))
	require.Equal(t, ExitSuccess, out.code, out.stderr)

	lines := strings.Split(out.stdout, "\n")
	assert.Equal(t, "Scenario: owe_money", lines[0])
	assert.Equal(t, `[1] hero.owe_money {"natid":"1234"}`, lines[2])
	assert.True(t, strings.HasPrefix(lines[3], `    -> simulated 200 {"message":{"data":"natid-1234","status":"OWE"}`), lines[3])
	assert.Equal(t, `[5] hero.owe_money {"natid":"abc"}`, lines[6])
	assert.True(t, strings.HasPrefix(lines[7], `    -> simulated 400 {"message":"National ID must be numeric"`), lines[7])
	assert.Contains(t, out.stdout, "✓ owe_money\n")
}

func TestTrace_JSON(t *testing.T) {
	out := run(t, simulatedConfig(t), "trace", filepath.Join(scenariosDir, "owe_money.yaml"), "--format", "json")
	require.Equal(t, ExitSuccess, out.code, out.stderr)

	var resp struct {
		Status string                `json:"status"`
		Data   harness.TraceSnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "owe_money", resp.Data.ScenarioName)
	assert.True(t, resp.Data.Pass)
	require.Len(t, resp.Data.Trace, 6)
	assert.Equal(t, harness.EventCall, resp.Data.Trace[0].Type)
	assert.Equal(t, "simulated", resp.Data.Trace[1].Route)
	assert.Equal(t, 400, resp.Data.Trace[5].Status)
}

func TestTrace_Failures(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", brokenOweMoney)

	out := run(t, simulatedConfig(t), "trace", filepath.Join(dir, "broken.yaml"))
	assert.Equal(t, ExitFailure, out.code)
	assert.Contains(t, out.stdout, "✗ broken")
	assert.Contains(t, out.stderr, `scenario "broken" failed`)

	out = run(t, simulatedConfig(t), "trace", filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, ExitCommandError, out.code)
	assert.Contains(t, out.stderr, "failed to load scenario")
}
