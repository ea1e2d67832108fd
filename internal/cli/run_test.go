package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPassingScenario(t *testing.T) {
	dir := writeFiles(t, map[string]string{"serve.yaml": serveScenario})

	out, _, err := execute(t, "run", filepath.Join(dir, "serve.yaml"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "✓ serve\n"), out)
	assert.Contains(t, out, "Trace:")
	assert.Contains(t, out, "step   green_flag")
	assert.Contains(t, out, "event  project/green-flag")
	assert.Contains(t, out, "firing Ball#0 sprite-1")
	assert.Contains(t, out, `device show_text ["go"]`)
	assert.NotContains(t, out, "run ")
}

func TestRunFailingScenario(t *testing.T) {
	failing := strings.Replace(serveScenario, "shown: true", "shown: false", 1)
	dir := writeFiles(t, map[string]string{"serve.yaml": failing})

	out, _, err := execute(t, "run", filepath.Join(dir, "serve.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.EqualError(t, err, "scenario serve failed with 1 error(s)")

	assert.Contains(t, out, "✗ serve\n")
	assert.Contains(t, out, "assertions[0]")
}

func TestRunJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"serve.yaml": serveScenario})

	out, _, err := execute(t, "--format", "json", "run", filepath.Join(dir, "serve.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string           `json:"scenario"`
			Pass     bool             `json:"pass"`
			Trace    []map[string]any `json:"trace"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "serve", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	require.NotEmpty(t, resp.Data.Trace)
	assert.Equal(t, "green_flag", resp.Data.Trace[0]["op"])
}

func TestRunProtocolOverride(t *testing.T) {
	// The sound variable only exists on v2 firmware.
	scenario := `name: listen
manifest: |
  sprite: Ball: {}
variables:
  sound: ["40"]
steps:
  - op: device.get
    args: { variable: sound }
`
	dir := writeFiles(t, map[string]string{"listen.yaml": scenario})
	path := filepath.Join(dir, "listen.yaml")

	_, _, err := execute(t, "run", path)
	require.NoError(t, err)

	out, _, err := execute(t, "run", path, "--protocol", "v1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "'sound' is not a valid variable")

	_, _, err = execute(t, "run", path, "--protocol", "v3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeScenario)
}

func TestRunCommandErrors(t *testing.T) {
	t.Run("missing scenario", func(t *testing.T) {
		_, _, err := execute(t, "run", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), ErrCodeScenario)
	})

	t.Run("manifest does not compile", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"bad.yaml": "name: bad\nmanifest: \"sprite: Ball: costumes: [{}]\"\nsteps:\n  - op: green_flag\n"})
		_, _, err := execute(t, "run", filepath.Join(dir, "bad.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "compile manifest")
	})

	t.Run("journal cannot be opened", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"serve.yaml": serveScenario})
		db := filepath.Join(dir, "missing", "runs.db")
		_, _, err := execute(t, "run", filepath.Join(dir, "serve.yaml"), "--db", db)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), ErrCodeJournal)
	})
}
