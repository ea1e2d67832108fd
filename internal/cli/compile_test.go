package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileText(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})

	out, _, err := execute(t, "compile", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 3 class(es)")
	assert.Contains(t, out, "  Ball (sprite): 1 costume(s), 0 sound(s), 1 var(s)\n")
	assert.Contains(t, out, "  Paddle (sprite): 2 costume(s), 0 sound(s), 0 var(s)\n")
	assert.Contains(t, out, "  Court (stage): 1 backdrop(s), 1 sound(s)\n")
	assert.NotContains(t, out, "Wrote class table")
}

func TestCompileJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})

	out, _, err := execute(t, "--format", "json", "compile", dir)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	require.Len(t, resp.Data.Classes, 3)
	ball := resp.Data.Classes[1]
	assert.Equal(t, "Ball", ball.Name)
	assert.Equal(t, "Sprite", ball.Kind)
	assert.Equal(t, []MediaInfo{{Name: "ball", Asset: "ball.png", Width: 10, Height: 10}}, ball.Costumes)
	assert.Contains(t, ball.Vars, "hits")

	court := resp.Data.Classes[0]
	assert.Equal(t, "Stage", court.Kind)
	assert.Equal(t, []MediaInfo{{Name: "court", Asset: "court.png"}}, court.Backdrops)
	assert.Equal(t, []MediaInfo{{Name: "whistle", Asset: "whistle.wav"}}, court.Sounds)
}

func TestCompileWritesClassTable(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})
	outFile := filepath.Join(t.TempDir(), "classes.json")

	out, _, err := execute(t, "compile", dir, "-o", outFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote class table to "+outFile)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var table CompilationResult
	require.NoError(t, json.Unmarshal(data, &table))
	require.Len(t, table.Classes, 3)
	assert.Equal(t, "Paddle", table.Classes[2].Name)
	assert.Equal(t, "glow", table.Classes[2].Costumes[1].Name)
}

func TestCompileUnwritableOutput(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})
	outFile := filepath.Join(t.TempDir(), "missing", "classes.json")

	_, _, err := execute(t, "compile", dir, "--output", outFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeWriteFailed)
}

func TestCompileRejectsInvalidManifest(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.cue": `package bad

stage: Court: {
	backdrops: [{name: "court", asset: "court.mp3"}]
}
`})

	out, _, err := execute(t, "compile", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E103 Court.backdrops[0]")
}

func TestCompileMissingDirectory(t *testing.T) {
	_, _, err := execute(t, "compile", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
