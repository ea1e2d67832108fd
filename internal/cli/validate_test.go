package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pytch/internal/compiler"
)

func TestValidateValidManifest(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})

	out, _, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ All manifests valid (2 sprite(s), stage Court)\n", out)
}

func TestValidateValidManifestJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pong.cue": pongManifest})

	out, _, err := execute(t, "--format", "json", "validate", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"Ball", "Paddle"}, resp.Data.Sprites)
	assert.Equal(t, "Court", resp.Data.Stage)
}

func TestValidateReportsEveryViolation(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.cue": `package bad

sprite: Ball: {
	costumes: [
		{name: "ball", asset: "ball.txt", width: 0, height: 10},
		{name: "ball", asset: "ball2.png", width: 10, height: 10},
	]
}
`})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.EqualError(t, err, "validation failed with 3 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrAssetFormat+" Ball.costumes[0]")
	assert.Contains(t, out, compiler.ErrDimension+" Ball.costumes[0]")
	assert.Contains(t, out, compiler.ErrDuplicateName+" Ball.costumes[1]")
}

func TestValidateCompileErrorIsValidationFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.cue": `package bad

sprite: Ball: {
	costumes: [{name: "ball", asset: "ball.png", width: 10}]
}
`})

	out, _, err := execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, ErrCodeCompileFailed, resp.Data.Errors[0].Code)
	assert.Contains(t, resp.Data.Errors[0].Message, "Ball.costumes[0].height: height is required")
}

func TestValidateCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		wantCode string
	}{
		{
			name:     "missing directory",
			dir:      func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope") },
			wantCode: ErrCodeNotFound,
		},
		{
			name: "not a directory",
			dir: func(t *testing.T) string {
				return filepath.Join(writeFiles(t, map[string]string{"pong.cue": pongManifest}), "pong.cue")
			},
			wantCode: ErrCodeNotFound,
		},
		{
			name:     "no cue files",
			dir:      func(t *testing.T) string { return writeFiles(t, map[string]string{"README.md": "# pong"}) },
			wantCode: ErrCodeNoFiles,
		},
		{
			name:     "syntax error",
			dir:      func(t *testing.T) string { return writeFiles(t, map[string]string{"bad.cue": "package pong\n\nsprite: {\n"}) },
			wantCode: ErrCodeLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "validate", tt.dir(t))
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.wantCode)
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}
