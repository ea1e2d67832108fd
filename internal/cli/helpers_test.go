package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const pongManifest = `package pong

sprite: Ball: {
	costumes: [{name: "ball", asset: "ball.png", width: 10, height: 10}]
	vars: {hits: 0}
}

sprite: Paddle: {
	costumes: [
		{name: "paddle", asset: "paddle.png", width: 10, height: 40},
		{name: "glow", asset: "glow.png", width: 10, height: 40},
	]
}

stage: Court: {
	backdrops: [{name: "court", asset: "court.png"}]
	sounds: [{name: "whistle", asset: "whistle.wav"}]
}
`

// serveScenario shows the ball on green flag and writes to the display.
const serveScenario = `name: serve
manifest: |
  sprite: Ball: {
    costumes: [{name: "ball", asset: "ball.png", width: 10, height: 10}]
  }
device:
  - op: show_text
    args: ["go"]
hooks:
  - sprite: Ball
    when: green_flag
    steps:
      - op: show
steps:
  - op: green_flag
  - op: device.show_text
    args: { text: go }
assertions:
  - type: shown
    sprite: Ball
    shown: true
`

// writeFiles creates files (relative path -> content) in a temp dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}
