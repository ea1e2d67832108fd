package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_CloneAndMove(t *testing.T) {
	scenario := &Scenario{
		Name:     "clone_and_move",
		Manifest: ballManifest,
		Hooks: []HookSpec{
			{Sprite: "Ball", When: TriggerCloneStart, Steps: []Step{
				{Op: "change_x", Args: map[string]any{"dx": 10}},
			}},
		},
		Steps: []Step{
			{Op: "go_to_xy", Sprite: "Ball", Args: map[string]any{"x": 5, "y": -5}},
			{Op: "clone", Sprite: "Ball"},
			{Op: "device.show_text", Args: map[string]any{"text": "hi"}},
		},
		Assertions: []Assertion{
			{Type: AssertPosition, Sprite: "Ball", Instance: 1, X: 15, Y: -5},
		},
	}

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_CloneAndMove -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalTrace_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.add(TraceEvent{Seq: 1, Kind: KindStep, Op: "green_flag"})
	result.add(TraceEvent{Seq: 2, Kind: KindDevice, Op: "clear", Args: stringList(nil), Error: "link lost"})

	b, err := MarshalTrace("s", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"s","trace":[{"kind":"step","op":"green_flag","seq":1},{"args":[],"error":"link lost","kind":"device","op":"clear","seq":2}]}`+"\n",
		string(b))
}
