package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pytch/internal/journal"
	"github.com/roach88/pytch/internal/value"
)

func ballScenario(steps ...Step) *Scenario {
	return &Scenario{
		Name:     "ball",
		Manifest: ballManifest,
		Steps:    steps,
	}
}

func TestRun_PongScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/pong.yaml")
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	// touching result and device read are traced
	var touching, read *TraceEvent
	for i := range result.Trace {
		switch result.Trace[i].Op {
		case "touching":
			touching = &result.Trace[i]
		case "device.get":
			read = &result.Trace[i]
		}
	}
	require.NotNil(t, touching)
	assert.Equal(t, value.Bool(true), touching.Result)
	require.NotNil(t, read)
	assert.Equal(t, value.NewList(value.Bool(true), value.Bool(false), value.Bool(false)), read.Result)

	assert.Equal(t, 1, result.Count(KindEvent, "sprite/clone-start"))
	assert.Equal(t, 1, result.Count(KindEvent, "microbit/button:a"))
	assert.Equal(t, 1, result.Count(KindFiring, "Paddle#1"))
}

func TestRun_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/pong.yaml")
	require.NoError(t, err)

	first, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	second, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_SpriteOps(t *testing.T) {
	scenario := ballScenario(
		Step{Op: "go_to_xy", Sprite: "Ball", Args: map[string]any{"x": 10, "y": 20}},
		Step{Op: "change_x", Sprite: "Ball", Args: map[string]any{"dx": -3}},
		Step{Op: "change_y", Sprite: "Ball", Args: map[string]any{"dy": 0.5}},
		Step{Op: "set_size", Sprite: "Ball", Args: map[string]any{"size": 2}},
		Step{Op: "show", Sprite: "Ball"},
		Step{Op: "switch_costume", Sprite: "Ball", Args: map[string]any{"costume": "anything"}},
		Step{Op: "set_var", Sprite: "Ball", Args: map[string]any{"name": "score", "value": []any{1, "two"}}},
	)
	shown := true
	scenario.Assertions = []Assertion{
		{Type: AssertPosition, Sprite: "Ball", X: 7, Y: 20.5},
		{Type: AssertShown, Sprite: "Ball", Shown: &shown},
		{Type: AssertAppearance, Sprite: "Ball", Appearance: "anything"},
		{Type: AssertVar, Sprite: "Ball", Var: "score", Value: []any{1, "two"}},
		{Type: AssertInstanceCount, Sprite: "Ball", Count: 1},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_CloneClassAndDelete(t *testing.T) {
	scenario := ballScenario(
		Step{Op: "clone_class", Sprite: "Ball"},
		Step{Op: "clone", Sprite: "Ball", Instance: 1},
		Step{Op: "delete_clone", Sprite: "Ball", Instance: 1},
		Step{Op: "delete_clone", Sprite: "Ball", ExpectError: "only clones can be deleted"},
	)
	scenario.Assertions = []Assertion{{Type: AssertInstanceCount, Sprite: "Ball", Count: 2}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "Ball", result.Trace[0].Target)
	assert.Equal(t, value.String("sprite-2"), result.Trace[0].Result)
}

func TestRun_UnexpectedStepErrorFails(t *testing.T) {
	result, err := Run(context.Background(), ballScenario(
		Step{Op: "go_to_xy", Sprite: "Ball", Args: map[string]any{"x": 1}},
		Step{Op: "show", Sprite: "Ball", Instance: 3},
		Step{Op: "show", Sprite: "Nope"},
		Step{Op: "show"},
	))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], `missing arg "y"`)
	assert.Contains(t, result.Errors[1], "sprite Ball has 1 instance(s), no instance 3")
	assert.Contains(t, result.Errors[2], `unknown class "Nope"`)
	assert.Contains(t, result.Errors[3], "op show needs a sprite")
}

func TestRun_ExpectErrorMismatch(t *testing.T) {
	result, err := Run(context.Background(), ballScenario(
		Step{Op: "show", Sprite: "Ball", ExpectError: "boom"},
		Step{Op: "delete_clone", Sprite: "Ball", ExpectError: "boom"},
	))
	require.NoError(t, err)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `expected error containing "boom", got none`)
	assert.Contains(t, result.Errors[1], `expected error containing "boom", got "`)
}

func TestRun_HooksFireInRegistrationOrder(t *testing.T) {
	scenario := ballScenario(
		Step{Op: "green_flag"},
		Step{Op: "broadcast", Args: map[string]any{"message": "go"}},
		Step{Op: "press_key", Args: map[string]any{"key": "ArrowUp"}},
	)
	scenario.Hooks = []HookSpec{
		{Sprite: "Ball", When: TriggerGreenFlag, Steps: []Step{{Op: "set_x", Args: map[string]any{"x": 1}}}},
		{Sprite: "Ball", When: TriggerGreenFlag, Steps: []Step{{Op: "change_x", Args: map[string]any{"dx": 10}}}},
		{Sprite: "Ball", When: TriggerReceive, Arg: "go", Steps: []Step{{Op: "change_y", Args: map[string]any{"dy": 5}}}},
		{Sprite: "Ball", When: TriggerKey, Arg: "ArrowUp", Steps: []Step{{Op: "change_y", Args: map[string]any{"dy": 1}}}},
	}
	scenario.Assertions = []Assertion{{Type: AssertPosition, Sprite: "Ball", X: 11, Y: 6}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 1, result.Count(KindEvent, "message/receive:go"))
	assert.Equal(t, 1, result.Count(KindEvent, "keyboard/key:ArrowUp"))
}

func TestRun_CloneStartHookRunsOnClone(t *testing.T) {
	scenario := ballScenario(Step{Op: "clone", Sprite: "Ball"})
	scenario.Hooks = []HookSpec{
		{Sprite: "Ball", When: TriggerCloneStart, Steps: []Step{{Op: "set_x", Args: map[string]any{"x": 50}}}},
	}
	scenario.Assertions = []Assertion{
		{Type: AssertPosition, Sprite: "Ball", Instance: 0, X: 0, Y: 0},
		{Type: AssertPosition, Sprite: "Ball", Instance: 1, X: 50, Y: 0},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailingHookFailsScenario(t *testing.T) {
	scenario := ballScenario(Step{Op: "green_flag"})
	scenario.Hooks = []HookSpec{
		{Sprite: "Ball", When: TriggerGreenFlag, Steps: []Step{{Op: "delete_clone"}}},
		{Sprite: "Ball", When: TriggerGreenFlag, Steps: []Step{{Op: "set_x", Args: map[string]any{"x": 3}}}},
	}
	scenario.Assertions = []Assertion{{Type: AssertPosition, Sprite: "Ball", X: 3}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "hook Ball#0 on sprite-1")
}

func TestRun_DeviceCommandsAndScript(t *testing.T) {
	scenario := ballScenario(
		Step{Op: "device.clear_display"},
		Step{Op: "device.set_pixel", Args: map[string]any{"x": 1, "y": 2}},
		Step{Op: "device.play_music", Args: map[string]any{"notes": "C4:4 R:2", "loop": true}},
		Step{Op: "device.enable_radio"},
		Step{Op: "device.send_message", Args: map[string]any{"message": "hello"}},
		Step{Op: "device.set_pin", Args: map[string]any{"pin": 5}, ExpectError: "pin 5 must be between 0 and 2"},
		Step{Op: "device.scroll_message", Args: map[string]any{"message": "x"}, ExpectError: "link lost"},
	)
	scenario.Device = []DeviceExchange{
		{Op: "clear"},
		{Op: "scroll", Error: "link lost"},
	}
	scenario.Assertions = []Assertion{{
		Type: AssertDeviceCalls,
		Calls: []CallSpec{
			{Op: "clear"},
			{Op: "pixel", Args: []string{"1", "2", "9"}},
			{Op: "play_music", Args: []string{"120", "C4:4 R:2", "True"}},
			{Op: "radio", Args: []string{"7", "0"}},
			{Op: "message", Args: []string{"hello"}},
			{Op: "scroll", Args: []string{"x"}},
		},
	}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, 6, len(filterKind(result.Trace, KindDevice)))
}

func TestRun_UnusedDeviceScriptFails(t *testing.T) {
	scenario := ballScenario(Step{Op: "show", Sprite: "Ball"})
	scenario.Device = []DeviceExchange{{Op: "clear"}}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors, "1 scripted device exchange(s) were not used")
}

func TestRun_ProtocolV1RejectsSound(t *testing.T) {
	scenario := ballScenario(
		Step{Op: "device.get", Args: map[string]any{"variable": "sound"}, ExpectError: "'sound' is not a valid variable"},
	)
	scenario.Protocol = "v1"

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, filterKind(result.Trace, KindDevice))
}

func TestRun_SetupErrors(t *testing.T) {
	tests := []struct {
		name     string
		scenario *Scenario
		wantErr  string
	}{
		{
			name:     "manifest does not compile",
			scenario: &Scenario{Name: "s", Manifest: "sprite: {", Steps: []Step{{Op: "green_flag"}}},
			wantErr:  "compile manifest",
		},
		{
			name: "manifest fails validation",
			scenario: &Scenario{
				Name:     "s",
				Manifest: `sprite: Ball: costumes: [{name: "ball", asset: "ball.bmp", width: 10, height: 10}]`,
				Steps:    []Step{{Op: "green_flag"}},
			},
			wantErr: "invalid manifest",
		},
		{
			name: "hook on unknown class",
			scenario: &Scenario{
				Name: "s", Manifest: ballManifest, Steps: []Step{{Op: "green_flag"}},
				Hooks: []HookSpec{{Sprite: "Paddle", When: TriggerGreenFlag}},
			},
			wantErr: `hooks[0]: unknown sprite class "Paddle"`,
		},
		{
			name: "hook with illegal key",
			scenario: &Scenario{
				Name: "s", Manifest: ballManifest, Steps: []Step{{Op: "green_flag"}},
				Hooks: []HookSpec{{Sprite: "Ball", When: TriggerKey, Arg: "arrow-left"}},
			},
			wantErr: `did you mean "ArrowLeft"?`,
		},
		{
			name: "hook with illegal button",
			scenario: &Scenario{
				Name: "s", Manifest: ballManifest, Steps: []Step{{Op: "green_flag"}},
				Hooks: []HookSpec{{Sprite: "Ball", When: TriggerButton, Arg: "c"}},
			},
			wantErr: "Button 'c' is not one of the supported buttons: a, b, logo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRun_WithJournal(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	scenario, err := LoadScenario("testdata/scenarios/pong.yaml")
	require.NoError(t, err)

	ctx := context.Background()
	result, err := Run(ctx, scenario, WithJournal(j))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)
	require.NotEmpty(t, result.RunID)

	events, err := j.Events(ctx, result.RunID, "")
	require.NoError(t, err)
	assert.Len(t, events, len(filterKind(result.Trace, KindEvent)))

	firings, err := j.Firings(ctx, result.RunID)
	require.NoError(t, err)
	assert.Len(t, firings, len(filterKind(result.Trace, KindFiring)))

	calls, err := j.DeviceCalls(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "var", calls[0].Op)
	assert.Equal(t, "show_text", calls[1].Op)
}

func filterKind(trace []TraceEvent, kind string) []TraceEvent {
	var out []TraceEvent
	for _, ev := range trace {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
