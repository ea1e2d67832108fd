package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pytch/internal/microbit"
)

// Scenario is a scripted project run.
// A scenario compiles a manifest, attaches scripted hooks, drives sprites
// and the micro:bit through a list of steps, and checks the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is inline CUE declaring sprite and stage classes.
	Manifest string `yaml:"manifest,omitempty"`

	// ManifestFile is a CUE file, relative to the scenario file. Exactly one
	// of Manifest and ManifestFile is set.
	ManifestFile string `yaml:"manifest_file,omitempty"`

	// Protocol selects the micro:bit firmware protocol ("v1" or "v2").
	// Empty means v2.
	Protocol string `yaml:"protocol,omitempty"`

	// Device scripts micro:bit replies, consumed in order.
	Device []DeviceExchange `yaml:"device,omitempty"`

	// Variables are standing replies for device variable reads that are
	// not covered by Device.
	Variables map[string][]string `yaml:"variables,omitempty"`

	// Hooks attach step lists to triggers on sprite classes.
	Hooks []HookSpec `yaml:"hooks,omitempty"`

	// Steps is the main run, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final project and device state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// DeviceExchange is one scripted micro:bit round trip.
type DeviceExchange struct {
	Op       string   `yaml:"op"`
	Args     []string `yaml:"args,omitempty"`
	Response []string `yaml:"response,omitempty"`

	// Error makes the transport fail with this message.
	Error string `yaml:"error,omitempty"`
}

// HookSpec runs Steps on each instance of Sprite when the trigger fires.
// Steps inside a hook act on the instance the hook fired on unless they
// name a sprite.
type HookSpec struct {
	Sprite string `yaml:"sprite"`

	// When is one of the Trigger* constants.
	When string `yaml:"when"`

	// Arg is the trigger parameter: message, key, button, gesture, pin or
	// sound level.
	Arg string `yaml:"arg,omitempty"`

	Steps []Step `yaml:"steps"`
}

// Step is one operation.
type Step struct {
	// Op is a sprite operation (go_to_xy, clone, ...), an event
	// (green_flag, broadcast, ...) or a device command (device.show_text).
	Op string `yaml:"op"`

	// Sprite names the class of the target instance.
	Sprite string `yaml:"sprite,omitempty"`

	// Instance indexes the class's live instances in registration order.
	Instance int `yaml:"instance,omitempty"`

	Args map[string]any `yaml:"args,omitempty"`

	// ExpectError, when set, requires the step to fail with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Sprite   string `yaml:"sprite,omitempty"`
	Instance int    `yaml:"instance,omitempty"`

	// Count is used by instance_count.
	Count int `yaml:"count,omitempty"`

	// X and Y are used by position.
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`

	// Shown is used by shown.
	Shown *bool `yaml:"shown,omitempty"`

	// Appearance is used by appearance.
	Appearance string `yaml:"appearance,omitempty"`

	// Var and Value are used by var.
	Var   string `yaml:"var,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Calls is used by device_calls. The device must have seen exactly
	// these requests in this order.
	Calls []CallSpec `yaml:"calls,omitempty"`
}

// CallSpec is an expected device request. Nil Args matches any arguments.
type CallSpec struct {
	Op   string   `yaml:"op"`
	Args []string `yaml:"args,omitempty"`
}

// Assertion type constants.
const (
	AssertInstanceCount = "instance_count"
	AssertPosition      = "position"
	AssertShown         = "shown"
	AssertAppearance    = "appearance"
	AssertVar           = "var"
	AssertDeviceCalls   = "device_calls"
)

// Hook trigger names.
const (
	TriggerGreenFlag  = "green_flag"
	TriggerCloneStart = "clone_start"
	TriggerClicked    = "clicked"
	TriggerReceive    = "receive"
	TriggerKey        = "key"
	TriggerButton     = "button"
	TriggerGesture    = "gesture"
	TriggerPinHigh    = "pin_high"
	TriggerSound      = "sound"
)

var triggerNames = []string{
	TriggerGreenFlag, TriggerCloneStart, TriggerClicked, TriggerReceive, TriggerKey,
	TriggerButton, TriggerGesture, TriggerPinHigh, TriggerSound,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A manifest_file is read relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.ManifestFile != "" {
		manifestPath := scenario.ManifestFile
		if !filepath.IsAbs(manifestPath) {
			manifestPath = filepath.Join(filepath.Dir(path), manifestPath)
		}
		src, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: manifest file: %w", err)
		}
		scenario.Manifest = string(src)
		scenario.ManifestFile = manifestPath
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. A manifest_file is left unresolved.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so "assertion:" vs "assertions:" is caught.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch {
	case s.Manifest == "" && s.ManifestFile == "":
		return fmt.Errorf("one of manifest or manifest_file is required")
	case s.Manifest != "" && s.ManifestFile != "":
		return fmt.Errorf("manifest and manifest_file are mutually exclusive")
	}

	if _, err := microbit.ParseProtocol(s.Protocol); err != nil {
		return err
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, ex := range s.Device {
		if ex.Op == "" {
			return fmt.Errorf("device[%d]: op is required", i)
		}
	}

	for i, h := range s.Hooks {
		if h.Sprite == "" {
			return fmt.Errorf("hooks[%d]: sprite is required", i)
		}
		if !slices.Contains(triggerNames, h.When) {
			return fmt.Errorf("hooks[%d]: when %q must be one of %s", i, h.When, strings.Join(triggerNames, ", "))
		}
		if err := validateSteps(fmt.Sprintf("hooks[%d].steps", i), h.Steps); err != nil {
			return err
		}
	}

	if err := validateSteps("steps", s.Steps); err != nil {
		return err
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateSteps(where string, steps []Step) error {
	for i, step := range steps {
		if step.Op == "" {
			return fmt.Errorf("%s[%d]: op is required", where, i)
		}
		if !knownOp(step.Op) {
			return fmt.Errorf("%s[%d]: unknown op %q", where, i, step.Op)
		}
		if step.Instance < 0 {
			return fmt.Errorf("%s[%d]: instance must be >= 0", where, i)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertInstanceCount:
		if a.Sprite == "" {
			return fmt.Errorf("assertions[%d]: sprite is required for instance_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be >= 0 for instance_count", index)
		}
	case AssertPosition, AssertAppearance:
		if a.Sprite == "" {
			return fmt.Errorf("assertions[%d]: sprite is required for %s", index, a.Type)
		}
	case AssertShown:
		if a.Sprite == "" {
			return fmt.Errorf("assertions[%d]: sprite is required for shown", index)
		}
		if a.Shown == nil {
			return fmt.Errorf("assertions[%d]: shown is required for shown", index)
		}
	case AssertVar:
		if a.Sprite == "" || a.Var == "" {
			return fmt.Errorf("assertions[%d]: sprite and var are required for var", index)
		}
	case AssertDeviceCalls:
		for j, c := range a.Calls {
			if c.Op == "" {
				return fmt.Errorf("assertions[%d].calls[%d]: op is required", index, j)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q (valid: %s, %s, %s, %s, %s, %s)",
			index, a.Type, AssertInstanceCount, AssertPosition, AssertShown, AssertAppearance, AssertVar, AssertDeviceCalls)
	}
	if a.Instance < 0 {
		return fmt.Errorf("assertions[%d]: instance must be >= 0", index)
	}
	return nil
}
