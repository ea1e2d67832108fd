package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/testutil"
	"github.com/roach88/pytch/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nSteps:\n")
		for _, ev := range e.Trace {
			if ev.Kind == KindStep {
				fmt.Fprintf(&buf, "  [%d] %s %s\n", ev.Seq, ev.Op, ev.Target)
			}
		}
	}
	return buf.String()
}

// evaluate checks every assertion and returns the failure messages.
func (h *Harness) evaluate(assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.check(a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func (h *Harness) check(a Assertion) error {
	if a.Type == AssertDeviceCalls {
		return assertDeviceCalls(h.fake.Calls(), a, h.result.Trace)
	}

	class, ok := h.project.ClassByName(a.Sprite)
	if !ok || class.Kind != actor.KindSprite {
		return fmt.Errorf("%s assertion: unknown sprite class %q", a.Type, a.Sprite)
	}
	instances := h.project.SpriteInstances(class)

	if a.Type == AssertInstanceCount {
		if len(instances) != a.Count {
			return &AssertionError{
				Type:     AssertInstanceCount,
				Expected: fmt.Sprintf("%d instance(s) of %s", a.Count, a.Sprite),
				Actual:   fmt.Sprintf("%d instance(s)", len(instances)),
				Trace:    h.result.Trace,
			}
		}
		return nil
	}

	if a.Instance >= len(instances) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("instance %d of %s", a.Instance, a.Sprite),
			Actual:   fmt.Sprintf("%d instance(s)", len(instances)),
			Trace:    h.result.Trace,
		}
	}
	return assertSprite(instances[a.Instance], a, h.result.Trace)
}

// assertSprite checks one instance's state.
func assertSprite(s *actor.Sprite, a Assertion, trace []TraceEvent) error {
	fail := func(expected, actual string) error {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s %s", s.ID(), expected),
			Actual:   actual,
			Trace:    trace,
		}
	}

	switch a.Type {
	case AssertPosition:
		if s.X() != a.X || s.Y() != a.Y {
			return fail(fmt.Sprintf("at (%g, %g)", a.X, a.Y), fmt.Sprintf("at (%g, %g)", s.X(), s.Y()))
		}
	case AssertShown:
		if s.Shown() != *a.Shown {
			return fail(fmt.Sprintf("shown=%t", *a.Shown), fmt.Sprintf("shown=%t", s.Shown()))
		}
	case AssertAppearance:
		if s.Appearance() != a.Appearance {
			return fail(fmt.Sprintf("appearance %q", a.Appearance), fmt.Sprintf("appearance %q", s.Appearance()))
		}
	case AssertVar:
		want, err := value.FromAny(a.Value)
		if err != nil {
			return fmt.Errorf("var assertion value: %w", err)
		}
		got, ok := s.Var(a.Var)
		if !ok {
			return fail(fmt.Sprintf("var %s = %s", a.Var, describe(want)), fmt.Sprintf("var %s not set", a.Var))
		}
		if !value.Equal(got, want) {
			return fail(fmt.Sprintf("var %s = %s", a.Var, describe(want)), fmt.Sprintf("var %s = %s", a.Var, describe(got)))
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertDeviceCalls checks the device saw exactly the expected requests, in
// order.
func assertDeviceCalls(calls []testutil.Call, a Assertion, trace []TraceEvent) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertDeviceCalls,
			Expected: describeCalls(a.Calls),
			Actual:   actual,
			Trace:    trace,
		}
	}

	if len(calls) != len(a.Calls) {
		return fail(fmt.Sprintf("%d call(s): %s", len(calls), describeSeen(calls)))
	}
	for i, want := range a.Calls {
		got := calls[i]
		if got.Op != want.Op || (want.Args != nil && !slices.Equal(got.Args, want.Args)) {
			return fail(fmt.Sprintf("call %d was %s %q", i, got.Op, got.Args))
		}
	}
	return nil
}

func describeCalls(calls []CallSpec) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		if c.Args == nil {
			parts[i] = c.Op
		} else {
			parts[i] = fmt.Sprintf("%s %q", c.Op, c.Args)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func describeSeen(calls []testutil.Call) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = fmt.Sprintf("%s %q", c.Op, c.Args)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// describe renders v as canonical JSON for messages.
func describe(v value.Value) string {
	b, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
