package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pytch/internal/value"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonical converts the snapshot to a value.Record for canonical JSON.
// Empty optional fields are left out.
func (s *TraceSnapshot) toCanonical() value.Record {
	trace := make(value.List, len(s.Trace))
	for i, ev := range s.Trace {
		rec := value.Record{
			"seq":  value.Int(ev.Seq),
			"kind": value.String(ev.Kind),
			"op":   value.String(ev.Op),
		}
		if ev.Target != "" {
			rec["target"] = value.String(ev.Target)
		}
		if ev.Args != nil {
			rec["args"] = ev.Args
		}
		if ev.Result != nil {
			rec["result"] = ev.Result
		}
		if ev.Error != "" {
			rec["error"] = value.String(ev.Error)
		}
		trace[i] = rec
	}

	return value.Record{
		"scenario_name": value.String(s.ScenarioName),
		"trace":         trace,
	}
}

// MarshalTrace renders a result's trace as canonical JSON followed by a
// newline. This is the golden file format.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	b, err := value.MarshalCanonical(snapshot.toCanonical())
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
