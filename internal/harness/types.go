package harness

import "github.com/roach88/pytch/internal/value"

// Trace event kinds.
const (
	KindStep   = "step"
	KindEvent  = "event"
	KindFiring = "firing"
	KindDevice = "device"
)

// TraceEvent is one entry in a scenario trace.
//
// Steps and events take their own sequence number; a firing shares the
// number of the event that caused it, and a device call takes a new one.
// Firings are recorded after the handler returns, so the steps a hook ran
// appear before its firing entry.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`

	// Op is the step op, "channel/key" for events, "Class#index" for
	// firings and the wire op for device calls.
	Op string `json:"op"`

	// Target is the instance ID or class name acted on, if any.
	Target string `json:"target,omitempty"`

	Args   value.Value `json:"args,omitempty"`
	Result value.Value `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains steps, events, firings and device calls in the order
	// they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// RunID is the journal run ID when the scenario was journaled.
	RunID string `json:"run_id,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// add appends ev and returns its index so callers can fill in the outcome
// once it is known.
func (r *Result) add(ev TraceEvent) int {
	r.Trace = append(r.Trace, ev)
	return len(r.Trace) - 1
}

// Count returns how many trace events have kind and op.
func (r *Result) Count(kind, op string) int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Kind == kind && ev.Op == op {
			n++
		}
	}
	return n
}
