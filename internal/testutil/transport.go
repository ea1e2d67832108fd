package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Call is one request seen by a FakeTransport.
type Call struct {
	Op   string
	Args []string
}

// Exchange is one scripted request/reply. A nil Args matches any
// arguments.
type Exchange struct {
	Op       string
	Args     []string
	Response []string
	Err      error
}

// FakeTransport is a scripted micro:bit transport. It satisfies
// microbit.Transport.
//
// Send answers from, in order of precedence: the next scripted Exchange if
// its Op matches, the variable table for "var" requests, and an empty reply
// for anything else. Every call is recorded.
type FakeTransport struct {
	mu     sync.Mutex
	script []Exchange
	vars   map[string][]string
	calls  []Call
}

// NewFakeTransport creates a transport with no script.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{vars: make(map[string][]string)}
}

// Expect appends exchanges to the script.
func (f *FakeTransport) Expect(ex ...Exchange) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script = append(f.script, ex...)
	return f
}

// SetVariable sets the standing reply for a "var" read of name.
func (f *FakeTransport) SetVariable(name string, values ...string) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vars[name] = values
	return f
}

// Send implements microbit.Transport.
func (f *FakeTransport) Send(ctx context.Context, op string, args []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: op, Args: slices.Clone(args)})

	if len(f.script) > 0 && f.script[0].Op == op {
		ex := f.script[0]
		f.script = f.script[1:]
		if ex.Args != nil && !slices.Equal(ex.Args, args) {
			return nil, fmt.Errorf("fake transport: %s called with %q, scripted %q", op, args, ex.Args)
		}
		if ex.Err != nil {
			return nil, ex.Err
		}
		return nonNil(ex.Response), nil
	}

	if op == "var" {
		if len(args) != 1 {
			return nil, fmt.Errorf("fake transport: var takes one argument, got %d", len(args))
		}
		vals, ok := f.vars[args[0]]
		if !ok {
			return nil, fmt.Errorf("fake transport: no value scripted for variable %q", args[0])
		}
		return slices.Clone(nonNil(vals)), nil
	}
	return []string{}, nil
}

// Calls returns every request so far, in order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns the number of requests so far.
func (f *FakeTransport) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Remaining returns the number of scripted exchanges not yet consumed.
func (f *FakeTransport) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.script)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
