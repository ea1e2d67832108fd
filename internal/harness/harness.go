package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/compiler"
	"github.com/roach88/pytch/internal/dispatch"
	"github.com/roach88/pytch/internal/hooks"
	"github.com/roach88/pytch/internal/journal"
	"github.com/roach88/pytch/internal/microbit"
	"github.com/roach88/pytch/internal/project"
	"github.com/roach88/pytch/internal/testutil"
	"github.com/roach88/pytch/internal/value"
)

// Harness executes one scenario. Everything runs on the calling goroutine:
// queued events are drained synchronously after each step.
type Harness struct {
	project    *project.Project
	registry   *hooks.Registry
	dispatcher *dispatch.Dispatcher
	device     *microbit.Device
	fake       *testutil.FakeTransport
	clock      *testutil.DeterministicClock
	run        *journal.Run
	result     *Result
	logger     *slog.Logger
}

// Option configures Run.
type Option func(*config)

type config struct {
	journal *journal.Journal
	logger  *slog.Logger
}

// WithJournal records the run's events, firings and device calls in j.
func WithJournal(j *journal.Journal) Option {
	return func(c *config) {
		c.journal = j
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh project with sequential instance IDs ("sprite-1",
// "sprite-2", ...), a fresh deterministic clock and a scripted device, so
// the trace is identical across runs.
//
// Execution flow:
//  1. Compile and validate the manifest, register classes
//  2. Attach scripted hooks
//  3. Execute steps, draining queued events after each one
//  4. Evaluate assertions
//
// A returned error means the scenario could not be set up. Failing steps
// and assertions are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	h, err := newHarness(ctx, scenario, cfg)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, step, nil); err != nil {
			h.result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Op, err))
		}
		h.dispatcher.Drain(ctx)
	}

	if n := h.fake.Remaining(); n > 0 {
		h.result.AddError(fmt.Sprintf("%d scripted device exchange(s) were not used", n))
	}

	for _, msg := range h.evaluate(scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(ctx context.Context, scenario *Scenario, cfg config) (*Harness, error) {
	filename := scenario.ManifestFile
	if filename == "" {
		filename = scenario.Name + ".cue"
	}
	m, err := compiler.CompileSource(filename, scenario.Manifest)
	if err != nil {
		return nil, fmt.Errorf("compile manifest: %w", err)
	}
	if verrs := compiler.Validate(m); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fmt.Errorf("invalid manifest:\n  %s", strings.Join(msgs, "\n  "))
	}

	protocol, err := microbit.ParseProtocol(scenario.Protocol)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		registry: hooks.NewRegistry(),
		clock:    testutil.NewDeterministicClock(),
		fake:     testutil.NewFakeTransport(),
		result:   NewResult(),
		logger:   cfg.logger,
	}
	h.project = project.New(
		project.WithIDGenerator(project.NewSequentialGenerator("sprite")),
		project.WithLogger(cfg.logger),
	)

	if m.Stage != nil {
		if _, err := h.project.RegisterStageClass(m.Stage); err != nil {
			return nil, err
		}
	}
	for _, c := range m.Sprites {
		if _, err := h.project.RegisterSpriteClass(c); err != nil {
			return nil, err
		}
	}

	for _, ex := range scenario.Device {
		scripted := testutil.Exchange{Op: ex.Op, Args: ex.Args, Response: ex.Response}
		if ex.Error != "" {
			scripted.Err = errors.New(ex.Error)
		}
		h.fake.Expect(scripted)
	}
	for name, vals := range scenario.Variables {
		h.fake.SetVariable(name, vals...)
	}

	var transport microbit.Transport = h.fake
	if cfg.journal != nil {
		h.run, err = cfg.journal.BeginRun(ctx, scenario.Name, protocol.String())
		if err != nil {
			return nil, err
		}
		h.result.RunID = h.run.ID()
		transport = h.run.Transport(transport)
	}
	h.device = microbit.NewDevice(h.traceTransport(transport),
		microbit.WithProtocol(protocol),
		microbit.WithLogger(cfg.logger),
	)

	h.dispatcher = dispatch.New(h.registry, h.project,
		dispatch.WithClock(h.clock),
		dispatch.WithRecorder(h),
		dispatch.WithLogger(cfg.logger),
	)
	h.project.SetEventSink(h.dispatcher)

	for i, spec := range scenario.Hooks {
		if err := h.attach(spec); err != nil {
			return nil, fmt.Errorf("hooks[%d]: %w", i, err)
		}
	}
	return h, nil
}

// attach registers spec's steps as a handler on the sprite class.
func (h *Harness) attach(spec HookSpec) error {
	class, ok := h.project.ClassByName(spec.Sprite)
	if !ok {
		return fmt.Errorf("unknown sprite class %q", spec.Sprite)
	}
	if class.Kind != actor.KindSprite {
		return fmt.Errorf("%q is not a sprite class", spec.Sprite)
	}
	trigger, err := triggerFor(spec.When, spec.Arg)
	if err != nil {
		return err
	}

	steps := spec.Steps
	trigger.AttachOn(h.registry, class, func(ctx context.Context, self actor.Actor) error {
		s, _ := self.(*actor.Sprite)
		for _, step := range steps {
			if err := h.runStep(ctx, step, s); err != nil {
				return fmt.Errorf("%s: %w", step.Op, err)
			}
		}
		return nil
	})
	return nil
}

// runStep executes one step and traces it. The returned error is nil when
// the step succeeded or failed as expected.
func (h *Harness) runStep(ctx context.Context, step Step, self *actor.Sprite) error {
	ev := TraceEvent{Seq: h.clock.Next(), Kind: KindStep, Op: step.Op}
	if len(step.Args) > 0 {
		args, err := value.FromAny(map[string]any(step.Args))
		if err != nil {
			return fmt.Errorf("args: %w", err)
		}
		ev.Args = args
	}
	idx := h.result.add(ev)

	c := &opContext{h: h, step: step, self: self, args: stepArgs(step.Args)}
	out, err := ops[step.Op](ctx, c)

	traced := &h.result.Trace[idx]
	traced.Target = c.target
	traced.Result = out
	if err != nil {
		traced.Error = err.Error()
	}

	switch {
	case step.ExpectError == "":
		return err
	case err == nil:
		return fmt.Errorf("expected error containing %q, got none", step.ExpectError)
	case !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Errorf("expected error containing %q, got %q", step.ExpectError, err.Error())
	}
	return nil
}

// traceTransport records each device round trip in the trace.
func (h *Harness) traceTransport(next microbit.Transport) microbit.Transport {
	return microbit.TransportFunc(func(ctx context.Context, op string, args []string) ([]string, error) {
		idx := h.result.add(TraceEvent{Seq: h.clock.Next(), Kind: KindDevice, Op: op, Args: stringList(args)})
		resp, err := next.Send(ctx, op, args)
		traced := &h.result.Trace[idx]
		if len(resp) > 0 {
			traced.Result = stringList(resp)
		}
		if err != nil {
			traced.Error = err.Error()
		}
		return resp, err
	})
}

// RecordEvent implements dispatch.Recorder.
func (h *Harness) RecordEvent(ctx context.Context, rec dispatch.EventRecord) error {
	h.result.add(TraceEvent{
		Seq:    rec.Seq,
		Kind:   KindEvent,
		Op:     rec.Channel + "/" + rec.Key,
		Target: rec.Target,
	})
	if h.run != nil {
		return h.run.RecordEvent(ctx, rec)
	}
	return nil
}

// RecordFiring implements dispatch.Recorder. A failed firing fails the
// scenario.
func (h *Harness) RecordFiring(ctx context.Context, rec dispatch.FiringRecord) error {
	ev := TraceEvent{
		Seq:    rec.Seq,
		Kind:   KindFiring,
		Op:     fmt.Sprintf("%s#%d", rec.Class, rec.HookIndex),
		Target: rec.Instance,
	}
	if rec.Err != nil {
		ev.Error = rec.Err.Error()
		h.result.AddError(fmt.Sprintf("hook %s on %s: %v", ev.Op, rec.Instance, rec.Err))
	}
	h.result.add(ev)
	if h.run != nil {
		return h.run.RecordFiring(ctx, rec)
	}
	return nil
}

var _ dispatch.Recorder = (*Harness)(nil)

func stringList(ss []string) value.List {
	out := make(value.List, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return out
}
