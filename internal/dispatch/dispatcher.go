package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/hooks"
)

// Event is something that happened on a channel. Target, when set, narrows
// delivery to that one instance.
type Event struct {
	Channel string
	Key     string
	Target  actor.Actor
}

// Roster lists live instances of a class in registration order.
// *project.Project implements it.
type Roster interface {
	Instances(c *actor.Class) []actor.Actor
}

// EventRecord is what a Recorder sees for each processed event.
type EventRecord struct {
	Seq     int64
	Channel string
	Key     string
	Target  string
}

// FiringRecord is what a Recorder sees for each handler invocation.
type FiringRecord struct {
	Seq       int64
	HookIndex int
	Class     string
	Instance  string
	Err       error
}

// Recorder receives a trace of dispatch activity. Recording failures are
// logged and never stop dispatch.
type Recorder interface {
	RecordEvent(ctx context.Context, rec EventRecord) error
	RecordFiring(ctx context.Context, rec FiringRecord) error
}

// Dispatcher is the single-writer event loop.
//
// Thread-safety model:
//   - Enqueue, Publish and Stop: safe from any goroutine
//   - Run and Drain: call from exactly one goroutine at a time
type Dispatcher struct {
	registry *hooks.Registry
	roster   Roster
	queue    *eventQueue
	clock    Sequencer
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder sends every processed event and firing to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// Sequencer hands out event sequence numbers. *Clock is the production
// implementation.
type Sequencer interface {
	Next() int64
	Current() int64
}

// WithClock replaces the sequencer, e.g. to resume numbering with
// NewClockAt.
func WithClock(c Sequencer) Option {
	return func(d *Dispatcher) {
		d.clock = c
	}
}

// New creates a dispatcher over registry. roster may be nil when no hooks
// have owners.
func New(registry *hooks.Registry, roster Roster, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		roster:   roster,
		queue:    newEventQueue(),
		clock:    NewClock(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Clock returns the dispatcher's sequencer.
func (d *Dispatcher) Clock() Sequencer {
	return d.clock
}

// Enqueue submits ev. Returns false once the dispatcher is stopped.
func (d *Dispatcher) Enqueue(ev Event) bool {
	return d.queue.Enqueue(ev)
}

// Publish enqueues an event built from its parts.
func (d *Dispatcher) Publish(channel, key string, target actor.Actor) bool {
	return d.Enqueue(Event{Channel: channel, Key: key, Target: target})
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Run processes events until ctx is cancelled or Stop is called. Events
// queued before Stop are still processed.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher starting", "hooks", d.registry.Len())

	for {
		if ev, ok := d.queue.TryDequeue(); ok {
			d.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopping: context cancelled")
			d.queue.Close()
			return ctx.Err()

		case <-d.queue.Wait():
			if d.queue.Len() == 0 && d.closed() {
				d.logger.Info("dispatcher stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain processes queued events synchronously, including any enqueued by
// handlers along the way, and returns how many were processed.
func (d *Dispatcher) Drain(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		ev, ok := d.queue.TryDequeue()
		if !ok {
			break
		}
		d.process(ctx, ev)
		n++
	}
	return n
}

// Stop closes the queue. Run returns once it is empty.
func (d *Dispatcher) Stop() {
	d.queue.Close()
}

func (d *Dispatcher) closed() bool {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	return d.queue.closed
}

func (d *Dispatcher) process(ctx context.Context, ev Event) {
	seq := d.clock.Next()

	d.logger.Debug("dispatching event",
		"seq", seq,
		"channel", ev.Channel,
		"key", ev.Key,
		"target", actorLabel(ev.Target),
	)

	if d.recorder != nil {
		rec := EventRecord{Seq: seq, Channel: ev.Channel, Key: ev.Key, Target: actorLabel(ev.Target)}
		if err := d.recorder.RecordEvent(ctx, rec); err != nil {
			d.logger.Error("record event failed", "seq", seq, "error", err)
		}
	}

	for _, h := range d.registry.Match(ev.Channel, ev.Key) {
		for _, self := range d.recipients(h, ev) {
			d.fire(ctx, seq, h, self)
		}
	}
}

// recipients returns the instances h fires on for ev. A nil entry means a
// single firing with no self.
func (d *Dispatcher) recipients(h hooks.Hook, ev Event) []actor.Actor {
	if ev.Target != nil {
		if h.Owner == nil || ev.Target.Class() != h.Owner {
			return nil
		}
		return []actor.Actor{ev.Target}
	}
	if h.Owner == nil {
		return []actor.Actor{nil}
	}
	if d.roster == nil {
		return nil
	}
	return d.roster.Instances(h.Owner)
}

func (d *Dispatcher) fire(ctx context.Context, seq int64, h hooks.Hook, self actor.Actor) {
	err := h.Handler(ctx, self)
	if err != nil {
		d.logger.Error("hook failed",
			"seq", seq,
			"hook", h.Index,
			"channel", h.Channel,
			"key", h.Key,
			"self", actorLabel(self),
			"error", err,
		)
	}

	if d.recorder == nil {
		return
	}
	rec := FiringRecord{Seq: seq, HookIndex: h.Index, Instance: actorLabel(self), Err: err}
	if h.Owner != nil {
		rec.Class = h.Owner.Name
	}
	if rerr := d.recorder.RecordFiring(ctx, rec); rerr != nil {
		d.logger.Error("record firing failed", "seq", seq, "hook", h.Index, "error", rerr)
	}
}

// actorLabel names an actor for logs and journals.
func actorLabel(a actor.Actor) string {
	switch a := a.(type) {
	case nil:
		return ""
	case *actor.Sprite:
		if a.ID() != "" {
			return a.ID()
		}
		return fmt.Sprintf("%s(unregistered)", a.Class().Name)
	default:
		return a.Class().Name
	}
}
