// Package project is an in-memory implementation of the actor.Project
// collaborator: it owns the registry of sprite classes and their live
// instances, answers instance-zero and touching queries, and notifies an
// event sink when clones start.
//
// Instances of a class are kept in registration order. Instance zero is
// the instance created when the class was registered; it is never a clone
// and so can never be unregistered.
package project

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/hooks"
)

// EventSink receives notifications raised by the project.
// dispatch.Dispatcher implements it.
type EventSink interface {
	Publish(channel, key string, target actor.Actor) bool
}

// Project is the registry of live actor instances.
//
// Thread-safety: all methods are safe for concurrent use. The event sink is
// called after the registry lock has been released.
type Project struct {
	mu     sync.Mutex
	actors []*registeredClass // registration order
	byName map[string]*registeredClass
	stage  *actor.Stage

	ids    IDGenerator
	sink   EventSink
	logger *slog.Logger
}

type registeredClass struct {
	class     *actor.Class
	instances []*actor.Sprite
}

// Option configures a Project.
type Option func(*Project)

// WithIDGenerator sets the instance ID generator.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(p *Project) {
		p.ids = g
	}
}

// WithEventSink sets the sink notified when a clone is registered.
func WithEventSink(sink EventSink) Option {
	return func(p *Project) {
		p.sink = sink
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Project) {
		p.logger = l
	}
}

// New creates an empty project.
func New(opts ...Option) *Project {
	p := &Project{
		byName: make(map[string]*registeredClass),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetEventSink replaces the event sink. It lets a dispatcher that uses the
// project as its roster be wired in after both exist.
func (p *Project) SetEventSink(sink EventSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// RegisterSpriteClass validates and registers a sprite class, creating its
// instance zero. Class names are unique within a project.
func (p *Project) RegisterSpriteClass(c *actor.Class) (*actor.Sprite, error) {
	if c.Kind != actor.KindSprite {
		return nil, &actor.Error{Code: actor.ErrCodeNotSprite, Message: "register_sprite_class needs a Sprite class", Class: c.Name}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byName[c.Name]; exists {
		return nil, fmt.Errorf("register sprite class: duplicate class name %q", c.Name)
	}
	if err := c.BindProject(p); err != nil {
		return nil, err
	}

	s, err := c.NewSprite()
	if err != nil {
		return nil, err
	}
	s.Bind(p, p.ids.Generate())

	rc := &registeredClass{class: c, instances: []*actor.Sprite{s}}
	p.actors = append(p.actors, rc)
	p.byName[c.Name] = rc

	p.logger.Debug("sprite class registered", "class", c.Name, "instance", s.ID())
	return s, nil
}

// RegisterStageClass validates and registers the project's stage class.
// A project has at most one stage.
func (p *Project) RegisterStageClass(c *actor.Class) (*actor.Stage, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	st, err := c.NewStage()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != nil {
		return nil, fmt.Errorf("register stage class: project already has stage %q", p.stage.Class().Name)
	}
	if _, exists := p.byName[c.Name]; exists {
		return nil, fmt.Errorf("register stage class: duplicate class name %q", c.Name)
	}
	if err := c.BindProject(p); err != nil {
		return nil, err
	}
	p.stage = st
	p.byName[c.Name] = &registeredClass{class: c}

	p.logger.Debug("stage class registered", "class", c.Name)
	return st, nil
}

// Stage returns the registered stage, or nil.
func (p *Project) Stage() *actor.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// RegisterSpriteInstance implements actor.Project.
func (p *Project) RegisterSpriteInstance(clone, original *actor.Sprite) (*actor.Sprite, error) {
	p.mu.Lock()

	rc, err := p.lookupLocked(original)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	if clone.Class() != original.Class() {
		p.mu.Unlock()
		return nil, fmt.Errorf("register sprite instance: clone class %q differs from original class %q",
			clone.Class().Name, original.Class().Name)
	}
	if clone.Project() != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("register sprite instance: instance %s is already registered", clone.ID())
	}

	clone.Bind(p, p.ids.Generate())
	rc.instances = append(rc.instances, clone)
	sink := p.sink
	p.mu.Unlock()

	p.logger.Debug("sprite instance registered",
		"class", clone.Class().Name,
		"instance", clone.ID(),
		"original", original.ID(),
	)
	if sink != nil {
		sink.Publish(hooks.ChannelSprite, hooks.KeyCloneStart, clone)
	}
	return clone, nil
}

// UnregisterActorInstance implements actor.Project.
func (p *Project) UnregisterActorInstance(s *actor.Sprite) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rc, err := p.lookupLocked(s)
	if err != nil {
		return err
	}
	if rc.instances[0] == s {
		return &actor.Error{
			Code:     actor.ErrCodeNotAClone,
			Message:  "instance zero cannot be unregistered",
			Class:    rc.class.Name,
			Instance: s.ID(),
		}
	}

	rc.instances = slices.DeleteFunc(rc.instances, func(x *actor.Sprite) bool { return x == s })
	s.Unbind()

	p.logger.Debug("sprite instance unregistered", "class", rc.class.Name, "instance", s.ID())
	return nil
}

// InstanceZero implements actor.Project.
func (p *Project) InstanceZero(c *actor.Class) (*actor.Sprite, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rc, ok := p.byName[c.Name]
	if !ok || rc.class != c || len(rc.instances) == 0 {
		return nil, actor.NewNoInstanceError(c.Name)
	}
	return rc.instances[0], nil
}

// InstanceIsTouchingAnyOf implements actor.Project. Two sprites touch when
// both are shown and their bounding boxes overlap or share an edge. A
// sprite never touches itself.
func (p *Project) InstanceIsTouchingAnyOf(s *actor.Sprite, target *actor.Class) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.lookupLocked(s); err != nil {
		return false, err
	}
	rc, ok := p.byName[target.Name]
	if !ok || rc.class != target {
		return false, &actor.Error{Code: actor.ErrCodeNoInstance, Message: "touching(): class is not registered with this project", Class: target.Name}
	}

	box, ok := boundingBox(s)
	if !ok || !s.Shown() {
		return false, nil
	}
	for _, other := range rc.instances {
		if other == s || !other.Shown() {
			continue
		}
		otherBox, ok := boundingBox(other)
		if ok && box.overlaps(otherBox) {
			return true, nil
		}
	}
	return false, nil
}

// Instances returns the live instances of a class in registration order.
// For the stage class it returns the stage. Implements dispatch.Roster.
func (p *Project) Instances(c *actor.Class) []actor.Actor {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stage != nil && p.stage.Class() == c {
		return []actor.Actor{p.stage}
	}
	rc, ok := p.byName[c.Name]
	if !ok || rc.class != c {
		return nil
	}
	out := make([]actor.Actor, len(rc.instances))
	for i, s := range rc.instances {
		out[i] = s
	}
	return out
}

// SpriteInstances returns the live sprite instances of a class.
func (p *Project) SpriteInstances(c *actor.Class) []*actor.Sprite {
	p.mu.Lock()
	defer p.mu.Unlock()

	rc, ok := p.byName[c.Name]
	if !ok || rc.class != c {
		return nil
	}
	return slices.Clone(rc.instances)
}

// ClassByName returns a registered sprite or stage class.
func (p *Project) ClassByName(name string) (*actor.Class, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rc, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	return rc.class, true
}

// SpriteClasses returns the registered sprite classes in registration order.
func (p *Project) SpriteClasses() []*actor.Class {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*actor.Class, len(p.actors))
	for i, rc := range p.actors {
		out[i] = rc.class
	}
	return out
}

// lookupLocked returns the registered class entry for a live instance.
// Caller must hold p.mu.
func (p *Project) lookupLocked(s *actor.Sprite) (*registeredClass, error) {
	if s.Project() != actor.Project(p) {
		return nil, actor.NewNotAttachedError("lookup", s)
	}
	rc, ok := p.byName[s.Class().Name]
	if !ok || !slices.Contains(rc.instances, s) {
		return nil, actor.NewNotAttachedError("lookup", s)
	}
	return rc, nil
}

var _ actor.Project = (*Project)(nil)
