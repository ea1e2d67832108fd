package actor

import (
	"github.com/roach88/pytch/internal/value"
)

// Sprite is one live or detached instance of a sprite class.
//
// All mutators are plain field writes. Position and size are not range
// checked here; the appearance key is not checked against the costume
// table (see Class.HasAppearance).
type Sprite struct {
	class      *Class
	x, y       float64
	size       float64
	shown      bool
	appearance string
	vars       value.Record

	id      string
	clone   bool
	project Project // non-owning; nil when not registered
}

func (*Sprite) cloneSource() {}

// Class returns the sprite's class.
func (s *Sprite) Class() *Class { return s.class }

// Kind returns KindSprite.
func (s *Sprite) Kind() Kind { return KindSprite }

// ID returns the instance ID assigned by the project, or "" when detached.
func (s *Sprite) ID() string { return s.id }

// IsClone reports whether the sprite was created by cloning.
func (s *Sprite) IsClone() bool { return s.clone }

// Project returns the owning project, or nil when not registered.
func (s *Sprite) Project() Project { return s.project }

// GoToXY sets the position absolutely.
func (s *Sprite) GoToXY(x, y float64) {
	s.x = x
	s.y = y
}

// X returns the x coordinate.
func (s *Sprite) X() float64 { return s.x }

// SetX sets the x coordinate.
func (s *Sprite) SetX(x float64) { s.x = x }

// ChangeX moves the sprite horizontally by dx.
func (s *Sprite) ChangeX(dx float64) { s.x += dx }

// Y returns the y coordinate.
func (s *Sprite) Y() float64 { return s.y }

// SetY sets the y coordinate.
func (s *Sprite) SetY(y float64) { s.y = y }

// ChangeY moves the sprite vertically by dy.
func (s *Sprite) ChangeY(dy float64) { s.y += dy }

// Size returns the scale factor; 1.0 is natural size.
func (s *Sprite) Size() float64 { return s.size }

// SetSize sets the scale factor.
func (s *Sprite) SetSize(size float64) { s.size = size }

// Shown reports visibility.
func (s *Sprite) Shown() bool { return s.shown }

// Show makes the sprite visible.
func (s *Sprite) Show() { s.shown = true }

// Hide makes the sprite invisible.
func (s *Sprite) Hide() { s.shown = false }

// Appearance returns the current costume name.
func (s *Sprite) Appearance() string { return s.appearance }

// SwitchCostume sets the current costume name.
func (s *Sprite) SwitchCostume(name string) { s.appearance = name }

// Vars returns the sprite's user variables. The record is live: writes
// through it change the sprite.
func (s *Sprite) Vars() value.Record {
	if s.vars == nil {
		s.vars = value.Record{}
	}
	return s.vars
}

// Var returns a user variable.
func (s *Sprite) Var(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVar sets a user variable.
func (s *Sprite) SetVar(name string, v value.Value) {
	s.Vars()[name] = v
}

// Touching reports whether the sprite overlaps any live instance of target.
func (s *Sprite) Touching(target *Class) (bool, error) {
	if s.project == nil {
		return false, NewNotAttachedError("touching", s)
	}
	return s.project.InstanceIsTouchingAnyOf(s, target)
}

// DeleteThisClone asks the project to unregister this clone. Calling it a
// second time fails with ErrCodeNotAttached; calling it on an original
// instance fails with ErrCodeNotAClone.
func (s *Sprite) DeleteThisClone() error {
	if s.project == nil {
		return NewNotAttachedError("delete_this_clone", s)
	}
	if !s.clone {
		return &Error{
			Code:     ErrCodeNotAClone,
			Message:  "delete_this_clone(): only clones can be deleted",
			Class:    s.class.Name,
			Instance: s.id,
		}
	}
	return s.project.UnregisterActorInstance(s)
}

// Copy returns a detached deep copy of the sprite, marked as a clone.
// User variables are copied recursively; the class is shared.
func (s *Sprite) Copy() *Sprite {
	return &Sprite{
		class:      s.class,
		x:          s.x,
		y:          s.y,
		size:       s.size,
		shown:      s.shown,
		appearance: s.appearance,
		vars:       s.vars.Copy(),
		clone:      true,
	}
}

// Bind attaches the sprite to a project under an instance ID.
// Called by Project implementations on registration.
func (s *Sprite) Bind(p Project, id string) {
	s.project = p
	s.id = id
}

// Unbind detaches the sprite. Called by Project implementations on
// unregistration.
func (s *Sprite) Unbind() {
	s.project = nil
}
