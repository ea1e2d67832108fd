package actor

// Actor is the capability set shared by every on-stage entity.
type Actor interface {
	Class() *Class
	Kind() Kind
	X() float64
	Y() float64
	Size() float64
	Shown() bool
	Appearance() string
}

// Project is the collaborator that owns the registry of live instances.
// It is the single source of truth for which instances exist; actors only
// issue requests to it.
type Project interface {
	// RegisterSpriteInstance registers clone under the same class as
	// original and binds it to the project.
	RegisterSpriteInstance(clone, original *Sprite) (*Sprite, error)

	// UnregisterActorInstance removes a sprite instance and unbinds it.
	UnregisterActorInstance(s *Sprite) error

	// InstanceIsTouchingAnyOf reports whether s overlaps any live instance
	// of target.
	InstanceIsTouchingAnyOf(s *Sprite, target *Class) (bool, error)

	// InstanceZero returns the first-registered live instance of a class.
	InstanceZero(c *Class) (*Sprite, error)
}

// CloneSource is something a clone can be made from: a sprite class
// (meaning its instance zero) or a specific sprite instance.
type CloneSource interface {
	cloneSource()
}

// Visibility is the show/hide capability.
type Visibility interface {
	Show()
	Hide()
}

// SetVisibility shows v when visible is true and hides it otherwise.
func SetVisibility(v Visibility, visible bool) {
	if visible {
		v.Show()
	} else {
		v.Hide()
	}
}

var (
	_ Actor      = (*Sprite)(nil)
	_ Actor      = (*Stage)(nil)
	_ Visibility = (*Sprite)(nil)
)
