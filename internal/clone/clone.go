// Package clone creates runtime copies of sprites and registers them with
// the owning project.
//
// A clone is a deep, independent copy of its source at the moment of
// cloning. Creation, copy and registration happen in one call, so under
// the cooperative scheduling model no handler observes a half-made clone.
package clone

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pytch/internal/actor"
)

// CreateCloneOf clones a sprite class or a sprite instance.
//
// For a class, the clone is made from the class's instance zero, the
// first-registered live instance. For an instance, the clone is made from
// that instance.
func CreateCloneOf(src actor.CloneSource) (*actor.Sprite, error) {
	obj, err := effectiveSource(src)
	if err != nil {
		return nil, err
	}
	return CreateCloneOfInstance(obj)
}

// CreateCloneOfInstance deep-copies s and registers the copy with s's
// project under s's class. The clone is returned bound to the project.
func CreateCloneOfInstance(s *actor.Sprite) (*actor.Sprite, error) {
	if s == nil {
		return nil, fmt.Errorf("create_clone_of_instance: nil sprite")
	}
	p := s.Project()
	if p == nil {
		return nil, actor.NewNotAttachedError("create_clone_of", s)
	}

	dup := s.Copy()
	registered, err := p.RegisterSpriteInstance(dup, s)
	if err != nil {
		return nil, fmt.Errorf("register clone of %s: %w", s.Class().Name, err)
	}

	slog.Debug("clone created",
		"class", s.Class().Name,
		"source", s.ID(),
		"clone", registered.ID(),
	)
	return registered, nil
}

// effectiveSource resolves a clone source to the instance to copy.
func effectiveSource(src actor.CloneSource) (*actor.Sprite, error) {
	switch v := src.(type) {
	case *actor.Sprite:
		if v == nil {
			return nil, fmt.Errorf("create_clone_of: nil sprite")
		}
		return v, nil

	case *actor.Class:
		if v == nil {
			return nil, fmt.Errorf("create_clone_of: nil class")
		}
		if v.Kind != actor.KindSprite {
			return nil, &actor.Error{
				Code:    actor.ErrCodeNotSprite,
				Message: "in create_clone_of(cls), cls must be a registered Sprite class",
				Class:   v.Name,
			}
		}
		p := v.Project()
		if p == nil {
			return nil, actor.NewNoInstanceError(v.Name)
		}
		return p.InstanceZero(v)

	default:
		return nil, fmt.Errorf("create_clone_of: unsupported source %T", src)
	}
}
