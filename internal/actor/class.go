package actor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/pytch/internal/value"
)

// Kind distinguishes the two actor variants.
type Kind int

const (
	// KindSprite is a movable, clonable actor.
	KindSprite Kind = iota + 1
	// KindStage is the single backdrop-bearing actor of a project.
	KindStage
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindSprite:
		return "Sprite"
	case KindStage:
		return "Stage"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Costume is one entry of a sprite's costume table.
type Costume struct {
	Name      string  `json:"name"`
	AssetPath string  `json:"asset_path"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Backdrop is one entry of a stage's backdrop table.
type Backdrop struct {
	Name      string `json:"name"`
	AssetPath string `json:"asset_path"`
}

// Sound is one entry of an actor's sound table.
type Sound struct {
	Name      string `json:"name"`
	AssetPath string `json:"asset_path"`
}

// DefaultCostume is used by sprite classes that declare no costumes.
var DefaultCostume = Costume{
	Name:      "question-mark",
	AssetPath: "library/images/question-mark.png",
	Width:     16,
	Height:    16,
}

// DefaultBackdrop is used by stage classes that declare no backdrops.
var DefaultBackdrop = Backdrop{
	Name:      "solid-white",
	AssetPath: "library/images/stage/solid-white.png",
}

// Class is the static declaration of a sprite or stage variant.
//
// The tables are read-only once the class is registered with a project.
// Instances share their class; cloning never copies it.
type Class struct {
	Name      string
	Kind      Kind
	Costumes  []Costume
	Backdrops []Backdrop
	Sounds    []Sound

	// Vars are the initial user variables of every new sprite instance.
	// Each instance gets its own deep copy.
	Vars value.Record

	mu      sync.Mutex
	project Project
}

// NewSpriteClass declares a sprite class.
func NewSpriteClass(name string, costumes []Costume, sounds ...Sound) *Class {
	return &Class{Name: name, Kind: KindSprite, Costumes: costumes, Sounds: sounds}
}

// NewStageClass declares a stage class.
func NewStageClass(name string, backdrops []Backdrop, sounds ...Sound) *Class {
	return &Class{Name: name, Kind: KindStage, Backdrops: backdrops, Sounds: sounds}
}

func (*Class) cloneSource() {}

// Validate checks the declaration: a name, a known kind, only the table
// that belongs to the kind, and unique non-empty entry names.
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalidClass(c.Name, "class name is required")
	}

	switch c.Kind {
	case KindSprite:
		if len(c.Backdrops) > 0 {
			return invalidClass(c.Name, "sprite classes cannot declare backdrops")
		}
		seen := make(map[string]bool, len(c.Costumes))
		for i, costume := range c.Costumes {
			if costume.Name == "" {
				return invalidClass(c.Name, "costume %d has no name", i)
			}
			if seen[costume.Name] {
				return invalidClass(c.Name, "duplicate costume %q", costume.Name)
			}
			if costume.Width <= 0 || costume.Height <= 0 {
				return invalidClass(c.Name, "costume %q must have positive width and height", costume.Name)
			}
			seen[costume.Name] = true
		}
	case KindStage:
		if len(c.Costumes) > 0 {
			return invalidClass(c.Name, "stage classes cannot declare costumes")
		}
		if len(c.Vars) > 0 {
			return invalidClass(c.Name, "stage classes cannot declare instance variables")
		}
		seen := make(map[string]bool, len(c.Backdrops))
		for i, backdrop := range c.Backdrops {
			if backdrop.Name == "" {
				return invalidClass(c.Name, "backdrop %d has no name", i)
			}
			if seen[backdrop.Name] {
				return invalidClass(c.Name, "duplicate backdrop %q", backdrop.Name)
			}
			seen[backdrop.Name] = true
		}
	default:
		return invalidClass(c.Name, "unknown kind %d", int(c.Kind))
	}

	seen := make(map[string]bool, len(c.Sounds))
	for i, sound := range c.Sounds {
		if sound.Name == "" {
			return invalidClass(c.Name, "sound %d has no name", i)
		}
		if seen[sound.Name] {
			return invalidClass(c.Name, "duplicate sound %q", sound.Name)
		}
		seen[sound.Name] = true
	}
	return nil
}

// EffectiveCostumes returns the declared costumes, or DefaultCostume alone
// when none are declared.
func (c *Class) EffectiveCostumes() []Costume {
	if len(c.Costumes) == 0 {
		return []Costume{DefaultCostume}
	}
	return c.Costumes
}

// EffectiveBackdrops returns the declared backdrops, or DefaultBackdrop
// alone when none are declared.
func (c *Class) EffectiveBackdrops() []Backdrop {
	if len(c.Backdrops) == 0 {
		return []Backdrop{DefaultBackdrop}
	}
	return c.Backdrops
}

// DefaultAppearance is the name of the first costume (sprites) or first
// backdrop (stages).
func (c *Class) DefaultAppearance() string {
	if c.Kind == KindStage {
		return c.EffectiveBackdrops()[0].Name
	}
	return c.EffectiveCostumes()[0].Name
}

// HasAppearance reports whether name is in the class's costume or backdrop
// table.
func (c *Class) HasAppearance(name string) bool {
	if c.Kind == KindStage {
		for _, b := range c.EffectiveBackdrops() {
			if b.Name == name {
				return true
			}
		}
		return false
	}
	_, ok := c.Costume(name)
	return ok
}

// Costume looks up a costume by name.
func (c *Class) Costume(name string) (Costume, bool) {
	for _, costume := range c.EffectiveCostumes() {
		if costume.Name == name {
			return costume, true
		}
	}
	return Costume{}, false
}

// BindProject records the project the class is registered with.
// A class belongs to at most one project.
func (c *Class) BindProject(p Project) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.project != nil && c.project != p {
		return invalidClass(c.Name, "class is already registered with another project")
	}
	c.project = p
	return nil
}

// Project returns the project the class is registered with, or nil.
func (c *Class) Project() Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// NewSprite creates instance state for a sprite class: at the origin,
// size 1.0, hidden, wearing the first costume.
func (c *Class) NewSprite() (*Sprite, error) {
	if c.Kind != KindSprite {
		return nil, &Error{Code: ErrCodeNotSprite, Message: "cannot create a sprite from a stage class", Class: c.Name}
	}
	vars := c.Vars.Copy()
	if vars == nil {
		vars = value.Record{}
	}
	return &Sprite{
		class:      c,
		size:       1.0,
		appearance: c.DefaultAppearance(),
		vars:       vars,
	}, nil
}

// NewStage creates the stage instance for a stage class.
func (c *Class) NewStage() (*Stage, error) {
	if c.Kind != KindStage {
		return nil, invalidClass(c.Name, "cannot create a stage from a sprite class")
	}
	return &Stage{class: c, appearance: c.DefaultAppearance()}, nil
}
