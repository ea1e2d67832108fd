package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/value"
)

// Manifest is the set of actor classes a project declares.
type Manifest struct {
	// Sprites in declaration order.
	Sprites []*actor.Class

	// Stage is nil when the manifest declares none.
	Stage *actor.Class
}

// Classes returns the stage (if any) followed by the sprites.
func (m *Manifest) Classes() []*actor.Class {
	var out []*actor.Class
	if m.Stage != nil {
		out = append(out, m.Stage)
	}
	return append(out, m.Sprites...)
}

// CompileSource compiles manifest source text. filename is used in error
// positions.
func CompileSource(filename, src string) (*Manifest, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileManifest(v)
}

// CompileManifest reads the top-level "sprite" and "stage" structs:
//
//	sprite: Ball: {
//		costumes: [{name: "ball", asset: "ball.png", width: 32, height: 32}]
//		sounds: [{name: "pop", asset: "pop.mp3"}]
//		vars: {bounces: 0}
//	}
//	stage: Court: {
//		backdrops: [{name: "court", asset: "court.png"}]
//	}
//
// Compilation stops at the first error; use Validate on the result to
// collect every rule violation.
func CompileManifest(v cue.Value) (*Manifest, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Manifest{}

	spritesVal := v.LookupPath(cue.ParsePath("sprite"))
	if spritesVal.Exists() {
		iter, err := spritesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			c, err := CompileSprite(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Sprites = append(m.Sprites, c)
		}
	}

	stagesVal := v.LookupPath(cue.ParsePath("stage"))
	if stagesVal.Exists() {
		iter, err := stagesVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			if m.Stage != nil {
				return nil, &CompileError{
					Field:   "stage." + iter.Label(),
					Message: fmt.Sprintf("a project has one stage; %s is already declared", m.Stage.Name),
					Pos:     iter.Value().Pos(),
				}
			}
			c, err := CompileStage(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Stage = c
		}
	}

	if len(m.Sprites) == 0 && m.Stage == nil {
		return nil, &CompileError{
			Field:   "sprite",
			Message: "manifest declares no sprites and no stage",
			Pos:     v.Pos(),
		}
	}
	return m, nil
}

// CompileSprite compiles one sprite declaration. The class name is the
// last path label.
func CompileSprite(v cue.Value) (*actor.Class, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name := lastLabel(v)

	costumes, err := parseCostumes(v)
	if err != nil {
		return nil, err
	}
	sounds, err := parseSounds(v)
	if err != nil {
		return nil, err
	}

	c := actor.NewSpriteClass(name, costumes, sounds...)

	varsVal := v.LookupPath(cue.ParsePath("vars"))
	if varsVal.Exists() {
		decoded, err := decodeValue(varsVal)
		if err != nil {
			return nil, err
		}
		rec, ok := decoded.(value.Record)
		if !ok {
			return nil, &CompileError{Field: name + ".vars", Message: "vars must be a struct", Pos: varsVal.Pos()}
		}
		c.Vars = rec
	}
	return c, nil
}

// CompileStage compiles one stage declaration.
func CompileStage(v cue.Value) (*actor.Class, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	name := lastLabel(v)

	if costumes := v.LookupPath(cue.ParsePath("costumes")); costumes.Exists() {
		return nil, &CompileError{Field: name + ".costumes", Message: "a stage has backdrops, not costumes", Pos: costumes.Pos()}
	}

	var backdrops []actor.Backdrop
	err := eachListItem(v, "backdrops", func(item cue.Value, field string) error {
		bname, err := requiredString(item, "name", field)
		if err != nil {
			return err
		}
		asset, err := requiredString(item, "asset", field)
		if err != nil {
			return err
		}
		backdrops = append(backdrops, actor.Backdrop{Name: bname, AssetPath: asset})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sounds, err := parseSounds(v)
	if err != nil {
		return nil, err
	}
	return actor.NewStageClass(name, backdrops, sounds...), nil
}

func parseCostumes(v cue.Value) ([]actor.Costume, error) {
	var costumes []actor.Costume
	err := eachListItem(v, "costumes", func(item cue.Value, field string) error {
		name, err := requiredString(item, "name", field)
		if err != nil {
			return err
		}
		asset, err := requiredString(item, "asset", field)
		if err != nil {
			return err
		}
		width, err := requiredNumber(item, "width", field)
		if err != nil {
			return err
		}
		height, err := requiredNumber(item, "height", field)
		if err != nil {
			return err
		}
		costumes = append(costumes, actor.Costume{Name: name, AssetPath: asset, Width: width, Height: height})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return costumes, nil
}

func parseSounds(v cue.Value) ([]actor.Sound, error) {
	var sounds []actor.Sound
	err := eachListItem(v, "sounds", func(item cue.Value, field string) error {
		name, err := requiredString(item, "name", field)
		if err != nil {
			return err
		}
		asset, err := requiredString(item, "asset", field)
		if err != nil {
			return err
		}
		sounds = append(sounds, actor.Sound{Name: name, AssetPath: asset})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sounds, nil
}

// eachListItem calls fn for every element of the optional list at path.
func eachListItem(v cue.Value, path string, fn func(item cue.Value, field string) error) error {
	listVal := v.LookupPath(cue.ParsePath(path))
	if !listVal.Exists() {
		return nil
	}
	iter, err := listVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for i := 0; iter.Next(); i++ {
		field := fmt.Sprintf("%s.%s[%d]", lastLabel(v), path, i)
		if err := fn(iter.Value(), field); err != nil {
			return err
		}
	}
	return nil
}

func requiredString(v cue.Value, key, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(key))
	if !f.Exists() {
		return "", &CompileError{Field: field + "." + key, Message: key + " is required", Pos: v.Pos()}
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func requiredNumber(v cue.Value, key, field string) (float64, error) {
	f := v.LookupPath(cue.ParsePath(key))
	if !f.Exists() {
		return 0, &CompileError{Field: field + "." + key, Message: key + " is required", Pos: v.Pos()}
	}
	n, err := f.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return n, nil
}

// decodeValue converts a concrete CUE value into a value.Value.
func decodeValue(v cue.Value) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Int(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := value.List{}
		for iter.Next() {
			elem, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := value.Record{}
		for iter.Next() {
			elem, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			out[iter.Label()] = elem
		}
		return out, nil
	default:
		return nil, &CompileError{
			Field:   pathString(v),
			Message: fmt.Sprintf("value must be concrete, got %s", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func lastLabel(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	return sels[len(sels)-1].String()
}

func pathString(v cue.Value) string {
	return v.Path().String()
}

// CompileError is a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError turns the first CUE error into a CompileError, keeping
// its position when CUE reports one.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	ce := &CompileError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
