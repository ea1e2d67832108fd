package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pytch/internal/actor"
)

func codes(errs []ValidationError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	c := actor.NewSpriteClass("Bad", []actor.Costume{
		{Name: "a", AssetPath: "a.bmp", Width: 1, Height: 1},
		{Name: "a", AssetPath: "", Width: 0, Height: 1},
		{Name: "", AssetPath: "c.png", Width: 1, Height: 1},
	}, actor.Sound{Name: "pop", AssetPath: "pop.png"})

	errs := Validate(c)
	assert.Equal(t, []string{
		ErrAssetFormat,
		ErrDuplicateName, ErrAssetMissing, ErrDimension,
		ErrEntryName,
		ErrAssetFormat,
	}, codes(errs))
	assert.Equal(t, "Bad.costumes[1]", errs[1].Field)
}

func TestValidate_Manifest(t *testing.T) {
	m := &Manifest{
		Stage: actor.NewStageClass("Main", []actor.Backdrop{{Name: "sky", AssetPath: "sky.PNG"}}),
		Sprites: []*actor.Class{
			actor.NewSpriteClass("Main", nil),
			actor.NewSpriteClass(" ", nil),
		},
	}
	assert.Equal(t, []string{ErrDuplicateName, ErrClassName}, codes(Validate(m)))
}

func TestValidate_WrongTableKind(t *testing.T) {
	c := actor.NewSpriteClass("S", nil)
	c.Backdrops = []actor.Backdrop{{Name: "b", AssetPath: "b.png"}}
	assert.Contains(t, codes(Validate(c)), ErrWrongTableKind)
}

func TestValidate_Unsupported(t *testing.T) {
	errs := Validate("nope")
	assert.Equal(t, []string{ErrUnsupportedType}, codes(errs))
}

func TestValidationError_Format(t *testing.T) {
	err := ValidationError{Field: "Ball.costumes[0]", Message: "asset path is required", Code: ErrAssetMissing}
	assert.Equal(t, "[E102] Ball.costumes[0]: asset path is required", err.Error())
}
