package compiler

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/roach88/pytch/internal/actor"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedType = "E100" // unsupported value passed to Validate

	ErrClassName      = "E101" // class name missing
	ErrAssetMissing   = "E102" // asset path missing
	ErrAssetFormat    = "E103" // asset extension not recognised
	ErrDimension      = "E104" // costume width/height not positive
	ErrDuplicateName  = "E105" // duplicate class or entry name
	ErrEntryName      = "E106" // costume/backdrop/sound name missing
	ErrWrongTableKind = "E107" // costumes on a stage or backdrops on a sprite
)

var (
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg"}
	soundExtensions = []string{".mp3", ".wav", ".ogg"}
)

// ValidationError is one rule violation found by Validate.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a *Manifest or *actor.Class and returns every violation
// found, not just the first.
func Validate(v any) []ValidationError {
	switch x := v.(type) {
	case *Manifest:
		return validateManifest(x)
	case *actor.Class:
		return validateClass(x)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type: %T", v),
			Code:    ErrUnsupportedType,
		}}
	}
}

func validateManifest(m *Manifest) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, c := range m.Classes() {
		if seen[c.Name] {
			errs = append(errs, ValidationError{
				Field:   c.Name,
				Message: fmt.Sprintf("duplicate class name %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[c.Name] = true
		errs = append(errs, validateClass(c)...)
	}
	return errs
}

func validateClass(c *actor.Class) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   c.Name + "." + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "class name is required", Code: ErrClassName})
	}

	switch c.Kind {
	case actor.KindSprite:
		if len(c.Backdrops) > 0 {
			add("backdrops", ErrWrongTableKind, "sprites have costumes, not backdrops")
		}
	case actor.KindStage:
		if len(c.Costumes) > 0 {
			add("costumes", ErrWrongTableKind, "a stage has backdrops, not costumes")
		}
	}

	names := make(map[string]bool)
	for i, costume := range c.Costumes {
		field := fmt.Sprintf("costumes[%d]", i)
		checkEntry(add, field, costume.Name, costume.AssetPath, imageExtensions, names)
		if costume.Width <= 0 || costume.Height <= 0 {
			add(field, ErrDimension, "costume %q must have positive width and height, got %gx%g", costume.Name, costume.Width, costume.Height)
		}
	}

	names = make(map[string]bool)
	for i, b := range c.Backdrops {
		checkEntry(add, fmt.Sprintf("backdrops[%d]", i), b.Name, b.AssetPath, imageExtensions, names)
	}

	names = make(map[string]bool)
	for i, s := range c.Sounds {
		checkEntry(add, fmt.Sprintf("sounds[%d]", i), s.Name, s.AssetPath, soundExtensions, names)
	}
	return errs
}

func checkEntry(add func(field, code, format string, args ...any), field, name, asset string, exts []string, seen map[string]bool) {
	switch {
	case name == "":
		add(field, ErrEntryName, "name is required")
	case seen[name]:
		add(field, ErrDuplicateName, "duplicate name %q", name)
	}
	seen[name] = true

	if asset == "" {
		add(field, ErrAssetMissing, "asset path is required")
		return
	}
	if ext := strings.ToLower(path.Ext(asset)); !slices.Contains(exts, ext) {
		add(field, ErrAssetFormat, "asset %q must be one of %s", asset, strings.Join(exts, ", "))
	}
}
