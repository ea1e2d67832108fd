package harness

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/pytch/internal/actor"
	"github.com/roach88/pytch/internal/clone"
	"github.com/roach88/pytch/internal/hooks"
	"github.com/roach88/pytch/internal/microbit"
	"github.com/roach88/pytch/internal/value"
)

// opContext is the state one step's op sees.
type opContext struct {
	h    *Harness
	step Step
	self *actor.Sprite
	args stepArgs

	// target is filled in by the op for the trace.
	target string
}

type opFunc func(ctx context.Context, c *opContext) (value.Value, error)

var ops = map[string]opFunc{
	"go_to_xy": spriteOp(func(c *opContext, s *actor.Sprite) error {
		x, err := c.args.num("x")
		if err != nil {
			return err
		}
		y, err := c.args.num("y")
		if err != nil {
			return err
		}
		s.GoToXY(x, y)
		return nil
	}),
	"set_x":    numberOp("x", (*actor.Sprite).SetX),
	"change_x": numberOp("dx", (*actor.Sprite).ChangeX),
	"set_y":    numberOp("y", (*actor.Sprite).SetY),
	"change_y": numberOp("dy", (*actor.Sprite).ChangeY),
	"set_size": numberOp("size", (*actor.Sprite).SetSize),
	"show": spriteOp(func(_ *opContext, s *actor.Sprite) error {
		s.Show()
		return nil
	}),
	"hide": spriteOp(func(_ *opContext, s *actor.Sprite) error {
		s.Hide()
		return nil
	}),
	"switch_costume": spriteOp(func(c *opContext, s *actor.Sprite) error {
		name, err := c.args.str("costume")
		if err != nil {
			return err
		}
		s.SwitchCostume(name)
		return nil
	}),
	"set_var": spriteOp(func(c *opContext, s *actor.Sprite) error {
		name, err := c.args.str("name")
		if err != nil {
			return err
		}
		raw, ok := c.args["value"]
		if !ok {
			return fmt.Errorf("missing arg %q", "value")
		}
		v, err := value.FromAny(raw)
		if err != nil {
			return fmt.Errorf("arg %q: %w", "value", err)
		}
		s.SetVar(name, v)
		return nil
	}),
	"clone":        opClone,
	"clone_class":  opCloneClass,
	"delete_clone": spriteOp(func(_ *opContext, s *actor.Sprite) error { return s.DeleteThisClone() }),
	"touching":     opTouching,

	"switch_backdrop": opSwitchBackdrop,

	"green_flag": func(_ context.Context, c *opContext) (value.Value, error) {
		c.h.publish(hooks.WhenGreenFlagClicked(), nil)
		return nil, nil
	},
	"broadcast": eventOp(TriggerReceive, "message"),
	"press_key": eventOp(TriggerKey, "key"),
	"click": func(_ context.Context, c *opContext) (value.Value, error) {
		s, err := c.sprite()
		if err != nil {
			return nil, err
		}
		c.h.publish(hooks.WhenThisSpriteClicked(), s)
		return nil, nil
	},
	"click_stage": func(_ context.Context, c *opContext) (value.Value, error) {
		st := c.h.project.Stage()
		if st == nil {
			return nil, fmt.Errorf("project has no stage")
		}
		c.target = st.Class().Name
		c.h.publish(hooks.WhenStageClicked(), st)
		return nil, nil
	},

	"device.button":      eventOp(TriggerButton, "button"),
	"device.gesture":     eventOp(TriggerGesture, "gesture"),
	"device.pin_high":    eventOp(TriggerPinHigh, "pin"),
	"device.sound_heard": eventOp(TriggerSound, "level"),

	"device.clear_display": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		return d.ClearDisplay(ctx)
	}),
	"device.scroll_message": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		msg, err := c.args.str("message")
		if err != nil {
			return err
		}
		return d.ScrollMessage(ctx, msg)
	}),
	"device.show_text": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		text, err := c.args.str("text")
		if err != nil {
			return err
		}
		return d.ShowText(ctx, text)
	}),
	"device.set_pin": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		pin, err := c.args.integer("pin")
		if err != nil {
			return err
		}
		high, err := c.args.flag("high", true)
		if err != nil {
			return err
		}
		return d.SetPin(ctx, pin, high)
	}),
	"device.set_pixel": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		x, err := c.args.integer("x")
		if err != nil {
			return err
		}
		y, err := c.args.integer("y")
		if err != nil {
			return err
		}
		b, err := c.args.integerOr("brightness", microbit.DefaultBrightness)
		if err != nil {
			return err
		}
		return d.SetPixel(ctx, x, y, b)
	}),
	"device.show_image": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		img, err := c.args.str("image")
		if err != nil {
			return err
		}
		return d.ShowImage(ctx, img)
	}),
	"device.play_music": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		notes, err := c.args.list("notes")
		if err != nil {
			return err
		}
		tempo, err := c.args.integerOr("tempo", microbit.DefaultTempo)
		if err != nil {
			return err
		}
		loop, err := c.args.flag("loop", false)
		if err != nil {
			return err
		}
		return d.PlayMusic(ctx, notes, microbit.WithTempo(tempo), microbit.WithLoop(loop))
	}),
	"device.stop_music": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		return d.StopMusic(ctx)
	}),
	"device.enable_radio": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		channel, err := c.args.integerOr("channel", microbit.DefaultRadioChannel)
		if err != nil {
			return err
		}
		group, err := c.args.integerOr("group", microbit.DefaultRadioGroup)
		if err != nil {
			return err
		}
		return d.EnableRadio(ctx, channel, group)
	}),
	"device.send_message": deviceOp(func(ctx context.Context, c *opContext, d *microbit.Device) error {
		msg, err := c.args.str("message")
		if err != nil {
			return err
		}
		return d.SendMessage(ctx, msg)
	}),
	"device.get": func(ctx context.Context, c *opContext) (value.Value, error) {
		name, err := c.args.str("variable")
		if err != nil {
			return nil, err
		}
		vals, err := c.h.device.Codec().Variable(ctx, name)
		if err != nil {
			return nil, err
		}
		return vals, nil
	},
}

func knownOp(op string) bool {
	_, ok := ops[op]
	return ok
}

// sprite resolves the step's target instance: the named class's instance
// at step.Instance, or the hook's own instance when no class is named.
func (c *opContext) sprite() (*actor.Sprite, error) {
	if c.step.Sprite == "" {
		if c.self == nil {
			return nil, fmt.Errorf("op %s needs a sprite", c.step.Op)
		}
		c.target = c.self.ID()
		return c.self, nil
	}

	class, err := c.spriteClass(c.step.Sprite)
	if err != nil {
		return nil, err
	}
	instances := c.h.project.SpriteInstances(class)
	if c.step.Instance >= len(instances) {
		return nil, fmt.Errorf("sprite %s has %d instance(s), no instance %d", class.Name, len(instances), c.step.Instance)
	}
	s := instances[c.step.Instance]
	c.target = s.ID()
	return s, nil
}

func (c *opContext) spriteClass(name string) (*actor.Class, error) {
	class, ok := c.h.project.ClassByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown class %q", name)
	}
	if class.Kind != actor.KindSprite {
		return nil, fmt.Errorf("%q is not a sprite class", name)
	}
	return class, nil
}

func spriteOp(fn func(c *opContext, s *actor.Sprite) error) opFunc {
	return func(_ context.Context, c *opContext) (value.Value, error) {
		s, err := c.sprite()
		if err != nil {
			return nil, err
		}
		return nil, fn(c, s)
	}
}

func numberOp(arg string, set func(*actor.Sprite, float64)) opFunc {
	return spriteOp(func(c *opContext, s *actor.Sprite) error {
		n, err := c.args.num(arg)
		if err != nil {
			return err
		}
		set(s, n)
		return nil
	})
}

func deviceOp(fn func(ctx context.Context, c *opContext, d *microbit.Device) error) opFunc {
	return func(ctx context.Context, c *opContext) (value.Value, error) {
		return nil, fn(ctx, c, c.h.device)
	}
}

// eventOp publishes the trigger named by when, parameterised by arg.
func eventOp(when, arg string) opFunc {
	return func(_ context.Context, c *opContext) (value.Value, error) {
		raw, ok := c.args[arg]
		if !ok {
			return nil, fmt.Errorf("missing arg %q", arg)
		}
		t, err := triggerFor(when, fmt.Sprint(raw))
		if err != nil {
			return nil, err
		}
		c.h.publish(t, nil)
		return nil, nil
	}
}

func opClone(_ context.Context, c *opContext) (value.Value, error) {
	s, err := c.sprite()
	if err != nil {
		return nil, err
	}
	cl, err := clone.CreateCloneOfInstance(s)
	if err != nil {
		return nil, err
	}
	return value.String(cl.ID()), nil
}

func opCloneClass(_ context.Context, c *opContext) (value.Value, error) {
	class, err := c.spriteClass(c.step.Sprite)
	if err != nil {
		return nil, err
	}
	c.target = class.Name
	cl, err := clone.CreateCloneOf(class)
	if err != nil {
		return nil, err
	}
	return value.String(cl.ID()), nil
}

func opTouching(_ context.Context, c *opContext) (value.Value, error) {
	s, err := c.sprite()
	if err != nil {
		return nil, err
	}
	name, err := c.args.str("class")
	if err != nil {
		return nil, err
	}
	class, err := c.spriteClass(name)
	if err != nil {
		return nil, err
	}
	touching, err := s.Touching(class)
	if err != nil {
		return nil, err
	}
	return value.Bool(touching), nil
}

func opSwitchBackdrop(_ context.Context, c *opContext) (value.Value, error) {
	st := c.h.project.Stage()
	if st == nil {
		return nil, fmt.Errorf("project has no stage")
	}
	name, err := c.args.str("backdrop")
	if err != nil {
		return nil, err
	}
	c.target = st.Class().Name
	st.SwitchBackdrop(name)
	return nil, nil
}

// publish queues an event; target may be nil for broadcast events.
func (h *Harness) publish(t hooks.Trigger, target actor.Actor) {
	h.dispatcher.Publish(t.Channel, t.Key, target)
}

// triggerFor builds the trigger a hook's when/arg pair names.
func triggerFor(when, arg string) (hooks.Trigger, error) {
	switch when {
	case TriggerGreenFlag:
		return hooks.WhenGreenFlagClicked(), nil
	case TriggerCloneStart:
		return hooks.WhenIStartAsAClone(), nil
	case TriggerClicked:
		return hooks.WhenThisSpriteClicked(), nil
	case TriggerReceive:
		return hooks.WhenIReceive(arg)
	case TriggerKey:
		return hooks.WhenKeyPressed(arg)
	case TriggerButton:
		return microbit.WhenButtonPressed(arg)
	case TriggerGesture:
		return microbit.WhenGesturePerformed(arg)
	case TriggerPinHigh:
		pin, err := strconv.Atoi(arg)
		if err != nil {
			return hooks.Trigger{}, fmt.Errorf("pin %q must be an integer", arg)
		}
		return microbit.WhenPinHigh(pin)
	case TriggerSound:
		return microbit.WhenSoundHeard(arg)
	default:
		return hooks.Trigger{}, fmt.Errorf("unknown trigger %q", when)
	}
}

// stepArgs reads typed arguments from decoded YAML.
type stepArgs map[string]any

func (a stepArgs) num(key string) (float64, error) {
	v, ok := a[key]
	if !ok {
		return 0, fmt.Errorf("missing arg %q", key)
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("arg %q must be a number, got %T", key, v)
	}
}

func (a stepArgs) integer(key string) (int, error) {
	n, err := a.num(key)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, fmt.Errorf("arg %q must be an integer, got %g", key, n)
	}
	return int(n), nil
}

func (a stepArgs) integerOr(key string, def int) (int, error) {
	if _, ok := a[key]; !ok {
		return def, nil
	}
	return a.integer(key)
}

func (a stepArgs) str(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("arg %q must be a string, got %T", key, v)
	}
	return s, nil
}

func (a stepArgs) flag(key string, def bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("arg %q must be a boolean, got %T", key, v)
	}
	return b, nil
}

// list accepts a YAML sequence of strings or one space-separated string.
func (a stepArgs) list(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("missing arg %q", key)
	}
	switch l := v.(type) {
	case string:
		return strings.Fields(l), nil
	case []string:
		return l, nil
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("arg %q[%d] must be a string, got %T", key, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("arg %q must be a list of strings, got %T", key, v)
	}
}
