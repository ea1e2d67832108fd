package microbit

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Command defaults and limits.
const (
	DefaultBrightness   = 9
	DefaultTempo        = 120
	DefaultRadioChannel = 7
	DefaultRadioGroup   = 0

	// MaxMessageLen is the radio payload limit in characters.
	MaxMessageLen = 32

	// Exclusive upper bounds.
	BrightnessLimit   = 10
	PinLimit          = 3
	RadioChannelLimit = 84
	RadioGroupLimit   = 256
)

var notePattern = regexp.MustCompile(`^[a-gA-GrR](b|#)?\d?(:\d)?$`)

// ValidateNote checks one note: a letter a-g or r (rest), an optional
// flat or sharp, an optional octave digit and an optional ":duration"
// digit. Examples: "c4:2", "r", "g#5".
func ValidateNote(note string) error {
	if !notePattern.MatchString(note) {
		return invalid("play_music", "note %q must follow the format <note>(b|#)(octave)(:hold)", note)
	}
	return nil
}

// ClearDisplay turns every LED off.
func (d *Device) ClearDisplay(ctx context.Context) error {
	return d.codec.send(ctx, "clear")
}

// ScrollMessage scrolls message across the display.
func (d *Device) ScrollMessage(ctx context.Context, message string) error {
	return d.codec.send(ctx, "scroll", message)
}

// ShowText shows text one character at a time.
func (d *Device) ShowText(ctx context.Context, text string) error {
	return d.codec.send(ctx, "show_text", text)
}

// SetPin drives digital pin 0, 1 or 2 high or low.
func (d *Device) SetPin(ctx context.Context, pin int, high bool) error {
	if !inRange(pin, 0, PinLimit) {
		return invalid("set_pin", "pin %d must be between 0 and 2", pin)
	}
	return d.codec.send(ctx, "write_digital", strconv.Itoa(pin), formatBool(high))
}

// SetPixel sets the LED at (x, y) to brightness. Use DefaultBrightness
// for full brightness.
func (d *Device) SetPixel(ctx context.Context, x, y, brightness int) error {
	if !inRange(x, 0, ImageSize) {
		return invalid("set_pixel", "x value %d must be between 0 and 4", x)
	}
	if !inRange(y, 0, ImageSize) {
		return invalid("set_pixel", "y value %d must be between 0 and 4", y)
	}
	if !inRange(brightness, 0, BrightnessLimit) {
		return invalid("set_pixel", "brightness value %d must be between 0 and 9", brightness)
	}
	return d.codec.send(ctx, "pixel", strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(brightness))
}

// ShowImage shows an Image, *Image, or image string on the display.
func (d *Device) ShowImage(ctx context.Context, image any) error {
	var encoded string
	switch img := image.(type) {
	case Image:
		encoded = img.String()
	case *Image:
		if img == nil {
			return invalid("show_image", "image must not be nil")
		}
		encoded = img.String()
	case string:
		if !imagePattern.MatchString(img) {
			return invalid("show_image", "image string %q must be of the form XXXXX:XXXXX:XXXXX:XXXXX:XXXXX, where X is a digit from 0 to 9", img)
		}
		encoded = img
	default:
		return invalid("show_image", "image value must be an Image or a string, got %T", image)
	}
	return d.codec.send(ctx, "show_image", encoded)
}

// MusicOption configures PlayMusic.
type MusicOption func(*musicConfig)

type musicConfig struct {
	tempo int
	loop  bool
}

// WithTempo sets beats per minute. Default: DefaultTempo.
func WithTempo(bpm int) MusicOption {
	return func(c *musicConfig) {
		c.tempo = bpm
	}
}

// WithLoop repeats the tune until StopMusic.
func WithLoop(loop bool) MusicOption {
	return func(c *musicConfig) {
		c.loop = loop
	}
}

// PlayMusic plays notes in order. Every note is checked with ValidateNote
// before anything is sent.
func (d *Device) PlayMusic(ctx context.Context, notes []string, opts ...MusicOption) error {
	cfg := musicConfig{tempo: DefaultTempo}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, n := range notes {
		if err := ValidateNote(n); err != nil {
			return err
		}
	}
	return d.codec.send(ctx, "play_music", strconv.Itoa(cfg.tempo), strings.Join(notes, " "), formatBool(cfg.loop))
}

// StopMusic stops any tune in progress.
func (d *Device) StopMusic(ctx context.Context) error {
	return d.codec.send(ctx, "stop_music")
}

// EnableRadio turns the radio on for a channel and group. The usual
// values are DefaultRadioChannel and DefaultRadioGroup.
func (d *Device) EnableRadio(ctx context.Context, channel, group int) error {
	if !inRange(channel, 0, RadioChannelLimit) {
		return invalid("enable_radio", "radio channel %d must be between 0 and 83", channel)
	}
	if !inRange(group, 0, RadioGroupLimit) {
		return invalid("enable_radio", "radio group %d must be between 0 and 255", group)
	}
	return d.codec.send(ctx, "radio", strconv.Itoa(channel), strconv.Itoa(group))
}

// SendMessage broadcasts message on the configured radio channel.
func (d *Device) SendMessage(ctx context.Context, message string) error {
	if n := utf8.RuneCountInString(message); n > MaxMessageLen {
		return invalid("send_message", "radio message can only be %d characters long, got %d", MaxMessageLen, n)
	}
	return d.codec.send(ctx, "message", message)
}

func inRange(v, lo, hi int) bool {
	return v >= lo && v < hi
}
