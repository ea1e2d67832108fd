package microbit

import (
	"strconv"

	"github.com/roach88/pytch/internal/hooks"
)

// Channel is the hook channel for micro:bit events.
const Channel = "microbit"

// Legal values for the hat blocks.
var (
	ButtonNames  = []string{"a", "b", "logo"}
	GestureNames = []string{"down", "face down", "face up", "left", "right", "shake", "up"}
	SoundLevels  = []string{"quiet", "loud"}
)

// Sound levels.
const (
	Quiet = "quiet"
	Loud  = "loud"
)

// WhenButtonPressed fires when button "a", "b" or "logo" is pressed.
func WhenButtonPressed(button string) (hooks.Trigger, error) {
	if err := hooks.CheckOneOf("button", button, ButtonNames); err != nil {
		return hooks.Trigger{}, err
	}
	return hooks.Trigger{Channel: Channel, Key: "button:" + button}, nil
}

// WhenGesturePerformed fires when the device detects gesture.
func WhenGesturePerformed(gesture string) (hooks.Trigger, error) {
	if err := hooks.CheckOneOf("gesture", gesture, GestureNames); err != nil {
		return hooks.Trigger{}, err
	}
	return hooks.Trigger{Channel: Channel, Key: "gesture:" + gesture}, nil
}

// WhenPinHigh fires when pin 0, 1 or 2 goes high.
func WhenPinHigh(pin int) (hooks.Trigger, error) {
	if !inRange(pin, 0, PinLimit) {
		return hooks.Trigger{}, &hooks.UnsupportedError{
			Kind:  "pin",
			Value: strconv.Itoa(pin),
			Legal: []string{"0", "1", "2"},
		}
	}
	return hooks.Trigger{Channel: Channel, Key: "pin_high:" + strconv.Itoa(pin)}, nil
}

// WhenSoundHeard fires when the microphone level crosses into level.
func WhenSoundHeard(level string) (hooks.Trigger, error) {
	if err := hooks.CheckOneOf("level", level, SoundLevels); err != nil {
		return hooks.Trigger{}, err
	}
	return hooks.Trigger{Channel: Channel, Key: "mic:" + level}, nil
}
