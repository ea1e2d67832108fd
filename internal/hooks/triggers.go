package hooks

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/pytch/internal/actor"
)

// Channels and fixed keys used by the built-in triggers.
const (
	ChannelProject  = "project"
	ChannelMessage  = "message"
	ChannelKeyboard = "keyboard"
	ChannelSprite   = "sprite"
	ChannelStage    = "stage"

	KeyGreenFlag  = "green-flag"
	KeyCloneStart = "clone-start"
	KeyClicked    = "clicked"
)

// Trigger is a validated (channel, key) pair ready to be attached to a
// handler.
type Trigger struct {
	Channel string
	Key     string
}

// Attach registers h for the trigger without an owner and returns h.
func (t Trigger) Attach(r *Registry, h Handler) Handler {
	return r.Register(h, t.Channel, t.Key)
}

// AttachOn registers h for the trigger on behalf of owner's instances and
// returns h.
func (t Trigger) AttachOn(r *Registry, owner *actor.Class, h Handler) Handler {
	return r.RegisterOn(owner, h, t.Channel, t.Key)
}

// String returns "channel/key".
func (t Trigger) String() string {
	return t.Channel + "/" + t.Key
}

// CheckOneOf returns an *UnsupportedError unless v is in legal.
func CheckOneOf(kind, v string, legal []string) error {
	if slices.Contains(legal, v) {
		return nil
	}
	return &UnsupportedError{Kind: kind, Value: v, Legal: legal}
}

// WhenGreenFlagClicked fires when the project starts.
func WhenGreenFlagClicked() Trigger {
	return Trigger{Channel: ChannelProject, Key: KeyGreenFlag}
}

// WhenIStartAsAClone fires on a newly registered clone.
func WhenIStartAsAClone() Trigger {
	return Trigger{Channel: ChannelSprite, Key: KeyCloneStart}
}

// WhenThisSpriteClicked fires when a sprite instance is clicked.
func WhenThisSpriteClicked() Trigger {
	return Trigger{Channel: ChannelSprite, Key: KeyClicked}
}

// WhenStageClicked fires when the stage is clicked.
func WhenStageClicked() Trigger {
	return Trigger{Channel: ChannelStage, Key: KeyClicked}
}

// WhenIReceive fires when message is broadcast.
func WhenIReceive(message string) (Trigger, error) {
	if message == "" {
		return Trigger{}, fmt.Errorf("when_I_receive(): message must not be empty")
	}
	return Trigger{Channel: ChannelMessage, Key: "receive:" + message}, nil
}

// BroadcastKey returns the key WhenIReceive uses for message.
func BroadcastKey(message string) string {
	return "receive:" + message
}

// WhenKeyPressed fires when the named keyboard key is pressed.
func WhenKeyPressed(keyname string) (Trigger, error) {
	if err := ValidateKeyname(keyname); err != nil {
		return Trigger{}, err
	}
	return Trigger{Channel: ChannelKeyboard, Key: "key:" + keyname}, nil
}

// ValidKeynames lists the keys WhenKeyPressed accepts.
var ValidKeynames = func() []string {
	var keys []string
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	return append(keys, " ", "ArrowLeft", "ArrowDown", "ArrowUp", "ArrowRight")
}()

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// ValidateKeyname checks keyname against ValidKeynames. Near misses such as
// "arrow-left" get a suggested spelling in the error.
func ValidateKeyname(keyname string) error {
	if slices.Contains(ValidKeynames, keyname) {
		return nil
	}

	err := &UnsupportedError{Kind: "key", Value: keyname}
	switch {
	case keyname == "":
		err.Hint = "keyname must not be an empty string"
	case strings.TrimSpace(keyname) == "":
		err.Hint = `if you meant the spacebar, use " " (a string consisting of a single space character)`
	default:
		if s := suggestedKeyname(keyname); s != "" {
			err.Hint = fmt.Sprintf("did you mean %q?", s)
		} else {
			err.Hint = `use keys from "a" to "z", from "0" to "9", the space key " ", or one of "ArrowLeft", "ArrowDown", "ArrowUp", "ArrowRight"`
		}
	}
	return err
}

func suggestedKeyname(keyname string) string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(keyname), "")
	for _, k := range ValidKeynames {
		if strings.ToLower(k) == cleaned {
			return k
		}
	}
	return ""
}
