package microbit

import "fmt"

// Protocol selects the device firmware's variable layout. The two versions
// disagree on the buttons variable, so exactly one is in force per codec.
type Protocol int

const (
	// ProtocolV1 reports buttons as two booleans (a, b) and has no sound
	// variable.
	ProtocolV1 Protocol = iota + 1

	// ProtocolV2 reports buttons as three booleans (a, b, logo) and adds
	// the sound variable.
	ProtocolV2
)

// DefaultProtocol is used when no protocol is configured.
const DefaultProtocol = ProtocolV2

// String returns "v1" or "v2".
func (p Protocol) String() string {
	switch p {
	case ProtocolV1:
		return "v1"
	case ProtocolV2:
		return "v2"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// ParseProtocol parses "v1" or "v2".
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "v1":
		return ProtocolV1, nil
	case "v2", "":
		return ProtocolV2, nil
	default:
		return 0, fmt.Errorf("unknown micro:bit protocol %q (want v1 or v2)", s)
	}
}

// buttonCount is the arity of the buttons variable.
func (p Protocol) buttonCount() int {
	if p == ProtocolV1 {
		return 2
	}
	return 3
}

func (p Protocol) hasSound() bool {
	return p == ProtocolV2
}
