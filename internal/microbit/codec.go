package microbit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/roach88/pytch/internal/value"
)

// Device variable names.
const (
	VarAccel   = "accel"
	VarButtons = "buttons"
	VarGesture = "gesture"
	VarLight   = "light"
	VarSound   = "sound"
	VarPins    = "pins"
	VarTemp    = "temp"
)

type decodeRule int

const (
	decodeFloat decodeRule = iota + 1
	decodeBool
	decodePassthrough
)

// variableShape is one row of the decode table. arity < 0 accepts any
// number of values.
type variableShape struct {
	arity int
	rule  decodeRule
}

// Codec reads device variables over a Transport.
type Codec struct {
	transport Transport
	protocol  Protocol
	logger    *slog.Logger
}

// Option configures a Codec or Device.
type Option func(*Codec)

// WithProtocol selects the firmware protocol. Default: ProtocolV2.
func WithProtocol(p Protocol) Option {
	return func(c *Codec) {
		c.protocol = p
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

// NewCodec creates a codec over t.
func NewCodec(t Transport, opts ...Option) *Codec {
	c := &Codec{
		transport: t,
		protocol:  DefaultProtocol,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Protocol returns the protocol in force.
func (c *Codec) Protocol() Protocol {
	return c.protocol
}

// Variables lists the variable names valid under the codec's protocol.
func (c *Codec) Variables() []string {
	names := []string{VarAccel, VarButtons, VarGesture, VarLight}
	if c.protocol.hasSound() {
		names = append(names, VarSound)
	}
	return append(names, VarPins, VarTemp)
}

func (c *Codec) shape(name string) (variableShape, bool) {
	switch name {
	case VarAccel:
		return variableShape{3, decodeFloat}, true
	case VarButtons:
		return variableShape{c.protocol.buttonCount(), decodeBool}, true
	case VarGesture:
		return variableShape{1, decodePassthrough}, true
	case VarLight, VarTemp:
		return variableShape{1, decodeFloat}, true
	case VarSound:
		if !c.protocol.hasSound() {
			return variableShape{}, false
		}
		return variableShape{1, decodeFloat}, true
	case VarPins:
		return variableShape{-1, decodePassthrough}, true
	default:
		return variableShape{}, false
	}
}

// Variable polls one device variable and decodes the reply: floats for
// numeric variables, booleans for buttons, strings otherwise.
//
// Unknown names fail before the transport is called. Transport errors are
// returned unchanged.
func (c *Codec) Variable(ctx context.Context, name string) (value.List, error) {
	shape, ok := c.shape(name)
	if !ok {
		return nil, invalid("var", "'%s' is not a valid variable", name)
	}

	raw, err := c.transport.Send(ctx, "var", []string{name})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("variable read", "name", name, "values", raw)

	if shape.arity >= 0 && len(raw) != shape.arity {
		return nil, &DecodeError{
			Variable: name,
			Values:   raw,
			Message:  fmt.Sprintf("expected %d values under protocol %s, got %d", shape.arity, c.protocol, len(raw)),
		}
	}

	out := make(value.List, len(raw))
	for i, s := range raw {
		switch shape.rule {
		case decodeFloat:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, &DecodeError{
					Variable: name,
					Values:   raw,
					Message:  fmt.Sprintf("value %d is not a number", i),
					Err:      err,
				}
			}
			out[i] = value.Float(f)
		case decodeBool:
			out[i] = value.Bool(s == "True")
		default:
			out[i] = value.String(s)
		}
	}
	return out, nil
}

// send issues a command and discards the (empty) reply.
func (c *Codec) send(ctx context.Context, op string, args ...string) error {
	if args == nil {
		args = []string{}
	}
	c.logger.Debug("command", "op", op, "args", args)
	_, err := c.transport.Send(ctx, op, args)
	return err
}

// formatBool renders a boolean the way the device firmware parses it.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
