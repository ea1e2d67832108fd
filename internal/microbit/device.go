package microbit

import (
	"context"
	"math"

	"github.com/roach88/pytch/internal/value"
)

// Acceleration is an accelerometer reading in milli-g.
type Acceleration struct {
	X, Y, Z float64
}

// Magnitude is the Euclidean length of the reading.
func (a Acceleration) Magnitude() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
}

// Buttons is the pressed state of the device buttons. Logo is always false
// under ProtocolV1.
type Buttons struct {
	A, B, Logo bool
}

// Any reports whether any button is pressed.
func (b Buttons) Any() bool {
	return b.A || b.B || b.Logo
}

// Device is the typed view of one micro:bit. Construct one per connection
// and pass it to whatever needs it.
type Device struct {
	codec *Codec
}

// NewDevice creates a device over t.
func NewDevice(t Transport, opts ...Option) *Device {
	return &Device{codec: NewCodec(t, opts...)}
}

// Codec returns the underlying variable codec.
func (d *Device) Codec() *Codec {
	return d.codec
}

// Acceleration reads the accelerometer.
func (d *Device) Acceleration(ctx context.Context) (Acceleration, error) {
	vals, err := d.codec.Variable(ctx, VarAccel)
	if err != nil {
		return Acceleration{}, err
	}
	return Acceleration{X: asFloat(vals[0]), Y: asFloat(vals[1]), Z: asFloat(vals[2])}, nil
}

// Buttons reads the button states.
func (d *Device) Buttons(ctx context.Context) (Buttons, error) {
	vals, err := d.codec.Variable(ctx, VarButtons)
	if err != nil {
		return Buttons{}, err
	}
	b := Buttons{A: asBool(vals[0]), B: asBool(vals[1])}
	if len(vals) > 2 {
		b.Logo = asBool(vals[2])
	}
	return b, nil
}

// Gesture reads the current gesture name, e.g. "shake" or "face up".
func (d *Device) Gesture(ctx context.Context) (string, error) {
	vals, err := d.codec.Variable(ctx, VarGesture)
	if err != nil {
		return "", err
	}
	return string(vals[0].(value.String)), nil
}

// Light reads the ambient light level.
func (d *Device) Light(ctx context.Context) (float64, error) {
	return d.scalar(ctx, VarLight)
}

// Sound reads the microphone level. Not available under ProtocolV1.
func (d *Device) Sound(ctx context.Context) (float64, error) {
	return d.scalar(ctx, VarSound)
}

// Temperature reads the temperature in degrees Celsius.
func (d *Device) Temperature(ctx context.Context) (float64, error) {
	return d.scalar(ctx, VarTemp)
}

// Pins reads the pin states as reported by the device.
func (d *Device) Pins(ctx context.Context) ([]string, error) {
	vals, err := d.codec.Variable(ctx, VarPins)
	if err != nil {
		return nil, err
	}
	pins := make([]string, len(vals))
	for i, v := range vals {
		pins[i] = string(v.(value.String))
	}
	return pins, nil
}

func (d *Device) scalar(ctx context.Context, name string) (float64, error) {
	vals, err := d.codec.Variable(ctx, name)
	if err != nil {
		return 0, err
	}
	return asFloat(vals[0]), nil
}

func asFloat(v value.Value) float64 {
	return float64(v.(value.Float))
}

func asBool(v value.Value) bool {
	return bool(v.(value.Bool))
}
