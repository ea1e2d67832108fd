package microbit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pytch/internal/testutil"
)

func TestDevice_Acceleration(t *testing.T) {
	fake := testutil.NewFakeTransport().SetVariable(VarAccel, "3", "4", "12")
	d := NewDevice(fake, quiet())

	a, err := d.Acceleration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Acceleration{X: 3, Y: 4, Z: 12}, a)
	assert.InDelta(t, 13.0, a.Magnitude(), 1e-9)
}

func TestDevice_Buttons(t *testing.T) {
	fake := testutil.NewFakeTransport().SetVariable(VarButtons, "False", "False", "True")
	b, err := NewDevice(fake, quiet()).Buttons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Buttons{Logo: true}, b)
	assert.True(t, b.Any())
	assert.False(t, Buttons{}.Any())
}

func TestDevice_ButtonsV1(t *testing.T) {
	fake := testutil.NewFakeTransport().SetVariable(VarButtons, "False", "True")
	b, err := NewDevice(fake, quiet(), WithProtocol(ProtocolV1)).Buttons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Buttons{B: true}, b)
}

func TestDevice_Scalars(t *testing.T) {
	fake := testutil.NewFakeTransport().
		SetVariable(VarGesture, "shake").
		SetVariable(VarLight, "200").
		SetVariable(VarSound, "12").
		SetVariable(VarTemp, "19").
		SetVariable(VarPins, "0", "1", "0")
	d := NewDevice(fake, quiet())
	ctx := context.Background()

	g, err := d.Gesture(ctx)
	require.NoError(t, err)
	assert.Equal(t, "shake", g)

	l, err := d.Light(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, l)

	s, err := d.Sound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, s)

	temp, err := d.Temperature(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19.0, temp)

	pins, err := d.Pins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "0"}, pins)
}

func TestDevice_NoCaching(t *testing.T) {
	fake := testutil.NewFakeTransport().Expect(
		testutil.Exchange{Op: "var", Args: []string{VarTemp}, Response: []string{"20"}},
		testutil.Exchange{Op: "var", Args: []string{VarTemp}, Response: []string{"21"}},
	)
	d := NewDevice(fake, quiet())

	first, err := d.Temperature(context.Background())
	require.NoError(t, err)
	second, err := d.Temperature(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20.0, first)
	assert.Equal(t, 21.0, second)
	assert.Equal(t, 2, fake.CallCount())
}
