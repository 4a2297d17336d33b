package gamepad_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightsyr/chimera-go/internal/device"
	"github.com/lightsyr/chimera-go/internal/gamepad"
	"github.com/lightsyr/chimera-go/pkg/protocol"
)

func TestSetAxisDebounce(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	changed, err := p.SetAxis(protocol.AxisLeftStickX, 0.5)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.SetAxis(protocol.AxisLeftStickX, 0.5)
	require.NoError(t, err)
	assert.False(t, changed, "identical value must be a no-op")

	changed, err = p.SetAxis(protocol.AxisLeftStickX, 0.5004)
	require.NoError(t, err)
	assert.False(t, changed, "sub-tolerance delta must be a no-op")

	changed, err = p.SetAxis(protocol.AxisLeftStickX, 0.502)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 2, m.State().Writes)
}

func TestSetAxisCoalescesStickPair(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	_, err := p.SetAxis(protocol.AxisLeftStickX, 0.5)
	require.NoError(t, err)
	_, err = p.SetAxis(protocol.AxisLeftStickY, -0.25)
	require.NoError(t, err)

	st := m.State()
	assert.Equal(t, 0.5, st.LeftX, "partner coordinate must ride along")
	assert.Equal(t, -0.25, st.LeftY)

	_, err = p.SetAxis(protocol.AxisRightStickY, 1)
	require.NoError(t, err)
	st = m.State()
	assert.Equal(t, 0.0, st.RightX)
	assert.Equal(t, 1.0, st.RightY)
}

func TestSetButtonDebounce(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	changed, err := p.SetButton(protocol.ButtonStart, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, m.State().Pressed[protocol.ButtonStart])

	changed, err = p.SetButton(protocol.ButtonStart, true)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = p.SetButton(protocol.ButtonStart, false)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = p.SetButton(protocol.ButtonStart, false)
	require.NoError(t, err)
	assert.False(t, changed, "releasing a released button is a no-op")
}

func TestReleaseUntouchedButtonLeavesNoTrace(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	changed, err := p.SetButton(protocol.ButtonY, false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, p.Status().TouchedButtons)
	assert.Equal(t, 0, m.State().Writes)
}

func TestReset(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	_, err := p.SetAxis(protocol.AxisLeftStickX, 0.7)
	require.NoError(t, err)
	_, err = p.SetAxis(protocol.AxisRightTrigger, 1)
	require.NoError(t, err)
	_, err = p.SetButton(protocol.ButtonA, true)
	require.NoError(t, err)
	_, err = p.SetButton(protocol.ButtonB, true)
	require.NoError(t, err)
	_, err = p.SetButton(protocol.ButtonB, false)
	require.NoError(t, err)

	require.NoError(t, p.Reset())

	assert.True(t, m.Neutral())
	st := p.Status()
	assert.Empty(t, st.PressedButtons)
	assert.Equal(t, 0, st.TouchedButtons)
	for _, v := range st.Axes {
		assert.Equal(t, 0.0, v)
	}

	// Only buttons that were pressed at reset time get released; B was
	// already up and DPadUp was never touched.
	mock := m.State()
	assert.False(t, mock.Pressed[protocol.ButtonA])
	_, touched := mock.Pressed[protocol.ButtonDPadUp]
	assert.False(t, touched)
}

func TestStatusSnapshot(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)

	_, err := p.SetAxis(protocol.AxisLeftStickX, 0.456572)
	require.NoError(t, err)
	_, err = p.SetButton(protocol.ButtonStart, true)
	require.NoError(t, err)
	_, err = p.SetButton(protocol.ButtonA, true)
	require.NoError(t, err)

	st := p.Status()
	assert.Equal(t, 0.457, st.Axes["lx"], "axis values round to three decimals")
	assert.Equal(t, 0.0, st.Axes["rt"])
	assert.Equal(t, []string{"A", "Start"}, st.PressedButtons, "wire order")
	assert.Equal(t, 2, st.TouchedButtons)
}

func TestDeviceErrorPropagates(t *testing.T) {
	m := device.NewMock()
	p := gamepad.NewPad(m)
	m.Fail(io.ErrClosedPipe)

	changed, err := p.SetAxis(protocol.AxisLeftStickX, 0.5)
	assert.True(t, changed)
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	assert.ErrorIs(t, p.Reset(), io.ErrClosedPipe)
}
