package gamepad_test

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightsyr/chimera-go/internal/device"
	"github.com/lightsyr/chimera-go/internal/gamepad"
	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// newTranslator returns a translator whose rate limit never bites, so tests
// can send back-to-back frames.
func newTranslator(m *device.Mock) *gamepad.Translator {
	return gamepad.NewTranslator(gamepad.NewPad(m), gamepad.Config{MinInterval: time.Nanosecond})
}

func TestApplyAxisFrame(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	res := tr.Apply(lim, []byte{0, 0, 0x00, 0x40})
	assert.Equal(t, gamepad.Applied, res.Outcome)

	st := m.State()
	assert.InDelta(t, 0.4565, st.LeftX, 0.001)
	assert.Equal(t, 1, st.Flushes)
}

func TestApplyTriggerFrame(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	frame := protocol.AxisFrame(protocol.AxisLeftTrigger, 32767)
	data, err := frame.MarshalBinary()
	require.NoError(t, err)

	res := tr.Apply(lim, data)
	assert.Equal(t, gamepad.Applied, res.Outcome)
	assert.Equal(t, 1.0, m.State().LeftTrigger)

	// Negative raw clamps to released.
	frame = protocol.AxisFrame(protocol.AxisLeftTrigger, -32768)
	data, err = frame.MarshalBinary()
	require.NoError(t, err)
	res = tr.Apply(lim, data)
	assert.Equal(t, gamepad.Applied, res.Outcome)
	assert.Equal(t, 0.0, m.State().LeftTrigger)
}

func TestApplyButtonPressRelease(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	res := tr.Apply(lim, []byte{1, 7, 1, 0})
	assert.Equal(t, gamepad.Applied, res.Outcome)
	assert.True(t, m.State().Pressed[protocol.ButtonStart])

	res = tr.Apply(lim, []byte{1, 7, 0, 0})
	assert.Equal(t, gamepad.Applied, res.Outcome)
	assert.False(t, m.State().Pressed[protocol.ButtonStart])

	res = tr.Apply(lim, []byte{1, 7, 0, 0})
	assert.Equal(t, gamepad.NoChange, res.Outcome)
	assert.Equal(t, 2, m.Flushes())
}

func TestButtonValueOtherThanOneReleases(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	require.Equal(t, gamepad.Applied, tr.Apply(lim, []byte{1, 0, 1, 0}).Outcome)
	// Value 2 is not "pressed".
	res := tr.Apply(lim, []byte{1, 0, 2, 0})
	assert.Equal(t, gamepad.Applied, res.Outcome)
	assert.False(t, m.State().Pressed[protocol.ButtonA])
}

func TestApplyRejectsMalformedFrames(t *testing.T) {
	type testCase struct {
		name string
		data []byte
	}

	cases := []testCase{
		{name: "empty", data: nil},
		{name: "short", data: []byte{0, 0, 0}},
		{name: "long", data: []byte{0, 0, 0, 0, 0}},
		{name: "unknown kind", data: []byte{2, 0, 0, 0}},
		{name: "axis index out of range", data: []byte{0, 6, 0, 0}},
		{name: "button index out of range", data: []byte{1, 14, 1, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := device.NewMock()
			tr := newTranslator(m)
			lim := tr.NewLimiter()

			res := tr.Apply(lim, tc.data)
			assert.Equal(t, gamepad.Rejected, res.Outcome)
			assert.NotEmpty(t, res.Reason)

			st := m.State()
			assert.Equal(t, 0, st.Writes, "rejected frames must not touch the device")
			assert.Equal(t, 0, st.Flushes)
		})
	}
}

func TestApplyDuplicateValueNoFlush(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	data := []byte{0, 0, 0x00, 0x40}
	require.Equal(t, gamepad.Applied, tr.Apply(lim, data).Outcome)
	assert.Equal(t, gamepad.NoChange, tr.Apply(lim, data).Outcome)
	assert.Equal(t, 1, m.Flushes(), "duplicate value must not flush again")
}

func TestRateLimitCollapsesBurst(t *testing.T) {
	m := device.NewMock()
	tr := gamepad.NewTranslator(gamepad.NewPad(m), gamepad.Config{MinInterval: time.Hour})
	lim := tr.NewLimiter()

	require.Equal(t, gamepad.Applied, tr.Apply(lim, []byte{0, 0, 0x00, 0x40}).Outcome)

	// Inside the window: silently accepted, nothing applied.
	res := tr.Apply(lim, []byte{0, 0, 0x00, 0xC0})
	assert.Equal(t, gamepad.NoChange, res.Outcome)
	assert.Equal(t, 1, m.Flushes())
	assert.Greater(t, m.State().LeftX, 0.0, "second value must not win inside the window")
}

func TestRateLimitIsPerSession(t *testing.T) {
	m := device.NewMock()
	tr := gamepad.NewTranslator(gamepad.NewPad(m), gamepad.Config{MinInterval: time.Hour})

	lim1 := tr.NewLimiter()
	lim2 := tr.NewLimiter()

	require.Equal(t, gamepad.Applied, tr.Apply(lim1, []byte{0, 0, 0x00, 0x40}).Outcome)
	res := tr.Apply(lim2, []byte{0, 0, 0x00, 0xC0})
	assert.Equal(t, gamepad.Applied, res.Outcome, "a fresh session is not limited by another")
	assert.Equal(t, 2, m.Flushes())
}

func TestDeviceFailureIsFatal(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	m.Fail(io.ErrClosedPipe)
	res := tr.Apply(lim, []byte{1, 0, 1, 0})
	assert.Equal(t, gamepad.Fatal, res.Outcome)
	assert.ErrorIs(t, res.Err, io.ErrClosedPipe)
}

func TestTranslatorResetAndStatus(t *testing.T) {
	m := device.NewMock()
	tr := newTranslator(m)
	lim := tr.NewLimiter()

	require.Equal(t, gamepad.Applied, tr.Apply(lim, []byte{1, 7, 1, 0}).Outcome)
	require.Equal(t, gamepad.Applied, tr.Apply(lim, []byte{0, 4, 0xFF, 0x7F}).Outcome)

	st := tr.Status()
	assert.Equal(t, []string{"Start"}, st.PressedButtons)
	assert.Equal(t, 1.0, st.Axes["lt"])

	require.NoError(t, tr.Reset())
	assert.True(t, m.Neutral())
	assert.Empty(t, tr.Status().PressedButtons)
}
