package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightsyr/chimera-go/internal/server"
	chimeratesting "github.com/lightsyr/chimera-go/internal/testing"
	"github.com/lightsyr/chimera-go/pkg/protocol"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// sendCommand writes one text message and returns the single text reply.
func sendCommand(t *testing.T, conn *websocket.Conn, cmd string) string {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(cmd)))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)
	return string(data)
}

func sendFrame(t *testing.T, conn *websocket.Conn, data []byte) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))
}

func TestPingPong(t *testing.T) {
	url, _, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	assert.Equal(t, protocol.ReplyPong, sendCommand(t, conn, "ping"))
}

func TestCommandsAreCaseInsensitive(t *testing.T) {
	url, _, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	assert.Equal(t, protocol.ReplyPong, sendCommand(t, conn, "  PiNg \n"))
}

func TestUnknownCommandIsAcknowledged(t *testing.T) {
	url, _, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	assert.Equal(t, protocol.ReplyUnknown, sendCommand(t, conn, "selfdestruct"))
	// The session is still usable afterwards.
	assert.Equal(t, protocol.ReplyPong, sendCommand(t, conn, "ping"))
}

func TestStatusCommand(t *testing.T) {
	url, _, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	frame := protocol.ButtonFrame(protocol.ButtonStart, true)
	data, err := frame.MarshalBinary()
	require.NoError(t, err)
	sendFrame(t, conn, data)

	// Messages are handled in order, so the reply reflects the press.
	reply := sendCommand(t, conn, "status")
	var st protocol.StatusResponse
	require.NoError(t, json.Unmarshal([]byte(reply), &st))

	assert.NotEmpty(t, st.Session.ID)
	// The snapshot is taken while the status command is still in flight, so
	// it counts as received but not yet processed.
	assert.EqualValues(t, 2, st.Session.Received)
	assert.EqualValues(t, 1, st.Session.Processed)
	assert.EqualValues(t, 0, st.Session.Errors)
	assert.EqualValues(t, 1, st.Server.ActiveSessions)
	assert.EqualValues(t, 1, st.Server.TotalSessions)
	assert.Contains(t, st.Pad.PressedButtons, "Start")
	assert.Equal(t, 1, st.Pad.TouchedButtons)
	assert.Contains(t, st.Pad.Axes, "lx")
}

func TestResetCommand(t *testing.T) {
	url, mock, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	frame := protocol.ButtonFrame(protocol.ButtonA, true)
	data, err := frame.MarshalBinary()
	require.NoError(t, err)
	sendFrame(t, conn, data)

	assert.Equal(t, protocol.ReplyResetOK, sendCommand(t, conn, "reset"))
	assert.True(t, mock.Neutral())
}

func TestInvalidFrameKeepsSessionAlive(t *testing.T) {
	url, mock, _ := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	sendFrame(t, conn, []byte{2, 0, 0, 0})
	assert.Equal(t, protocol.ReplyPong, sendCommand(t, conn, "ping"))
	assert.Equal(t, 0, mock.State().Writes, "invalid frames must not touch the device")
}

func TestRejectBurstTriggersSafetyReset(t *testing.T) {
	url, mock, _ := chimeratesting.StartServer(t, chimeratesting.Options{
		Server: server.Config{FailureBurst: 3},
	})
	conn := dial(t, url)

	pressFrame := protocol.ButtonFrame(protocol.ButtonB, true)
	press, err := pressFrame.MarshalBinary()
	require.NoError(t, err)
	sendFrame(t, conn, press)

	for range 3 {
		sendFrame(t, conn, []byte{9, 9, 9, 9})
	}

	// Ping flushes the pipeline; the burst reset has run once it answers.
	assert.Equal(t, protocol.ReplyPong, sendCommand(t, conn, "ping"))
	assert.True(t, mock.Neutral(), "a malformed-input burst must neutralize the pad")
}

func TestDeviceFailureBurstClosesSession(t *testing.T) {
	url, mock, srv := chimeratesting.StartServer(t, chimeratesting.Options{
		Server: server.Config{FailureBurst: 3},
	})
	conn := dial(t, url)

	require.Eventually(t, func() bool { return srv.ActiveSessions() == 1 },
		time.Second, 5*time.Millisecond)

	mock.Fail(errors.New("device wedged"))
	// Distinct buttons so every frame reaches the device instead of
	// collapsing into no-change.
	for _, b := range []protocol.Button{protocol.ButtonA, protocol.ButtonB, protocol.ButtonX} {
		frame := protocol.ButtonFrame(b, true)
		data, err := frame.MarshalBinary()
		require.NoError(t, err)
		sendFrame(t, conn, data)
	}

	assert.Eventually(t, func() bool { return srv.ActiveSessions() == 0 },
		time.Second, 5*time.Millisecond, "three device failures must close the session")
}

func TestActiveSessionCounting(t *testing.T) {
	url, _, srv := chimeratesting.StartServer(t, chimeratesting.Options{})

	const n = 5
	conns := make([]*websocket.Conn, 0, n)
	for range n {
		conns = append(conns, dial(t, url))
	}
	require.Eventually(t, func() bool { return srv.ActiveSessions() == n },
		time.Second, 5*time.Millisecond)

	for _, conn := range conns[:3] {
		require.NoError(t, conn.Close())
	}
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 2 },
		time.Second, 5*time.Millisecond)

	for _, conn := range conns[3:] {
		require.NoError(t, conn.Close())
	}
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 0 },
		time.Second, 5*time.Millisecond)

	assert.EqualValues(t, n, srv.TotalSessions())
	assert.GreaterOrEqual(t, srv.ActiveSessions(), int64(0))
}

func TestShutdownNeutralizesPad(t *testing.T) {
	url, mock, srv := chimeratesting.StartServer(t, chimeratesting.Options{})
	conn := dial(t, url)

	frame := protocol.ButtonFrame(protocol.ButtonStart, true)
	data, err := frame.MarshalBinary()
	require.NoError(t, err)
	sendFrame(t, conn, data)
	require.Eventually(t, func() bool { return mock.State().Pressed[protocol.ButtonStart] },
		time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	assert.True(t, mock.Neutral(), "the pad must be neutral before Shutdown returns")
	assert.EqualValues(t, 0, srv.ActiveSessions())
}

func TestShutdownIsIdempotent(t *testing.T) {
	url, _, srv := chimeratesting.StartServer(t, chimeratesting.Options{})
	dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, srv.Shutdown(ctx))
	assert.EqualValues(t, 0, srv.ActiveSessions())
}
