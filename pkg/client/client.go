// Package client is a typed Go client for the chimera relay.
//
// Binary input frames are fire-and-forget; text commands block for their
// single reply. A Client is not safe for concurrent use.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// DefaultTimeout bounds command replies and writes.
const DefaultTimeout = 10 * time.Second

// Client holds one websocket connection to a relay.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to a relay. The URL uses the ws scheme, e.g.
// ws://127.0.0.1:9000/.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn, timeout: DefaultTimeout}, nil
}

// SendAxis sends one raw axis value. The server normalizes and applies its
// deadzone; nothing is echoed back.
func (c *Client) SendAxis(a protocol.Axis, value int16) error {
	f := protocol.AxisFrame(a, value)
	return c.sendFrame(&f)
}

// SendButton sends one button press or release.
func (c *Client) SendButton(b protocol.Button, pressed bool) error {
	f := protocol.ButtonFrame(b, pressed)
	return c.sendFrame(&f)
}

func (c *Client) sendFrame(f *protocol.Frame) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// command sends one text command and waits for its text reply.
func (c *Client) command(cmd string) (string, error) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(cmd)); err != nil {
		return "", fmt.Errorf("send %q: %w", cmd, err)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("reply to %q: %w", cmd, err)
		}
		if msgType == websocket.TextMessage {
			return string(data), nil
		}
	}
}

// Ping checks the connection round-trip.
func (c *Client) Ping() error {
	reply, err := c.command(protocol.CmdPing)
	if err != nil {
		return err
	}
	if reply != protocol.ReplyPong {
		return fmt.Errorf("unexpected ping reply %q", reply)
	}
	return nil
}

// Status fetches the combined session/server/pad snapshot.
func (c *Client) Status() (*protocol.StatusResponse, error) {
	reply, err := c.command(protocol.CmdStatus)
	if err != nil {
		return nil, err
	}
	var st protocol.StatusResponse
	if err := json.Unmarshal([]byte(reply), &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

// Reset asks the server to neutralize the pad. Server-side failures come
// back as the reply text.
func (c *Client) Reset() error {
	reply, err := c.command(protocol.CmdReset)
	if err != nil {
		return err
	}
	if reply != protocol.ReplyResetOK {
		return fmt.Errorf("reset: %s", reply)
	}
	return nil
}

// Close performs the websocket close handshake and drops the connection.
// The server neutralizes the pad when it sees the connection go away.
func (c *Client) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
