package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lightsyr/chimera-go/internal/gamepad"
	"github.com/lightsyr/chimera-go/internal/log"
)

const (
	// Frames are 4 bytes and commands are single words; anything bigger
	// is not ours.
	maxMessageSize = 512
	writeWait      = 10 * time.Second
)

// Session lifecycle states.
const (
	stateConnecting int32 = iota
	stateActive
	stateClosing
	stateClosed
)

func stateName(st int32) string {
	switch st {
	case stateConnecting:
		return "connecting"
	case stateActive:
		return "active"
	case stateClosing:
		return "closing"
	case stateClosed:
		return "closed"
	}
	return "unknown"
}

// session owns one client connection: it reads messages, routes binary
// frames into the translator and text commands into the command table, and
// guarantees the pad is neutralized when the connection goes away.
type session struct {
	id     string
	srv    *Server
	conn   *websocket.Conn
	logger *slog.Logger
	lim    *gamepad.Limiter
	state  atomic.Int32

	// Owned by the session goroutine; the status command reads them from
	// the same goroutine, so no locking.
	connectedAt time.Time
	received    uint64
	processed   uint64
	errCount    uint64

	rejectStreak int
	fatalStreak  int

	closeOnce sync.Once
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	id := uuid.NewString()
	return &session{
		id:          id,
		srv:         srv,
		conn:        conn,
		logger:      srv.logger.With("session", id, "remote", conn.RemoteAddr().String()),
		lim:         srv.tr.NewLimiter(),
		connectedAt: time.Now(),
	}
}

func (s *session) setState(st int32) {
	old := s.state.Swap(st)
	if old != st {
		s.logger.Debug("session state", "from", stateName(old), "to", stateName(st))
	}
}

// activate marks the handshake complete. The caller registers the session
// first so counters and the state agree.
func (s *session) activate() {
	s.setState(stateActive)
	s.logger.Info("session connected")
}

// run reads messages until the connection closes or a device failure burst
// forces the session out. Messages are handled strictly in arrival order.
func (s *session) run() {
	defer s.close()
	s.conn.SetReadLimit(maxMessageSize)

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn("connection lost", "error", err)
			} else {
				s.logger.Debug("connection closed", "error", err)
			}
			return
		}
		switch msgType {
		case websocket.BinaryMessage:
			if err := s.handleFrame(data); err != nil {
				s.logger.Error("closing session", "error", err)
				return
			}
		case websocket.TextMessage:
			if err := s.handleCommand(string(data)); err != nil {
				s.logger.Warn("write reply failed", "error", err)
				return
			}
		default:
			// Control frames never surface here; anything else is not
			// part of the protocol.
			s.logger.Debug("ignoring message", "type", msgType)
		}
	}
}

// handleFrame feeds one binary frame through the translator and keeps the
// failure-burst counters. The returned error is non-nil only when the
// session must die.
func (s *session) handleFrame(data []byte) error {
	s.received++
	s.srv.received.Add(1)

	res := s.srv.tr.Apply(s.lim, data)
	s.logger.Log(context.Background(), log.LevelTrace, "frame", "data", fmt.Sprintf("%x", data), "outcome", res.Outcome.String())

	switch res.Outcome {
	case gamepad.Applied, gamepad.NoChange:
		s.processed++
		s.srv.processed.Add(1)
		s.rejectStreak = 0
		s.fatalStreak = 0

	case gamepad.Rejected:
		s.errCount++
		s.srv.errCount.Add(1)
		s.fatalStreak = 0
		s.rejectStreak++
		s.logger.Warn("dropped invalid frame", "reason", res.Reason)
		if s.srv.cfg.FailureBurst > 0 && s.rejectStreak >= s.srv.cfg.FailureBurst {
			s.rejectStreak = 0
			s.logger.Warn("malformed input burst, neutralizing pad")
			if err := s.srv.tr.Reset(); err != nil {
				s.logger.Error("neutralize failed", "error", err)
			}
		}

	case gamepad.Fatal:
		s.errCount++
		s.srv.errCount.Add(1)
		s.rejectStreak = 0
		s.fatalStreak++
		s.logger.Error("device update failed", "error", res.Err)
		if s.srv.cfg.FailureBurst > 0 && s.fatalStreak >= s.srv.cfg.FailureBurst {
			return fmt.Errorf("%d consecutive device failures: %w", s.fatalStreak, res.Err)
		}
	}
	return nil
}

// close tears the session down exactly once: neutralize the pad
// (best-effort), unregister, close the socket. Safe to call from both the
// session goroutine and server shutdown.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.setState(stateClosing)
		if err := s.srv.tr.Reset(); err != nil {
			s.logger.Warn("neutralize on close failed", "error", err)
		}
		s.srv.unregister(s)
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
		s.setState(stateClosed)
		s.logger.Info("session closed", "duration", time.Since(s.connectedAt).Round(time.Millisecond))
	})
}
