package server

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// handleCommand dispatches one text message. Commands are matched
// case-insensitively after trimming; unknown commands are acknowledged, not
// treated as errors. The returned error is a transport write failure.
func (s *session) handleCommand(raw string) error {
	s.received++
	s.srv.received.Add(1)

	cmd := strings.ToLower(strings.TrimSpace(raw))
	s.logger.Debug("command", "cmd", cmd)

	switch cmd {
	case protocol.CmdPing:
		s.markProcessed()
		return s.reply(protocol.ReplyPong)

	case protocol.CmdStatus:
		st := s.statusSnapshot()
		data, err := json.Marshal(st)
		if err != nil {
			s.markError()
			return s.reply("status failed: " + err.Error())
		}
		s.markProcessed()
		return s.reply(string(data))

	case protocol.CmdReset:
		if err := s.srv.tr.Reset(); err != nil {
			s.markError()
			s.logger.Error("reset command failed", "error", err)
			return s.reply("reset failed: " + err.Error())
		}
		s.markProcessed()
		return s.reply(protocol.ReplyResetOK)

	default:
		s.markProcessed()
		return s.reply(protocol.ReplyUnknown)
	}
}

func (s *session) markProcessed() {
	s.processed++
	s.srv.processed.Add(1)
}

func (s *session) markError() {
	s.errCount++
	s.srv.errCount.Add(1)
}

func (s *session) reply(text string) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// statusSnapshot combines this session's counters, the server aggregates
// and the pad state.
func (s *session) statusSnapshot() protocol.StatusResponse {
	return protocol.StatusResponse{
		Session: protocol.SessionStatus{
			ID:          s.id,
			Remote:      s.conn.RemoteAddr().String(),
			ConnectedAt: s.connectedAt,
			Received:    s.received,
			Processed:   s.processed,
			Errors:      s.errCount,
		},
		Server: s.srv.serverStatus(),
		Pad:    s.srv.tr.Status(),
	}
}
