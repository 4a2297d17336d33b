package server

import (
	"time"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// serverStatus snapshots the aggregate counters.
func (s *Server) serverStatus() protocol.ServerStatus {
	s.mu.Lock()
	total, active := s.total, s.active
	s.mu.Unlock()
	return protocol.ServerStatus{
		TotalSessions:  total,
		ActiveSessions: active,
		Received:       s.received.Load(),
		Processed:      s.processed.Load(),
		Errors:         s.errCount.Load(),
		StartedAt:      s.started,
		Uptime:         time.Since(s.started).Round(time.Second).String(),
	}
}

// statsLoop periodically logs throughput so long-running relays leave a
// trace of what they did between connects.
func (s *Server) statsLoop() {
	ticker := time.NewTicker(s.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			st := s.serverStatus()
			s.logger.Info("stats",
				"active", st.ActiveSessions,
				"total", st.TotalSessions,
				"received", st.Received,
				"processed", st.Processed,
				"errors", st.Errors,
			)
		}
	}
}

func (s *Server) logFinalStats() {
	st := s.serverStatus()
	s.logger.Info("final stats",
		"total", st.TotalSessions,
		"received", st.Received,
		"processed", st.Processed,
		"errors", st.Errors,
		"uptime", st.Uptime,
	)
}
