// Package server accepts websocket connections and relays their input onto
// the shared virtual pad. One goroutine serves each session; the translator
// serializes device access across them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lightsyr/chimera-go/internal/gamepad"
)

// Defaults used when Config fields are zero.
const (
	DefaultAddr          = "0.0.0.0:9000"
	DefaultFailureBurst  = 3
	DefaultStatsInterval = time.Minute
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay serves a single trusted client on a local network.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Config tunes the server. Zero values select the defaults.
type Config struct {
	// Addr is the listen address.
	Addr string
	// FailureBurst is how many consecutive malformed inputs trigger a
	// safety reset, and how many consecutive device failures close a
	// session. 0 selects the default; negative disables both.
	FailureBurst int
	// StatsInterval is the period of the aggregate stats log line.
	// Negative disables it.
	StatsInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.FailureBurst == 0 {
		c.FailureBurst = DefaultFailureBurst
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = DefaultStatsInterval
	}
	return c
}

// Server owns the listening endpoint, the active session set and the global
// counters.
type Server struct {
	cfg    Config
	tr     *gamepad.Translator
	logger *slog.Logger

	ln   net.Listener
	http *http.Server

	mu       sync.Mutex
	sessions map[string]*session
	total    int64
	active   int64

	received  atomic.Uint64
	processed atomic.Uint64
	errCount  atomic.Uint64

	started  time.Time
	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New builds a server around the shared translator. Call Start to begin
// accepting connections.
func New(cfg Config, tr *gamepad.Translator, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg.withDefaults(),
		tr:       tr,
		logger:   logger,
		sessions: make(map[string]*session),
		stop:     make(chan struct{}),
	}
}

// Start binds the listen address and serves in the background. A bind
// failure (address in use, permission) is returned immediately.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.started = time.Now()
	s.running.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWS)
	s.http = &http.Server{Handler: mux}

	s.logger.Info("listening", "addr", ln.Addr().String())
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("serve stopped", "error", err)
		}
	}()
	if s.cfg.StatsInterval > 0 {
		go s.statsLoop()
	}
	return nil
}

// Addr returns the bound listen address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.running.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	sess := newSession(s, conn)
	s.register(sess)
	sess.activate()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sess.run()
	}()
}

func (s *Server) register(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
	s.total++
	s.active++
}

// unregister is a no-op for sessions already removed, so the active counter
// can never drop below zero no matter how often a close path runs.
func (s *Server) unregister(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.id]; !ok {
		return
	}
	delete(s.sessions, sess.id)
	s.active--
}

// ActiveSessions returns the number of currently registered sessions.
func (s *Server) ActiveSessions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// TotalSessions returns the number of sessions accepted since start.
func (s *Server) TotalSessions() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Shutdown stops accepting connections, neutralizes the pad, closes every
// session and releases the listener. It is idempotent; repeated calls
// return nil without touching anything again. The context bounds how long
// shutdown waits for session goroutines to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() { err = s.shutdown(ctx) })
	return err
}

func (s *Server) shutdown(ctx context.Context) error {
	s.running.Store(false)
	close(s.stop)
	s.logger.Info("shutting down")

	var errs []error
	// Neutralize first so the pad is safe even if a session close hangs.
	if err := s.tr.Reset(); err != nil {
		errs = append(errs, fmt.Errorf("neutralize pad: %w", err))
	}

	s.mu.Lock()
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()
	for _, sess := range open {
		sess.close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("sessions did not drain: %w", ctx.Err()))
	}

	if s.http != nil {
		if err := s.http.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.logFinalStats()
	return errors.Join(errs...)
}
