// Package testing provides cross-package helpers for integration tests.
package testing

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/lightsyr/chimera-go/internal/device"
	"github.com/lightsyr/chimera-go/internal/gamepad"
	"github.com/lightsyr/chimera-go/internal/server"
)

// Options tunes the server under test. Zero values select test-friendly
// defaults: a free loopback port and a rate limit that never bites.
type Options struct {
	Server     server.Config
	Translator gamepad.Config
}

// StartServer runs a relay on a free port backed by a mock device and
// registers shutdown with t.Cleanup. It returns the websocket URL, the mock
// for assertions and the server for counter/shutdown checks.
func StartServer(t *testing.T, opts Options) (url string, mock *device.Mock, srv *server.Server) {
	t.Helper()

	if opts.Server.Addr == "" {
		opts.Server.Addr = "127.0.0.1:0"
	}
	if opts.Server.StatsInterval == 0 {
		opts.Server.StatsInterval = -1
	}
	if opts.Translator.MinInterval == 0 {
		opts.Translator.MinInterval = time.Nanosecond
	}

	mock = device.NewMock()
	tr := gamepad.NewTranslator(gamepad.NewPad(mock), opts.Translator)
	srv = server.New(opts.Server, tr, slog.Default())
	if err := srv.Start(); err != nil {
		t.Fatalf("server start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "ws://" + srv.Addr().String() + "/", mock, srv
}
