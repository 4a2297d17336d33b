// Package cmd implements the chimera subcommands invoked by kong.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lightsyr/chimera-go/internal/device"
	"github.com/lightsyr/chimera-go/internal/gamepad"
	"github.com/lightsyr/chimera-go/internal/server"
)

// Serve runs the relay: acquire the virtual pad, bind the listen address and
// translate client input until interrupted.
type Serve struct {
	Addr            string        `help:"Listen address" default:"0.0.0.0:9000" env:"CHIMERA_ADDR"`
	Device          string        `help:"Device backend: auto, uinput, null" default:"auto" env:"CHIMERA_DEVICE"`
	DeviceName      string        `help:"Device name presented to the OS" default:"chimera virtual pad" env:"CHIMERA_DEVICE_NAME"`
	MaxUpdateRate   int           `help:"Maximum applied updates per second per session" default:"120" env:"CHIMERA_MAX_UPDATE_RATE"`
	Deadzone        float64       `help:"Stick deadzone magnitude (0-1)" default:"0.08" env:"CHIMERA_DEADZONE"`
	FailureBurst    int           `help:"Consecutive failures before the safety reset kicks in" default:"3" env:"CHIMERA_FAILURE_BURST"`
	StatsInterval   time.Duration `help:"Period of the aggregate stats log line (0 disables)" default:"60s" env:"CHIMERA_STATS_INTERVAL"`
	ShutdownTimeout time.Duration `help:"How long shutdown waits for sessions to drain" default:"10s" env:"CHIMERA_SHUTDOWN_TIMEOUT"`
}

// Run is called by kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := device.Open(s.Device, s.DeviceName)
	if err != nil {
		return fmt.Errorf("acquire virtual pad: %w", err)
	}
	defer func() { _ = dev.Close() }()
	logger.Info("virtual pad acquired", "backend", s.Device, "name", s.DeviceName)

	var minInterval time.Duration
	if s.MaxUpdateRate > 0 {
		minInterval = time.Second / time.Duration(s.MaxUpdateRate)
	}
	tr := gamepad.NewTranslator(gamepad.NewPad(dev), gamepad.Config{
		Deadzone:    s.Deadzone,
		MinInterval: minInterval,
	})

	statsInterval := s.StatsInterval
	if statsInterval <= 0 {
		statsInterval = -1
	}
	srv := server.New(server.Config{
		Addr:          s.Addr,
		FailureBurst:  s.FailureBurst,
		StatsInterval: statsInterval,
	}, tr, logger)
	if err := srv.Start(); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("address %s is already in use, is another relay running? (%w)", s.Addr, err)
		}
		return err
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
