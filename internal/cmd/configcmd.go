package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/lightsyr/chimera-go/internal/configpaths"
)

// ConfigInit writes a starter TOML configuration file holding the effective
// defaults, so operators can edit values instead of memorizing flags.
type ConfigInit struct {
	Path  string `help:"Where to write the file (default: the user config dir)"`
	Force bool   `help:"Overwrite an existing file"`
}

// starterConfig mirrors the flag tree; kong resolves "log.level" and
// "serve.addr" style keys from the nested tables.
type starterConfig struct {
	Log struct {
		Level string `toml:"level" comment:"trace, debug, info, warn, error"`
		File  string `toml:"file" comment:"log file path; empty logs only to console"`
	} `toml:"log"`
	Serve struct {
		Addr            string  `toml:"addr"`
		Device          string  `toml:"device" comment:"auto, uinput, null"`
		DeviceName      string  `toml:"device-name"`
		MaxUpdateRate   int     `toml:"max-update-rate" comment:"applied updates per second per session"`
		Deadzone        float64 `toml:"deadzone"`
		FailureBurst    int     `toml:"failure-burst"`
		StatsInterval   string  `toml:"stats-interval" comment:"0 disables the periodic stats line"`
		ShutdownTimeout string  `toml:"shutdown-timeout"`
	} `toml:"serve"`
}

func defaults() starterConfig {
	var c starterConfig
	c.Log.Level = "info"
	c.Serve.Addr = "0.0.0.0:9000"
	c.Serve.Device = "auto"
	c.Serve.DeviceName = "chimera virtual pad"
	c.Serve.MaxUpdateRate = 120
	c.Serve.Deadzone = 0.08
	c.Serve.FailureBurst = 3
	c.Serve.StatsInterval = "60s"
	c.Serve.ShutdownTimeout = "10s"
	return c
}

// Run is called by kong when the config init command is executed.
func (c *ConfigInit) Run(logger *slog.Logger) error {
	path := c.Path
	if path == "" {
		var err error
		path, err = configpaths.DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("no default config location: %w", err)
		}
	}
	if !c.Force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	body, err := toml.Marshal(defaults())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return err
	}
	logger.Info("wrote configuration", "path", path)
	return nil
}
