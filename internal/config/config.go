// Package config defines the CLI structure and configuration for chimera.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/lightsyr/chimera-go/internal/cmd"
)

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"CHIMERA_LOG_LEVEL"`
	File  string `help:"Log file path (default: none; logs only to console)" env:"CHIMERA_LOG_FILE"`
}

// CLI is the root command structure for kong parsing.
type CLI struct {
	Log `embed:"" prefix:"log."`

	ConfigFile string           `name:"config" help:"Path to a configuration file" env:"CHIMERA_CONFIG"`
	Version    kong.VersionFlag `help:"Print version information and quit"`

	Serve  cmd.Serve `cmd:"" help:"Start the gamepad relay server"`
	Check  cmd.Check `cmd:"" help:"Check the environment without starting the server"`
	Config struct {
		Init cmd.ConfigInit `cmd:"" help:"Write a starter configuration file with the current defaults"`
	} `cmd:"" help:"Configuration file helpers"`
}
