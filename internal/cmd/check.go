package cmd

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lightsyr/chimera-go/internal/device"
)

// Check probes the environment the serve command needs: the virtual device
// backend, the listen address and platform prerequisites. It exits non-zero
// when any probe fails, so it can gate service startup in scripts.
type Check struct {
	Addr       string `help:"Listen address to probe" default:"0.0.0.0:9000" env:"CHIMERA_ADDR"`
	Device     string `help:"Device backend to probe: auto, uinput, null" default:"auto" env:"CHIMERA_DEVICE"`
	DeviceName string `help:"Device name used for the probe" default:"chimera check probe" env:"CHIMERA_DEVICE_NAME"`
	Format     string `help:"Output format" default:"text" enum:"text,yaml"`
}

// CheckResult is one probe outcome. It marshals to the yaml report.
type CheckResult struct {
	Name   string `yaml:"name"`
	OK     bool   `yaml:"ok"`
	Detail string `yaml:"detail,omitempty"`
}

// Run is called by kong when the check command is executed.
func (c *Check) Run(logger *slog.Logger) error {
	results := platformChecks(c.Device)
	results = append(results, c.checkDevice(), c.checkListen())

	failed := 0
	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	switch c.Format {
	case "yaml":
		report := struct {
			Checks []CheckResult `yaml:"checks"`
			Failed int           `yaml:"failed"`
		}{Checks: results, Failed: failed}
		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
	default:
		for _, r := range results {
			mark := "ok  "
			if !r.OK {
				mark = "FAIL"
			}
			line := fmt.Sprintf("%s %s", mark, r.Name)
			if r.Detail != "" {
				line += ": " + r.Detail
			}
			fmt.Println(line)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	logger.Debug("environment checks passed", "count", len(results))
	return nil
}

// checkDevice acquires and immediately releases the configured backend, the
// same call path serve uses at startup.
func (c *Check) checkDevice() CheckResult {
	r := CheckResult{Name: "device backend (" + c.Device + ")"}
	dev, err := device.Open(c.Device, c.DeviceName)
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	_ = dev.Close()
	r.OK = true
	return r
}

// checkListen binds the listen address and releases it again. This catches
// both a busy port and missing bind permissions.
func (c *Check) checkListen() CheckResult {
	r := CheckResult{Name: "listen address " + c.Addr}
	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	_ = ln.Close()
	r.OK = true
	return r
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
