// Package device abstracts the OS-level virtual game controller the relay
// drives. Backends register themselves by name; the server opens one at
// startup and fails fast when none can be acquired.
package device

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

var (
	// ErrUnknownBackend is returned by Open for backend names nothing
	// registered under.
	ErrUnknownBackend = errors.New("unknown device backend")
	// ErrUnsupported is returned when "auto" finds no native backend for
	// the running platform.
	ErrUnsupported = errors.New("no native device backend on this platform")
)

// Device is one virtual game controller. Stick coordinates are -1..1,
// trigger values 0..1. Implementations are internally synchronized; callers
// still must not interleave logically-related calls from multiple
// goroutines, the translator serializes those.
type Device interface {
	SetLeftStick(x, y float64) error
	SetRightStick(x, y float64) error
	SetLeftTrigger(v float64) error
	SetRightTrigger(v float64) error
	PressButton(b protocol.Button) error
	ReleaseButton(b protocol.Button) error
	// Flush commits buffered state as one report. Backends that apply
	// writes immediately may treat this as a no-op.
	Flush() error
	Close() error
}

// Open acquires a device from the named backend. The empty string and
// "auto" select the platform's native backend and fail with ErrUnsupported
// when there is none.
func Open(backend, name string) (Device, error) {
	b := strings.ToLower(strings.TrimSpace(backend))
	if b == "" || b == "auto" {
		if open := lookup("uinput"); open != nil {
			return open(name)
		}
		return nil, fmt.Errorf("%w (%s/%s)", ErrUnsupported, runtime.GOOS, runtime.GOARCH)
	}
	open := lookup(b)
	if open == nil {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, backend, strings.Join(Backends(), ", "))
	}
	return open(name)
}
