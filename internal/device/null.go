package device

import "github.com/lightsyr/chimera-go/pkg/protocol"

func init() {
	Register("null", func(string) (Device, error) { return Null{}, nil })
}

// Null discards all input. It lets the relay run end to end on machines
// without /dev/uinput access, for soak tests and client development.
type Null struct{}

var _ Device = Null{}

func (Null) SetLeftStick(x, y float64) error { return nil }

func (Null) SetRightStick(x, y float64) error { return nil }

func (Null) SetLeftTrigger(v float64) error { return nil }

func (Null) SetRightTrigger(v float64) error { return nil }

func (Null) PressButton(b protocol.Button) error { return nil }

func (Null) ReleaseButton(b protocol.Button) error { return nil }

func (Null) Flush() error { return nil }

func (Null) Close() error { return nil }
