package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/3DRX/vaporplay/uinput"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

func init() {
	Register("uinput", openUinput)
}

const uinputPath = "/dev/uinput"

// Xbox 360 vendor/product IDs so consumers pick a well-known mapping.
const (
	uinputVendor  = 0x045E
	uinputProduct = 0x028E
)

var uinputButtons = map[protocol.Button]int{
	protocol.ButtonA:             uinput.ButtonSouth,
	protocol.ButtonB:             uinput.ButtonEast,
	protocol.ButtonX:             uinput.ButtonNorth,
	protocol.ButtonY:             uinput.ButtonWest,
	protocol.ButtonLeftShoulder:  uinput.ButtonBumperLeft,
	protocol.ButtonRightShoulder: uinput.ButtonBumperRight,
	protocol.ButtonBack:          uinput.ButtonSelect,
	protocol.ButtonStart:         uinput.ButtonStart,
	protocol.ButtonLeftThumb:     uinput.ButtonThumbLeft,
	protocol.ButtonRightThumb:    uinput.ButtonThumbRight,
	protocol.ButtonDPadUp:        uinput.ButtonDpadUp,
	protocol.ButtonDPadDown:      uinput.ButtonDpadDown,
	protocol.ButtonDPadLeft:      uinput.ButtonDpadLeft,
	protocol.ButtonDPadRight:     uinput.ButtonDpadRight,
}

var errDeviceClosed = errors.New("uinput gamepad is closed")

// uinputPad drives a kernel-level virtual gamepad through /dev/uinput.
type uinputPad struct {
	mu     sync.Mutex
	pad    uinput.Gamepad
	closed bool
}

var _ Device = (*uinputPad)(nil)

func openUinput(name string) (Device, error) {
	pad, err := uinput.CreateGamepad(uinputPath, []byte(name), uinputVendor, uinputProduct)
	if err != nil {
		return nil, fmt.Errorf("create uinput gamepad: %w", err)
	}
	return &uinputPad{pad: pad}, nil
}

func (u *uinputPad) SetLeftStick(x, y float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	return u.pad.LeftStickMove(float32(x), float32(y))
}

func (u *uinputPad) SetRightStick(x, y float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	return u.pad.RightStickMove(float32(x), float32(y))
}

func (u *uinputPad) SetLeftTrigger(v float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	// uinput trigger force spans -1..1.
	return u.pad.LeftTriggerForce(float32(v*2 - 1))
}

func (u *uinputPad) SetRightTrigger(v float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	return u.pad.RightTriggerForce(float32(v*2 - 1))
}

func (u *uinputPad) PressButton(b protocol.Button) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	code, ok := uinputButtons[b]
	if !ok {
		return fmt.Errorf("no uinput code for button %s", b)
	}
	return u.pad.ButtonDown(code)
}

func (u *uinputPad) ReleaseButton(b protocol.Button) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	code, ok := uinputButtons[b]
	if !ok {
		return fmt.Errorf("no uinput code for button %s", b)
	}
	return u.pad.ButtonUp(code)
}

// Flush is a no-op: uinput emits a SYN_REPORT after every event write, so
// there is nothing left to batch.
func (u *uinputPad) Flush() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errDeviceClosed
	}
	return nil
}

func (u *uinputPad) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil
	}
	u.closed = true
	return u.pad.Close()
}
