package device

import (
	"sync"

	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// Mock records every call for assertions in tests. It is safe for
// concurrent use so tests can inspect it while a server is serving.
type Mock struct {
	mu      sync.Mutex
	err     error
	state   MockState
	pressed map[protocol.Button]bool
	closed  bool
}

// MockState is a copy of the mock's recorded state.
type MockState struct {
	LeftX, LeftY   float64
	RightX, RightY float64
	LeftTrigger    float64
	RightTrigger   float64
	Pressed        map[protocol.Button]bool
	Writes         int
	Flushes        int
}

var _ Device = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{pressed: make(map[protocol.Button]bool)}
}

// Fail makes every subsequent call return err. Fail(nil) heals the device.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// State returns a snapshot of everything recorded so far.
func (m *Mock) State() MockState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	st.Pressed = make(map[protocol.Button]bool, len(m.pressed))
	for b, p := range m.pressed {
		st.Pressed[b] = p
	}
	return st
}

// Flushes returns how many Flush calls the mock has seen.
func (m *Mock) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Flushes
}

// Neutral reports whether all axes are centered and no button is pressed.
func (m *Mock) Neutral() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pressed {
		if p {
			return false
		}
	}
	return m.state.LeftX == 0 && m.state.LeftY == 0 &&
		m.state.RightX == 0 && m.state.RightY == 0 &&
		m.state.LeftTrigger == 0 && m.state.RightTrigger == 0
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) SetLeftStick(x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.LeftX, m.state.LeftY = x, y
	m.state.Writes++
	return nil
}

func (m *Mock) SetRightStick(x, y float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.RightX, m.state.RightY = x, y
	m.state.Writes++
	return nil
}

func (m *Mock) SetLeftTrigger(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.LeftTrigger = v
	m.state.Writes++
	return nil
}

func (m *Mock) SetRightTrigger(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.RightTrigger = v
	m.state.Writes++
	return nil
}

func (m *Mock) PressButton(b protocol.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pressed[b] = true
	m.state.Writes++
	return nil
}

func (m *Mock) ReleaseButton(b protocol.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pressed[b] = false
	m.state.Writes++
	return nil
}

func (m *Mock) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.state.Flushes++
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
