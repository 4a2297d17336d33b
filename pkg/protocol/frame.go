package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FrameSize is the exact length of a binary input frame.
const FrameSize = 4

var (
	// ErrFrameSize is returned for payloads that are not exactly FrameSize
	// bytes long.
	ErrFrameSize = errors.New("input frame must be 4 bytes")
	// ErrInvalidFrame is wrapped by all field validation failures.
	ErrInvalidFrame = errors.New("invalid input frame")
)

// Frame is the wire format for one input event sent from client to server.
// Total size: 4 bytes (fixed).
// Layout:
//
//	Kind: 1 byte (0 = axis, 1 = button)
//	Index: 1 byte (0-5 for axis, 0-13 for button)
//	Value: 2 bytes (LE int16)
//
// For axes, Value spans the full int16 range and is normalized server-side.
// For buttons, a Value of exactly 1 means pressed and anything else released.
type Frame struct {
	Kind  Kind
	Index uint8
	Value int16
}

// MarshalBinary encodes Frame to 4 bytes.
func (f *Frame) MarshalBinary() ([]byte, error) {
	b := make([]byte, FrameSize)
	b[0] = byte(f.Kind)
	b[1] = f.Index
	binary.LittleEndian.PutUint16(b[2:4], uint16(f.Value))
	return b, nil
}

// UnmarshalBinary decodes 4 bytes into Frame. Payloads of any other length
// are rejected whole rather than truncated.
func (f *Frame) UnmarshalBinary(data []byte) error {
	if len(data) != FrameSize {
		return ErrFrameSize
	}
	f.Kind = Kind(data[0])
	f.Index = data[1]
	f.Value = int16(binary.LittleEndian.Uint16(data[2:4]))
	return nil
}

// Validate checks the decoded fields against the wire tables.
func (f *Frame) Validate() error {
	switch f.Kind {
	case KindAxis:
		if !Axis(f.Index).Valid() {
			return fmt.Errorf("%w: axis index %d out of range", ErrInvalidFrame, f.Index)
		}
	case KindButton:
		if !Button(f.Index).Valid() {
			return fmt.Errorf("%w: button index %d out of range", ErrInvalidFrame, f.Index)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidFrame, uint8(f.Kind))
	}
	return nil
}

// AxisFrame builds a valid axis frame.
func AxisFrame(a Axis, value int16) Frame {
	return Frame{Kind: KindAxis, Index: uint8(a), Value: value}
}

// ButtonFrame builds a valid button frame.
func ButtonFrame(b Button, pressed bool) Frame {
	var v int16
	if pressed {
		v = 1
	}
	return Frame{Kind: KindButton, Index: uint8(b), Value: v}
}
