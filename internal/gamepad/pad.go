// Package gamepad holds the virtual controller's canonical state and the
// translation pipeline that turns wire frames into device updates.
package gamepad

import (
	"errors"
	"math"

	"github.com/lightsyr/chimera-go/internal/device"
	"github.com/lightsyr/chimera-go/pkg/protocol"
)

// Pad is the in-memory state of one virtual controller. It forwards changes
// to the device only when a value actually moved, so redundant writes never
// reach the driver.
//
// Pad is not safe for concurrent use; the Translator serializes all access.
type Pad struct {
	dev     device.Device
	axes    [protocol.AxisCount]float64
	buttons map[protocol.Button]bool
}

// NewPad wraps an acquired device. Construct one Pad per device and share
// it; sessions must never create their own.
func NewPad(dev device.Device) *Pad {
	return &Pad{dev: dev, buttons: make(map[protocol.Button]bool)}
}

// SetAxis stores the normalized value and issues the matching device update.
// Stick X/Y share one two-axis device call, so the stored partner coordinate
// rides along. Changed is false when the new value is within tolerance of
// the stored one; the device is not touched in that case.
func (p *Pad) SetAxis(a protocol.Axis, v float64) (changed bool, err error) {
	if !a.Valid() {
		return false, nil
	}
	if math.Abs(p.axes[a]-v) < tolerance {
		return false, nil
	}
	p.axes[a] = v
	switch a {
	case protocol.AxisLeftStickX, protocol.AxisLeftStickY:
		err = p.dev.SetLeftStick(p.axes[protocol.AxisLeftStickX], p.axes[protocol.AxisLeftStickY])
	case protocol.AxisRightStickX, protocol.AxisRightStickY:
		err = p.dev.SetRightStick(p.axes[protocol.AxisRightStickX], p.axes[protocol.AxisRightStickY])
	case protocol.AxisLeftTrigger:
		err = p.dev.SetLeftTrigger(v)
	case protocol.AxisRightTrigger:
		err = p.dev.SetRightTrigger(v)
	}
	return true, err
}

// SetButton stores the pressed state and issues the device press/release.
// Setting the state a button already has is a no-op, including releasing a
// button that was never touched.
func (p *Pad) SetButton(b protocol.Button, pressed bool) (changed bool, err error) {
	if !b.Valid() {
		return false, nil
	}
	if p.buttons[b] == pressed {
		return false, nil
	}
	p.buttons[b] = pressed
	if pressed {
		err = p.dev.PressButton(b)
	} else {
		err = p.dev.ReleaseButton(b)
	}
	return true, err
}

// Flush commits the accumulated state to the device as one report. Call it
// once per handled message after any SetAxis/SetButton returned true.
func (p *Pad) Flush() error {
	return p.dev.Flush()
}

// Reset returns every axis to neutral, releases currently-pressed buttons
// and flushes. Device calls are issued unconditionally so a desynced driver
// is forced back to neutral too. Failures are collected, not short-circuited.
func (p *Pad) Reset() error {
	for i := range p.axes {
		p.axes[i] = 0
	}
	var errs []error
	if err := p.dev.SetLeftStick(0, 0); err != nil {
		errs = append(errs, err)
	}
	if err := p.dev.SetRightStick(0, 0); err != nil {
		errs = append(errs, err)
	}
	if err := p.dev.SetLeftTrigger(0); err != nil {
		errs = append(errs, err)
	}
	if err := p.dev.SetRightTrigger(0); err != nil {
		errs = append(errs, err)
	}
	for _, b := range protocol.Buttons() {
		if !p.buttons[b] {
			continue
		}
		if err := p.dev.ReleaseButton(b); err != nil {
			errs = append(errs, err)
		}
	}
	clear(p.buttons)
	if err := p.dev.Flush(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Status snapshots the pad for the status command. Axis values are rounded
// to three decimals, pressed buttons listed in wire order.
func (p *Pad) Status() protocol.PadStatus {
	axes := make(map[string]float64, protocol.AxisCount)
	for i, v := range p.axes {
		axes[protocol.Axis(i).String()] = math.Round(v*1000) / 1000
	}
	pressed := make([]string, 0, len(p.buttons))
	for _, b := range protocol.Buttons() {
		if p.buttons[b] {
			pressed = append(pressed, b.String())
		}
	}
	return protocol.PadStatus{
		Axes:           axes,
		PressedButtons: pressed,
		TouchedButtons: len(p.buttons),
	}
}
