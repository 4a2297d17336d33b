package gamepad

import "math"

// DefaultDeadzone masks resting-state sensor noise on physical sticks;
// without it the virtual pad would drift.
const DefaultDeadzone = 0.08

// Axis changes smaller than this are indistinguishable from the stored value
// and skipped.
const tolerance = 0.001

// normalizeStick maps a raw int16 to -1..1 and rescales the usable range
// above the deadzone onto the full range, preserving sign. Magnitudes below
// the deadzone collapse to exactly 0.
func normalizeStick(raw int16, deadzone float64) float64 {
	v := float64(raw) / 32767.0
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	m := math.Abs(v)
	if m < deadzone {
		return 0
	}
	return math.Copysign((m-deadzone)/(1-deadzone), v)
}

// normalizeTrigger maps a raw int16 to 0..1. Negative raw values clamp to 0,
// triggers have no deadzone.
func normalizeTrigger(raw int16) float64 {
	v := float64(raw) / 32767.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
