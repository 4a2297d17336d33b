// Package protocol defines the wire contract between input clients and the
// relay server: the 4-byte binary input frame, the axis and button identity
// tables, and the text command vocabulary with its JSON status reply.
//
// Axis and button indices are part of the wire format and must not be
// reordered.
package protocol

// Kind tags the payload of an input frame.
type Kind uint8

const (
	KindAxis   Kind = 0
	KindButton Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindAxis:
		return "axis"
	case KindButton:
		return "button"
	}
	return "unknown"
}

// Axis identifies one analog channel of the virtual pad.
type Axis uint8

const (
	AxisLeftStickX   Axis = 0
	AxisLeftStickY   Axis = 1
	AxisRightStickX  Axis = 2
	AxisRightStickY  Axis = 3
	AxisLeftTrigger  Axis = 4
	AxisRightTrigger Axis = 5

	AxisCount = 6
)

// Short axis keys as used in status payloads.
var axisNames = [AxisCount]string{"lx", "ly", "rx", "ry", "lt", "rt"}

func (a Axis) String() string {
	if !a.Valid() {
		return "invalid"
	}
	return axisNames[a]
}

// Valid reports whether the axis index is inside the wire table.
func (a Axis) Valid() bool {
	return a < AxisCount
}

// Trigger reports whether the axis is one of the two analog triggers, which
// normalize to 0..1 instead of -1..1.
func (a Axis) Trigger() bool {
	return a == AxisLeftTrigger || a == AxisRightTrigger
}

// Button identifies one digital control of the virtual pad.
type Button uint8

const (
	ButtonA             Button = 0
	ButtonB             Button = 1
	ButtonX             Button = 2
	ButtonY             Button = 3
	ButtonLeftShoulder  Button = 4
	ButtonRightShoulder Button = 5
	ButtonBack          Button = 6
	ButtonStart         Button = 7
	ButtonLeftThumb     Button = 8
	ButtonRightThumb    Button = 9
	ButtonDPadUp        Button = 10
	ButtonDPadDown      Button = 11
	ButtonDPadLeft      Button = 12
	ButtonDPadRight     Button = 13

	ButtonCount = 14
)

var buttonNames = [ButtonCount]string{
	"A", "B", "X", "Y",
	"LeftShoulder", "RightShoulder",
	"Back", "Start",
	"LeftThumb", "RightThumb",
	"DPadUp", "DPadDown", "DPadLeft", "DPadRight",
}

func (b Button) String() string {
	if !b.Valid() {
		return "invalid"
	}
	return buttonNames[b]
}

// Valid reports whether the button index is inside the wire table.
func (b Button) Valid() bool {
	return b < ButtonCount
}

// Buttons returns every button in wire order.
func Buttons() [ButtonCount]Button {
	var all [ButtonCount]Button
	for i := range all {
		all[i] = Button(i)
	}
	return all
}

// Text commands accepted by the server. Commands are matched after trimming
// whitespace and lowercasing, so clients may send any casing.
const (
	CmdPing   = "ping"
	CmdStatus = "status"
	CmdReset  = "reset"
)

// Fixed text replies.
const (
	ReplyPong    = "pong"
	ReplyResetOK = "reset ok"
	ReplyUnknown = "unknown command"
)
