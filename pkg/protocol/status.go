package protocol

import "time"

// Shared status response structs used by both the server and clients.

// StatusResponse is the JSON reply to the "status" text command.
type StatusResponse struct {
	Session SessionStatus `json:"session"`
	Server  ServerStatus  `json:"server"`
	Pad     PadStatus     `json:"pad"`
}

// SessionStatus describes the requesting connection.
type SessionStatus struct {
	ID          string    `json:"id"`
	Remote      string    `json:"remote"`
	ConnectedAt time.Time `json:"connected_at"`
	Received    uint64    `json:"received"`
	Processed   uint64    `json:"processed"`
	Errors      uint64    `json:"errors"`
}

// ServerStatus aggregates counters across all sessions.
type ServerStatus struct {
	TotalSessions  int64     `json:"total_sessions"`
	ActiveSessions int64     `json:"active_sessions"`
	Received       uint64    `json:"received"`
	Processed      uint64    `json:"processed"`
	Errors         uint64    `json:"errors"`
	StartedAt      time.Time `json:"started_at"`
	Uptime         string    `json:"uptime"`
}

// PadStatus is the virtual pad's public state snapshot. Axes are keyed by
// their short names (lx, ly, rx, ry, lt, rt). TouchedButtons counts buttons
// seen at least once since the last reset, pressed or not.
type PadStatus struct {
	Axes           map[string]float64 `json:"axes"`
	PressedButtons []string           `json:"pressed_buttons"`
	TouchedButtons int                `json:"touched_buttons"`
}
