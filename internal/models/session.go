// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// SessionState is the listening session's state machine position.
type SessionState string

const (
	SessionActive  SessionState = "active"
	SessionEnded   SessionState = "ended"
	SessionExpired SessionState = "expired"
)

// DeviceType discriminates the client hardware/software a session or
// interaction originated from.
type DeviceType string

const (
	DeviceMobile  DeviceType = "mobile"
	DeviceDesktop DeviceType = "desktop"
	DeviceWeb     DeviceType = "web"
	DeviceTV      DeviceType = "tv"
	DeviceSpeaker DeviceType = "speaker"
	DeviceUnknown DeviceType = "unknown"
)

// IsValidDeviceType reports whether d is a known device type.
func IsValidDeviceType(d DeviceType) bool {
	switch d {
	case DeviceMobile, DeviceDesktop, DeviceWeb, DeviceTV, DeviceSpeaker, DeviceUnknown:
		return true
	}
	return false
}

// EndedBy records why a session left the Active state.
type EndedBy string

const (
	EndedByUser    EndedBy = "user"
	EndedByTimeout EndedBy = "timeout"
	EndedByReplace EndedBy = "replaced"
)

// ClientContext carries opaque, client-reported context for a session
// (app version, locale, network type). Open-ended beyond the documented
// keys lives in Extensions, never as a free-form blob.
type ClientContext struct {
	AppVersion string            `json:"app_version,omitempty"`
	Locale     string            `json:"locale,omitempty"`
	Network    string            `json:"network,omitempty"`
	Extensions map[string]string `json:"extensions,omitempty"`
}

// Session is a time-bounded listening context grouping related
// interactions. Invariant: while EndedAt is nil and now-LastHeartbeatAt <
// IdleTimeout, the session is Active; at most one Active session exists
// per (UserID, DeviceID).
type Session struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`

	State SessionState `json:"state"`

	StartedAt       time.Time  `json:"started_at"`
	LastHeartbeatAt time.Time  `json:"last_heartbeat_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	EndedBy         EndedBy    `json:"ended_by,omitempty"`

	DeviceType    DeviceType    `json:"device_type"`
	ClientContext ClientContext `json:"client_context"`

	// LastKnownTrackID/PositionMS are refreshed opportunistically by
	// Heartbeat calls that include them.
	LastKnownTrackID string `json:"last_known_track_id,omitempty"`
	LastPositionMS   int64  `json:"last_position_ms,omitempty"`

	Summary *SessionSummary `json:"summary,omitempty"`
}

// SessionSummary is computed once at End (or expiry) from interactions
// joined to the session. Finalization is exactly-once.
type SessionSummary struct {
	TotalDurationMS int64   `json:"total_duration_ms"`
	TracksPlayed    int     `json:"tracks_played"`
	TracksSkipped   int     `json:"tracks_skipped"`
	CompletionRate  float64 `json:"completion_rate"`
	FinalizedAt     time.Time `json:"finalized_at"`
}

// IsActive reports whether the session is Active and not idle-expired as
// of now.
func (s *Session) IsActive(now time.Time, idleTimeout time.Duration) bool {
	if s.State != SessionActive || s.EndedAt != nil {
		return false
	}
	return now.Sub(s.LastHeartbeatAt) < idleTimeout
}

// StartSessionRequest is the body of POST /sessions/start.
type StartSessionRequest struct {
	DeviceID      string        `json:"device_id" validate:"required"`
	DeviceType    DeviceType    `json:"device_type" validate:"required"`
	ClientContext ClientContext `json:"client_context,omitempty"`
}

// HeartbeatRequest is the body of PUT /sessions/{id}/heartbeat.
type HeartbeatRequest struct {
	PositionMS     *int64  `json:"position_ms,omitempty"`
	CurrentTrackID *string `json:"current_track_id,omitempty"`
}

// EndSessionRequest is the (optional) body of POST /sessions/{id}/end.
type EndSessionRequest struct {
	Reason EndedBy `json:"reason,omitempty"`
}
