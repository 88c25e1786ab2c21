// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// SearchQuery, ContentView, and PlayerEvent are append-only telemetry
// records with no invariants beyond well-formedness, mirroring the
// original source's tracking router, which logs these three event types
// in addition to Interaction. They are accepted by repository.Telemetry;
// the Interaction Ingestor and the HTTP API do not record them, and the
// Memory repository discards them.

// SearchQuery records a single search performed by a user.
type SearchQuery struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id,omitempty"`
	Query     string    `json:"query"`
	ResultCount int     `json:"result_count"`
	ClickedTrackID string `json:"clicked_track_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentViewKind discriminates what kind of content page was viewed.
type ContentViewKind string

const (
	ContentViewTrack    ContentViewKind = "track"
	ContentViewAlbum    ContentViewKind = "album"
	ContentViewArtist   ContentViewKind = "artist"
	ContentViewPlaylist ContentViewKind = "playlist"
)

// IsValidContentViewKind reports whether k is a known content view kind.
func IsValidContentViewKind(k ContentViewKind) bool {
	switch k {
	case ContentViewTrack, ContentViewAlbum, ContentViewArtist, ContentViewPlaylist:
		return true
	}
	return false
}

// ContentView records a user viewing a track/album/artist/playlist detail
// page, independent of playback.
type ContentView struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id,omitempty"`
	Kind       ContentViewKind `json:"kind"`
	EntityID   string          `json:"entity_id"`
	SourceID   string          `json:"source_id,omitempty"`
	DurationMS int64           `json:"duration_ms,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PlayerEventKind is the closed set of low-level player lifecycle events
// (distinct from Interaction's higher-level play/skip/like semantics).
type PlayerEventKind string

const (
	PlayerEventBuffering PlayerEventKind = "buffering"
	PlayerEventPause     PlayerEventKind = "pause"
	PlayerEventResume    PlayerEventKind = "resume"
	PlayerEventSeek      PlayerEventKind = "seek"
	PlayerEventError     PlayerEventKind = "error"
	PlayerEventVolume    PlayerEventKind = "volume_change"
)

// IsValidPlayerEventKind reports whether k is a known player event kind.
func IsValidPlayerEventKind(k PlayerEventKind) bool {
	switch k {
	case PlayerEventBuffering, PlayerEventPause, PlayerEventResume, PlayerEventSeek, PlayerEventError, PlayerEventVolume:
		return true
	}
	return false
}

// PlayerEvent is a low-level player telemetry record, useful for debugging
// playback quality issues and buffering-related skip attribution.
type PlayerEvent struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	SessionID  string          `json:"session_id,omitempty"`
	TrackID    string          `json:"track_id,omitempty"`
	Kind       PlayerEventKind `json:"kind"`
	PositionMS int64           `json:"position_ms,omitempty"`
	Detail     string          `json:"detail,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
