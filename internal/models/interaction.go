// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package models

import "time"

// InteractionType is a closed enum over the kinds of listening events the
// Interaction Ingestor accepts.
type InteractionType string

const (
	InteractionPlay           InteractionType = "play"
	InteractionSkip           InteractionType = "skip"
	InteractionLike           InteractionType = "like"
	InteractionDislike        InteractionType = "dislike"
	InteractionSave           InteractionType = "save"
	InteractionAddToPlaylist  InteractionType = "add_to_playlist"
	InteractionShare          InteractionType = "share"
	InteractionComplete       InteractionType = "complete"
)

// IsValidInteractionType reports whether t is a known interaction type.
func IsValidInteractionType(t InteractionType) bool {
	switch t {
	case InteractionPlay, InteractionSkip, InteractionLike, InteractionDislike,
		InteractionSave, InteractionAddToPlaylist, InteractionShare, InteractionComplete:
		return true
	}
	return false
}

// Confidence returns the implicit-feedback weight the offline learner
// assigns to this interaction type, used only as a documented constant
// surfaced to the engine boundary — the serving plane itself does not
// rank on it.
func (t InteractionType) Confidence() float64 {
	switch t {
	case InteractionComplete:
		return 1.0
	case InteractionLike, InteractionSave:
		return 0.9
	case InteractionAddToPlaylist:
		return 0.8
	case InteractionShare:
		return 0.7
	case InteractionPlay:
		return 0.5
	case InteractionSkip:
		return 0.1
	case InteractionDislike:
		return 0.0
	default:
		return 0.0
	}
}

// InteractionSource records where an interaction originated: organic
// browsing vs. a specific recommendation surface.
type InteractionSource string

const (
	SourceOrganic        InteractionSource = "organic"
	SourceRecommendation InteractionSource = "recommendation"
	SourceSearch         InteractionSource = "search"
	SourcePlaylist       InteractionSource = "playlist"
	SourceRadio          InteractionSource = "radio"
)

// IsValidSource reports whether s is a known interaction source.
func IsValidSource(s InteractionSource) bool {
	switch s {
	case SourceOrganic, SourceRecommendation, SourceSearch, SourcePlaylist, SourceRadio:
		return true
	}
	return false
}

// Interaction is an immutable, append-only record of a user action on a
// track.
type Interaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TrackID   string    `json:"track_id"`
	SessionID string    `json:"session_id,omitempty"`

	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`

	PlayDurationMS *int64 `json:"play_duration_ms,omitempty"`
	PositionMS     *int64 `json:"position_ms,omitempty"`

	Source           InteractionSource `json:"source"`
	SourceID         string            `json:"source_id,omitempty"`
	RecommendationID string            `json:"recommendation_id,omitempty"`

	DeviceType DeviceType `json:"device_type"`
	SkipReason string     `json:"skip_reason,omitempty"`

	// Mood/Activity are closed-ish free text the client may supply;
	// carried through to the offline learner, not validated beyond length.
	Mood     string `json:"mood,omitempty"`
	Activity string `json:"activity,omitempty"`

	// CompletionOverride is set false when a client-declared "complete"
	// event is downgraded to "play" per the validation rule in §4.4.
	CompletionOverride *bool `json:"completion_override,omitempty"`

	// ClientSeq is the monotonic per-session sequence number used to
	// enforce per-session FIFO ordering; zero when not supplied (no
	// ordering enforced for that event).
	ClientSeq int64 `json:"client_seq,omitempty"`

	Extensions map[string]string `json:"extensions,omitempty"`
}

// IngestInteractionRequest is the body of a single entry in POST
// /interactions or POST /interactions/batch.
type IngestInteractionRequest struct {
	TrackID   string  `json:"track_id" validate:"required"`
	SessionID string  `json:"session_id,omitempty"`

	Type InteractionType `json:"type" validate:"required"`

	PlayDurationMS *int64 `json:"play_duration_ms,omitempty" validate:"omitempty,min=0"`
	PositionMS     *int64 `json:"position_ms,omitempty" validate:"omitempty,min=0"`

	Source           InteractionSource `json:"source" validate:"required"`
	SourceID         string            `json:"source_id,omitempty"`
	RecommendationID string            `json:"recommendation_id,omitempty"`

	DeviceType DeviceType `json:"device_type" validate:"required"`
	SkipReason string     `json:"skip_reason,omitempty"`
	Mood       string     `json:"mood,omitempty" validate:"max=64"`
	Activity   string     `json:"activity,omitempty" validate:"max=64"`

	ClientSeq int64 `json:"client_seq,omitempty"`

	Extensions map[string]string `json:"extensions,omitempty"`
}

// IngestBatchRequest is the body of POST /interactions/batch.
type IngestBatchRequest struct {
	Events []IngestInteractionRequest `json:"events" validate:"required,min=1,max=500,dive"`
}

// IngestResult reports the outcome of Ingest/IngestBatch for one event.
type IngestResult struct {
	ID                 string `json:"id"`
	Downgraded         bool   `json:"downgraded,omitempty"`
	DowngradedFromType InteractionType `json:"downgraded_from_type,omitempty"`
}

// IngestBatchResult reports the outcome of IngestBatch.
type IngestBatchResult struct {
	Accepted int            `json:"accepted"`
	Results  []IngestResult `json:"results"`
}
