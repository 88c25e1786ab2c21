// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package repository defines the persistence boundary for the serving
// plane. Relational storage itself is out of scope (per the purpose &
// scope section): every component depends on the Repository interface,
// never on a concrete driver, so swapping the backing store never touches
// business logic. A Memory implementation backs local development and
// the test suite.
package repository

import (
	"context"
	"errors"

	"github.com/tunetrail/serving/internal/models"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict is returned by inserts that violate a uniqueness invariant
// (duplicate slug, duplicate email, etc).
var ErrConflict = errors.New("repository: conflict")

// Repository is the transactional read/write boundary over every entity
// named in the data model. DeleteOrganization in the adapters here
// (Memory, and Badger through it) removes the organization, its users
// and their API keys; the users' sessions, interactions and impressions
// are not removed.
type Repository interface {
	Organizations
	Users
	ApiKeys
	Sessions
	Interactions
	Impressions
	Telemetry
}

// Organizations covers Organization CRUD and the cascade-delete entry
// point.
type Organizations interface {
	CreateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	UpdateOrganizationPlan(ctx context.Context, id string, plan models.Plan) error
	DeleteOrganization(ctx context.Context, id string) error
}

// Users covers User CRUD, scoped by org ownership.
type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, orgID, email string) (*models.User, error)
}

// ApiKeys covers ApiKey issuance, lookup-by-prefix (which may return
// multiple rows per the prefix-collision tolerance in §4.1), and
// lifecycle transitions.
type ApiKeys interface {
	CreateApiKey(ctx context.Context, key *models.ApiKey) error
	GetApiKey(ctx context.Context, id string) (*models.ApiKey, error)
	ListApiKeysByPrefix(ctx context.Context, prefix string) ([]*models.ApiKey, error)
	ListApiKeysByOwner(ctx context.Context, ownerUserID string) ([]*models.ApiKey, error)
	UpdateApiKeyLastUsed(ctx context.Context, id string, ip string) error
	RevokeApiKey(ctx context.Context, id string) error
	ScheduleApiKeyRevocation(ctx context.Context, id string, graceSeconds int64) error
	SetApiKeyRotatedTo(ctx context.Context, oldID, newID string) error
	AppendApiKeyUsage(ctx context.Context, entry *models.ApiKeyUsageEntry) error
	SummarizeApiKeyUsage(ctx context.Context, keyID string) (*models.ApiKeyUsageSummary, error)
}

// Sessions covers listening-session persistence. The Cache boundary, not
// this interface, is authoritative for "is this session currently active"
// (see internal/session); the Repository durably records session rows
// and their finalized summaries.
type Sessions interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetActiveSessionByDevice(ctx context.Context, userID, deviceID string) (*models.Session, error)
	UpdateSessionHeartbeat(ctx context.Context, id string, trackID string, positionMS int64) error
	FinalizeSession(ctx context.Context, id string, state models.SessionState, endedBy models.EndedBy, summary *models.SessionSummary) error
}

// Interactions covers the append-only interaction log.
type Interactions interface {
	CreateInteraction(ctx context.Context, i *models.Interaction) error
	ListInteractionsBySession(ctx context.Context, sessionID string) ([]*models.Interaction, error)
	LastClientSeq(ctx context.Context, sessionID string) (int64, error)
}

// Impressions covers the append-only impression log and the idempotent
// post-hoc flag updates the feedback path performs.
type Impressions interface {
	CreateImpressions(ctx context.Context, impressions []*models.Impression) error
	GetImpressionsByRecommendation(ctx context.Context, recommendationID string) ([]*models.Impression, error)
	ApplyImpressionFeedback(ctx context.Context, recommendationID string, signal models.FeedbackSignal) (changed bool, err error)
}

// Telemetry covers the three append-only, invariant-free event types
// supplementing Interaction.
type Telemetry interface {
	RecordSearchQuery(ctx context.Context, q *models.SearchQuery) error
	RecordContentView(ctx context.Context, v *models.ContentView) error
	RecordPlayerEvent(ctx context.Context, e *models.PlayerEvent) error
}

// TrackCatalog provides the track duration lookup the Interaction
// Ingestor needs to bound play_duration_ms against clock skew. Tracks
// themselves are owned by a separate catalog service in production and
// are referenced here only by track_id; this is a narrow, optional
// interface, not part of Repository, so a Repository adapter that never
// serves interaction writes need not implement it.
type TrackCatalog interface {
	GetTrackDurationMS(ctx context.Context, trackID string) (int64, error)
}
