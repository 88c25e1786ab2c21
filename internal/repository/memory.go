// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

// Memory is an in-process Repository implementation for local
// development and tests. It is not durable and not intended for
// production use behind a real deployment.
type Memory struct {
	mu sync.RWMutex

	orgs           map[string]*models.Organization
	orgsBySlug     map[string]string
	users          map[string]*models.User
	usersByOrgMail map[string]string // orgID + "\x00" + email -> userID
	apiKeys        map[string]*models.ApiKey
	sessions       map[string]*models.Session
	interactions   map[string][]*models.Interaction // sessionID -> events
	impressions    map[string][]*models.Impression  // recommendationID -> impressions
	apiKeyUsage    map[string][]*models.ApiKeyUsageEntry
	trackDurations map[string]int64
}

// NewMemory constructs an empty Memory repository.
func NewMemory() *Memory {
	return &Memory{
		orgs:           make(map[string]*models.Organization),
		orgsBySlug:     make(map[string]string),
		users:          make(map[string]*models.User),
		usersByOrgMail: make(map[string]string),
		apiKeys:        make(map[string]*models.ApiKey),
		sessions:       make(map[string]*models.Session),
		interactions:   make(map[string][]*models.Interaction),
		impressions:    make(map[string][]*models.Impression),
		apiKeyUsage:    make(map[string][]*models.ApiKeyUsageEntry),
		trackDurations: make(map[string]int64),
	}
}

var _ Repository = (*Memory)(nil)
var _ TrackCatalog = (*Memory)(nil)

// RegisterTrackDuration seeds the duration lookup for a track id. Test
// and local-dev helper; production catalog data is owned elsewhere.
func (m *Memory) RegisterTrackDuration(trackID string, durationMS int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackDurations[trackID] = durationMS
}

// GetTrackDurationMS returns the registered duration for trackID, or
// ErrNotFound if none was registered.
func (m *Memory) GetTrackDurationMS(_ context.Context, trackID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.trackDurations[trackID]
	if !ok {
		return 0, ErrNotFound
	}
	return d, nil
}

func (m *Memory) CreateOrganization(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orgsBySlug[org.Slug]; exists {
		return ErrConflict
	}
	cp := *org
	m.orgs[org.ID] = &cp
	m.orgsBySlug[org.Slug] = org.ID
	return nil
}

func (m *Memory) GetOrganization(_ context.Context, id string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (m *Memory) GetOrganizationBySlug(_ context.Context, slug string) (*models.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.orgsBySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.orgs[id]
	return &cp, nil
}

func (m *Memory) UpdateOrganizationPlan(_ context.Context, id string, plan models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return ErrNotFound
	}
	org.Plan = plan
	org.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) DeleteOrganization(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.orgsBySlug, org.Slug)
	delete(m.orgs, id)

	for uid, u := range m.users {
		if u.OrgID != id {
			continue
		}
		delete(m.usersByOrgMail, id+"\x00"+u.Email)
		delete(m.users, uid)
	}
	for kid, k := range m.apiKeys {
		if k.OrgID == id {
			delete(m.apiKeys, kid)
		}
	}
	return nil
}

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := user.OrgID + "\x00" + user.Email
	if _, exists := m.usersByOrgMail[key]; exists {
		return ErrConflict
	}
	cp := *user
	m.users[user.ID] = &cp
	m.usersByOrgMail[key] = user.ID
	return nil
}

func (m *Memory) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(_ context.Context, orgID, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByOrgMail[orgID+"\x00"+models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *Memory) CreateApiKey(_ context.Context, key *models.ApiKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *key
	m.apiKeys[key.ID] = &cp
	return nil
}

func (m *Memory) GetApiKey(_ context.Context, id string) (*models.ApiKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.apiKeys[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *Memory) ListApiKeysByPrefix(_ context.Context, prefix string) ([]*models.ApiKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []*models.ApiKey
	for _, k := range m.apiKeys {
		if strings.HasPrefix(k.Prefix, prefix) || strings.HasPrefix(prefix, k.Prefix) {
			cp := *k
			matches = append(matches, &cp)
		}
	}
	return matches, nil
}

func (m *Memory) ListApiKeysByOwner(_ context.Context, ownerUserID string) ([]*models.ApiKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matches []*models.ApiKey
	for _, k := range m.apiKeys {
		if k.OwnerUserID == ownerUserID {
			cp := *k
			matches = append(matches, &cp)
		}
	}
	return matches, nil
}

func (m *Memory) UpdateApiKeyLastUsed(_ context.Context, id string, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.apiKeys[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	k.LastUsedAt = &now
	k.LastUsedIP = ip
	k.UseCount++
	return nil
}

func (m *Memory) RevokeApiKey(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.apiKeys[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	k.RevokedAt = &now
	return nil
}

func (m *Memory) ScheduleApiKeyRevocation(_ context.Context, id string, graceSeconds int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.apiKeys[id]
	if !ok {
		return ErrNotFound
	}
	at := time.Now().Add(time.Duration(graceSeconds) * time.Second)
	k.RevokedAt = &at
	return nil
}

func (m *Memory) SetApiKeyRotatedTo(_ context.Context, oldID, newID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.apiKeys[oldID]
	if !ok {
		return ErrNotFound
	}
	k.RotatedToID = newID
	return nil
}

func (m *Memory) AppendApiKeyUsage(_ context.Context, entry *models.ApiKeyUsageEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.apiKeyUsage[entry.KeyID] = append(m.apiKeyUsage[entry.KeyID], &cp)
	return nil
}

func (m *Memory) SummarizeApiKeyUsage(_ context.Context, keyID string) (*models.ApiKeyUsageSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.apiKeyUsage[keyID]
	summary := &models.ApiKeyUsageSummary{KeyID: keyID}
	if len(entries) == 0 {
		return summary, nil
	}
	summary.WindowStart = entries[0].Timestamp
	summary.WindowEnd = entries[0].Timestamp
	for _, e := range entries {
		summary.TotalRequests++
		if e.StatusCode >= 400 {
			summary.ErrorCount++
		}
		if e.Timestamp.Before(summary.WindowStart) {
			summary.WindowStart = e.Timestamp
		}
		if e.Timestamp.After(summary.WindowEnd) {
			summary.WindowEnd = e.Timestamp
			ts := e.Timestamp
			summary.LastUsedAt = &ts
		}
	}
	return summary, nil
}

func (m *Memory) CreateSession(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) GetActiveSessionByDevice(_ context.Context, userID, deviceID string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID && s.State == models.SessionActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateSessionHeartbeat(_ context.Context, id string, trackID string, positionMS int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	s.LastHeartbeatAt = time.Now()
	if trackID != "" {
		s.LastKnownTrackID = trackID
	}
	s.LastPositionMS = positionMS
	return nil
}

func (m *Memory) FinalizeSession(_ context.Context, id string, state models.SessionState, endedBy models.EndedBy, summary *models.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if s.EndedAt != nil {
		// Exactly-once finalization: a second finalize is a no-op success.
		return nil
	}
	now := time.Now()
	s.State = state
	s.EndedAt = &now
	s.EndedBy = endedBy
	s.Summary = summary
	return nil
}

// CreateInteraction appends i to the append-only log, keyed by session id.
// Session-less interactions (e.g. the Interaction a feedback signal
// produces, which carries no session context) are stored under the empty
// key, queryable the same way as any other session's events.
func (m *Memory) CreateInteraction(_ context.Context, i *models.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *i
	m.interactions[i.SessionID] = append(m.interactions[i.SessionID], &cp)
	return nil
}

func (m *Memory) ListInteractionsBySession(_ context.Context, sessionID string) ([]*models.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Interaction(nil), m.interactions[sessionID]...), nil
}

func (m *Memory) LastClientSeq(_ context.Context, sessionID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var max int64
	for _, i := range m.interactions[sessionID] {
		if i.ClientSeq > max {
			max = i.ClientSeq
		}
	}
	return max, nil
}

func (m *Memory) CreateImpressions(_ context.Context, impressions []*models.Impression) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, imp := range impressions {
		cp := *imp
		m.impressions[imp.RecommendationID] = append(m.impressions[imp.RecommendationID], &cp)
	}
	return nil
}

func (m *Memory) GetImpressionsByRecommendation(_ context.Context, recommendationID string) ([]*models.Impression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Impression(nil), m.impressions[recommendationID]...), nil
}

func (m *Memory) ApplyImpressionFeedback(_ context.Context, recommendationID string, signal models.FeedbackSignal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	impressions, ok := m.impressions[recommendationID]
	if !ok || len(impressions) == 0 {
		return false, ErrNotFound
	}
	changed := false
	for _, imp := range impressions {
		if imp.ApplyFeedback(signal) {
			changed = true
		}
	}
	return changed, nil
}

func (m *Memory) RecordSearchQuery(_ context.Context, q *models.SearchQuery) error {
	return nil
}

func (m *Memory) RecordContentView(_ context.Context, v *models.ContentView) error {
	return nil
}

func (m *Memory) RecordPlayerEvent(_ context.Context, e *models.PlayerEvent) error {
	return nil
}
