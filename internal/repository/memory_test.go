// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

func TestCreateOrganizationRejectsDuplicateSlug(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	org := &models.Organization{ID: "org_1", Slug: "acme", Plan: models.PlanFree}
	if err := repo.CreateOrganization(ctx, org); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dup := &models.Organization{ID: "org_2", Slug: "acme", Plan: models.PlanFree}
	if err := repo.CreateOrganization(ctx, dup); err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestGetOrganizationBySlugNotFound(t *testing.T) {
	repo := NewMemory()
	if _, err := repo.GetOrganizationBySlug(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteOrganizationCascadesUsersAndKeys(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	org := &models.Organization{ID: "org_1", Slug: "acme", Plan: models.PlanFree}
	_ = repo.CreateOrganization(ctx, org)
	user := &models.User{ID: "user_1", OrgID: "org_1", Email: "a@example.com"}
	_ = repo.CreateUser(ctx, user)
	key := &models.ApiKey{ID: "key_1", OrgID: "org_1", OwnerUserID: "user_1"}
	_ = repo.CreateApiKey(ctx, key)

	if err := repo.DeleteOrganization(ctx, "org_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.GetUser(ctx, "user_1"); err != ErrNotFound {
		t.Fatalf("expected cascaded user delete, got %v", err)
	}
	if _, err := repo.GetApiKey(ctx, "key_1"); err != ErrNotFound {
		t.Fatalf("expected cascaded key delete, got %v", err)
	}
}

func TestGetUserByEmailNormalizesCase(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	user := &models.User{ID: "user_1", OrgID: "org_1", Email: models.NormalizeEmail("  Alice@Example.com ")}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := repo.GetUserByEmail(ctx, "org_1", "ALICE@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "user_1" {
		t.Errorf("expected user_1, got %s", got.ID)
	}
}

func TestFinalizeSessionIsExactlyOnce(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	s := &models.Session{ID: "sess_1", UserID: "user_1", DeviceID: "dev_1", State: models.SessionActive}
	_ = repo.CreateSession(ctx, s)

	first := &models.SessionSummary{TracksPlayed: 3}
	if err := repo.FinalizeSession(ctx, "sess_1", models.SessionEnded, models.EndedByUser, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second := &models.SessionSummary{TracksPlayed: 99}
	if err := repo.FinalizeSession(ctx, "sess_1", models.SessionEnded, models.EndedByTimeout, second); err != nil {
		t.Fatalf("unexpected error on repeat finalize: %v", err)
	}
	got, _ := repo.GetSession(ctx, "sess_1")
	if got.Summary.TracksPlayed != 3 {
		t.Errorf("expected first finalize to win, got TracksPlayed=%d", got.Summary.TracksPlayed)
	}
	if got.EndedBy != models.EndedByUser {
		t.Errorf("expected EndedByUser to stick, got %s", got.EndedBy)
	}
}

func TestLastClientSeqTracksMaximum(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	_ = repo.CreateInteraction(ctx, &models.Interaction{ID: "i1", SessionID: "sess_1", ClientSeq: 3})
	_ = repo.CreateInteraction(ctx, &models.Interaction{ID: "i2", SessionID: "sess_1", ClientSeq: 7})
	_ = repo.CreateInteraction(ctx, &models.Interaction{ID: "i3", SessionID: "sess_1", ClientSeq: 5})

	seq, err := repo.LastClientSeq(ctx, "sess_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq != 7 {
		t.Errorf("expected 7, got %d", seq)
	}
}

func TestApplyImpressionFeedbackIsIdempotent(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	err := repo.CreateImpressions(ctx, []*models.Impression{
		{ID: "imp_1", RecommendationID: "rec_1", TrackID: "t1", ShownAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := repo.ApplyImpressionFeedback(ctx, "rec_1", models.FeedbackAccept)
	if err != nil || !changed {
		t.Fatalf("expected first feedback to change state, got changed=%v err=%v", changed, err)
	}
	changed, err = repo.ApplyImpressionFeedback(ctx, "rec_1", models.FeedbackAccept)
	if err != nil || changed {
		t.Fatalf("expected second identical feedback to be a no-op, got changed=%v err=%v", changed, err)
	}
}

func TestApplyImpressionFeedbackUnknownRecommendation(t *testing.T) {
	repo := NewMemory()
	if _, err := repo.ApplyImpressionFeedback(context.Background(), "rec_missing", models.FeedbackAccept); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListApiKeysByPrefixToleratesCollisions(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	_ = repo.CreateApiKey(ctx, &models.ApiKey{ID: "key_1", Prefix: "tt_ab12cd"})
	_ = repo.CreateApiKey(ctx, &models.ApiKey{ID: "key_2", Prefix: "tt_ab12cd"})
	_ = repo.CreateApiKey(ctx, &models.ApiKey{ID: "key_3", Prefix: "tt_zz99zz"})

	matches, err := repo.ListApiKeysByPrefix(ctx, "tt_ab12cd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected 2 colliding keys, got %d", len(matches))
	}
}
