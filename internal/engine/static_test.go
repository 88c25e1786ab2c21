// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

func TestUntrainedEngineReturnsEmptyResult(t *testing.T) {
	s := NewStatic()
	out, err := s.Recommend(context.Background(), models.RecommendationRequest{Kind: models.KindUserPersonal, UserID: "u1", Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != 0 {
		t.Errorf("expected no tracks from untrained engine, got %d", len(out.Tracks))
	}
}

func TestPopularityFallbackForUnknownUser(t *testing.T) {
	s := NewStatic()
	now := time.Now()
	err := s.Train(context.Background(), []Interaction{
		{UserID: "u1", TrackID: "t1", Type: models.InteractionPlay, Timestamp: now},
		{UserID: "u1", TrackID: "t2", Type: models.InteractionComplete, Timestamp: now.Add(time.Minute)},
		{UserID: "u2", TrackID: "t2", Type: models.InteractionComplete, Timestamp: now.Add(2 * time.Minute)},
	}, TrainingCatalog{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := s.Recommend(context.Background(), models.RecommendationRequest{Kind: models.KindDailyMix, UserID: "unknown", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) == 0 {
		t.Fatal("expected popularity fallback for an unknown user")
	}
	if out.Tracks[0].TrackID != "t2" {
		t.Errorf("expected t2 (higher confidence) ranked first, got %s", out.Tracks[0].TrackID)
	}
}

func TestSimilarToTrackUsesCoVisitation(t *testing.T) {
	s := NewStatic()
	now := time.Now()
	err := s.Train(context.Background(), []Interaction{
		{UserID: "u1", TrackID: "a", Type: models.InteractionPlay, Timestamp: now},
		{UserID: "u1", TrackID: "b", Type: models.InteractionPlay, Timestamp: now.Add(time.Minute)},
		{UserID: "u2", TrackID: "a", Type: models.InteractionPlay, Timestamp: now.Add(2 * time.Minute)},
		{UserID: "u2", TrackID: "b", Type: models.InteractionPlay, Timestamp: now.Add(3 * time.Minute)},
	}, TrainingCatalog{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := s.Recommend(context.Background(), models.RecommendationRequest{Kind: models.KindSimilarToTrack, Seed: "a", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != 1 || out.Tracks[0].TrackID != "b" {
		t.Fatalf("expected [b] co-visited with a, got %+v", out.Tracks)
	}
}

func TestRankByScoreDescTieBreaksOnCreatedAtThenTrackID(t *testing.T) {
	older := time.Now()
	newer := older.Add(time.Hour)
	scores := map[string]float64{"z": 1.0, "a": 1.0}
	createdAt := map[string]time.Time{"z": older, "a": newer}

	ordered := rankByScoreDesc(scores, createdAt)
	if ordered[0] != "z" {
		t.Errorf("expected older created_at 'z' to win tie, got order %v", ordered)
	}

	sameTime := map[string]time.Time{"z": older, "a": older}
	ordered = rankByScoreDesc(scores, sameTime)
	if ordered[0] != "a" {
		t.Errorf("expected lexicographic tie-break 'a' before 'z', got order %v", ordered)
	}
}

func TestLimitTruncatesResults(t *testing.T) {
	s := NewStatic()
	now := time.Now()
	var events []Interaction
	for i := 0; i < 5; i++ {
		events = append(events, Interaction{UserID: "u1", TrackID: string(rune('a' + i)), Type: models.InteractionPlay, Timestamp: now})
	}
	if err := s.Train(context.Background(), events, TrainingCatalog{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := s.Recommend(context.Background(), models.RecommendationRequest{Kind: models.KindDailyMix, UserID: "nobody", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tracks) != 2 {
		t.Errorf("expected limit of 2, got %d", len(out.Tracks))
	}
}
