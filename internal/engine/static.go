// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tunetrail/serving/internal/models"
)

// Static is a reference Engine combining popularity and co-visitation
// ranking, trained from an in-memory interaction log. It exists so the
// serving plane has a working default without a real model-serving
// backend; Recommend never blocks on I/O and returns within
// microseconds, so it never trips the Dispatcher's call timeout.
type Static struct {
	mu sync.RWMutex

	trained       bool
	version       int
	lastTrainedAt time.Time

	popularity   map[string]float64
	popularOrder []string

	cooccurrence map[string]map[string]float64
	userHistory  map[string][]string

	createdAt map[string]time.Time
}

// NewStatic returns an untrained Static engine. Call Train before the
// first Recommend call; an untrained engine returns an empty result set
// rather than an error.
func NewStatic() *Static {
	return &Static{
		popularity:   make(map[string]float64),
		cooccurrence: make(map[string]map[string]float64),
		userHistory:  make(map[string][]string),
		createdAt:    make(map[string]time.Time),
	}
}

var _ Engine = (*Static)(nil)

// TrainingCatalog supplies the created_at timestamps used to break score
// ties deterministically (older wins), per the serving plane's tie-break
// rule.
type TrainingCatalog map[string]time.Time

// Train rebuilds the popularity and co-visitation models from a flat
// interaction log. Safe for concurrent calls; a Train in progress holds
// the exclusive lock Recommend also wants, so callers should train on a
// background cadence, not inline with a request.
func (s *Static) Train(ctx context.Context, interactions []Interaction, catalog TrainingCatalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.popularity = make(map[string]float64)
	s.cooccurrence = make(map[string]map[string]float64)
	s.userHistory = make(map[string][]string)
	s.createdAt = catalog

	if len(interactions) == 0 {
		s.trained = true
		s.version++
		s.lastTrainedAt = time.Now()
		return nil
	}

	byUser := make(map[string][]Interaction)
	for _, in := range interactions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		weight := in.Confidence
		if weight <= 0 {
			weight = in.Type.Confidence()
		}
		s.popularity[in.TrackID] += weight
		byUser[in.UserID] = append(byUser[in.UserID], in)
	}

	s.popularOrder = rankByScoreDesc(s.popularity, s.createdAt)

	for userID, events := range byUser {
		sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
		seen := make(map[string]struct{}, len(events))
		history := make([]string, 0, len(events))
		for _, e := range events {
			if _, ok := seen[e.TrackID]; ok {
				continue
			}
			seen[e.TrackID] = struct{}{}
			history = append(history, e.TrackID)
		}
		s.userHistory[userID] = history

		for i := 0; i < len(history); i++ {
			for j := i + 1; j < len(history); j++ {
				a, b := history[i], history[j]
				if a > b {
					a, b = b, a
				}
				if s.cooccurrence[a] == nil {
					s.cooccurrence[a] = make(map[string]float64)
				}
				s.cooccurrence[a][b]++
			}
		}
	}

	for a, row := range s.cooccurrence {
		for b, count := range row {
			s.cooccurrence[a][b] = count
			if s.cooccurrence[b] == nil {
				s.cooccurrence[b] = make(map[string]float64)
			}
			s.cooccurrence[b][a] = count
		}
	}

	s.trained = true
	s.version++
	s.lastTrainedAt = time.Now()
	return nil
}

// Recommend ranks tracks for req.Kind. user_personal, daily_mix and
// taste_profile rank by the user's history; similar_to_track and
// radio_seed rank by co-visitation with req.Seed. Any kind falls back to
// global popularity when its ranking is empty.
func (s *Static) Recommend(ctx context.Context, req models.RecommendationRequest) (models.RankedTracks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	var ordered []string
	switch req.Kind {
	case models.KindSimilarToTrack, models.KindRadioSeed:
		ordered = s.rankBySeed(req.Seed)
	case models.KindUserPersonal, models.KindDailyMix:
		ordered = s.rankByUser(req.UserID)
	case models.KindTasteProfile:
		ordered = s.rankByUser(req.UserID)
	default:
		ordered = s.popularOrder
	}

	if len(ordered) == 0 {
		ordered = s.popularOrder
	}

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	tracks := make([]models.ScoredTrack, 0, len(ordered))
	for i, id := range ordered {
		tracks = append(tracks, models.ScoredTrack{
			TrackID:   id,
			Score:     scoreFor(req.Kind, i, len(ordered)),
			Reason:    string(req.Kind),
			CreatedAt: s.createdAt[id],
		})
	}

	return models.RankedTracks{
		Tracks:       tracks,
		ModelType:    "static-hybrid",
		ModelVersion: versionString(s.version),
	}, nil
}

func (s *Static) rankBySeed(seed string) []string {
	row, ok := s.cooccurrence[seed]
	if !ok || len(row) == 0 {
		return nil
	}
	return rankByScoreDesc(row, s.createdAt)
}

func (s *Static) rankByUser(userID string) []string {
	history := s.userHistory[userID]
	if len(history) == 0 {
		return nil
	}
	scores := make(map[string]float64)
	seen := make(map[string]struct{}, len(history))
	for _, id := range history {
		seen[id] = struct{}{}
	}
	for _, seed := range history {
		for candidate, sim := range s.cooccurrence[seed] {
			if _, already := seen[candidate]; already {
				continue
			}
			scores[candidate] += sim
		}
	}
	if len(scores) == 0 {
		return nil
	}
	return rankByScoreDesc(scores, s.createdAt)
}

// rankByScoreDesc sorts by score descending; ties break by older
// created_at first, then lexicographically by track id, matching the
// serving plane's deterministic tie-break rule.
func rankByScoreDesc(scores map[string]float64, createdAt map[string]time.Time) []string {
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		ta, tb := createdAt[a], createdAt[b]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return a < b
	})
	return ids
}

func scoreFor(kind models.RecommendationKind, rank, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(rank)/float64(total)
}

func versionString(v int) string {
	const digits = "0123456789"
	if v == 0 {
		return "v0"
	}
	buf := []byte{}
	n := v
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "v" + string(buf)
}
