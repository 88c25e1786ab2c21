// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/quota"
)

type contextKey string

const principalContextKey contextKey = "principal"

// contextWithPrincipal attaches the authenticated principal to ctx.
func contextWithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// principalFromContext extracts the principal the auth middleware placed
// in context. ok is false for routes that never ran the auth middleware
// (register/login), which must never call this.
func principalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*models.Principal)
	return p, ok
}

// writeRateLimitHeaders sets the X-RateLimit-* headers from a quota
// Decision. A zero Decision (an unmetered operation) writes nothing.
func writeRateLimitHeaders(w http.ResponseWriter, d quota.Decision) {
	if d.Limit == 0 && d.Remaining == 0 && d.ResetUnix == 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetUnix, 10))
}
