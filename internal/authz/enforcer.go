// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package authz

import (
	"context"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
)

// DefaultCacheTTL is the default authorization decision cache lifetime.
const DefaultCacheTTL = 5 * time.Minute

// Enforcer checks whether a Principal's scopes satisfy an Operation's
// requirement, caching decisions for DefaultCacheTTL so a request burst
// against the same hot endpoint doesn't re-walk the scope set each time.
type Enforcer struct {
	cache *decisionCache
}

// New constructs an Enforcer. ttl <= 0 uses DefaultCacheTTL.
func New(ttl time.Duration) *Enforcer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Enforcer{cache: newDecisionCache(ttl)}
}

// Stop halts the cache's background cleanup goroutine. Safe to call
// multiple times and safe to omit for short-lived test enforcers.
func (e *Enforcer) Stop() {
	e.cache.stop()
}

// Authorize reports whether principal may perform op, returning
// apierr.KindScopeInsufficient on denial. Unregistered operations
// (unauthenticated endpoints) always pass.
func (e *Enforcer) Authorize(_ context.Context, principal *models.Principal, op Operation) error {
	required, gated := RequiredScope(op)
	if !gated {
		return nil
	}

	key := principalKey(principal)
	if allowed, hit := e.cache.get(key, op); hit {
		if allowed {
			return nil
		}
		return scopeDenied(op, required)
	}

	allowed := principal.HasScope(required)
	e.cache.set(key, op, allowed)
	if !allowed {
		return scopeDenied(op, required)
	}
	return nil
}

// InvalidatePrincipal drops cached decisions for a principal. Callers
// invoke this after an api key's scopes change (rotation, revocation) so
// a cached allow can't outlive the grant that produced it.
func (e *Enforcer) InvalidatePrincipal(principal *models.Principal) {
	e.cache.invalidatePrincipal(principalKey(principal))
}

func scopeDenied(op Operation, required models.Scope) error {
	err := apierr.New(apierr.KindScopeInsufficient, "missing required scope")
	err.Details = map[string]any{
		"operation":      string(op),
		"required_scope": string(required),
	}
	return err
}

// principalKey identifies the cache partition for a principal: api keys
// are keyed by key id (so rotation invalidates precisely), session
// principals by user id.
func principalKey(p *models.Principal) string {
	if p.KeyID != "" {
		return "key:" + p.KeyID
	}
	return "user:" + p.UserID
}
