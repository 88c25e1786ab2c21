// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package authz

import (
	"context"
	"testing"
	"time"

	"github.com/tunetrail/serving/internal/apierr"
	"github.com/tunetrail/serving/internal/models"
)

func TestAuthorizeAllowsWildcardScope(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	p := &models.Principal{UserID: "user_1", Scopes: models.ScopeSet{models.ScopeAll}}
	if err := e.Authorize(context.Background(), p, OpTasteProfile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizeDeniesMissingScope(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	p := &models.Principal{UserID: "user_1", Scopes: models.ScopeSet{models.ScopeReadTracks}}
	err := e.Authorize(context.Background(), p, OpApiKeyIssue)
	apiErr, ok := apierr.As(err)
	if !ok || apiErr.Kind != apierr.KindScopeInsufficient {
		t.Fatalf("expected SCOPE_INSUFFICIENT, got %v", err)
	}
}

func TestAuthorizeUngatedOperationAlwaysPasses(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	p := &models.Principal{}
	if err := e.Authorize(context.Background(), p, OpLogin); err != nil {
		t.Fatalf("unexpected error for unauthenticated operation: %v", err)
	}
}

func TestAuthorizeCachesDecision(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	p := &models.Principal{UserID: "user_1", Scopes: models.ScopeSet{models.ScopeWriteApiKeys}}
	if err := e.Authorize(context.Background(), p, OpApiKeyIssue); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, hit := e.cache.get(principalKey(p), OpApiKeyIssue); !hit {
		t.Fatal("expected decision to be cached after first check")
	}
}

func TestInvalidatePrincipalClearsCachedDecision(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	p := &models.Principal{KeyID: "key_1", Scopes: models.ScopeSet{models.ScopeWriteApiKeys}}
	if err := e.Authorize(context.Background(), p, OpApiKeyIssue); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e.InvalidatePrincipal(p)

	if _, hit := e.cache.get(principalKey(p), OpApiKeyIssue); hit {
		t.Fatal("expected cache entry to be invalidated")
	}
}

func TestApiKeyAndUserPrincipalsUseDistinctCachePartitions(t *testing.T) {
	e := New(time.Minute)
	defer e.Stop()

	sessionPrincipal := &models.Principal{UserID: "user_1"}
	keyPrincipal := &models.Principal{UserID: "user_1", KeyID: "key_1"}

	if principalKey(sessionPrincipal) == principalKey(keyPrincipal) {
		t.Fatal("expected session and api-key principals to use distinct cache keys")
	}
}
