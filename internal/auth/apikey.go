// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/tunetrail/serving/internal/clock"
	"github.com/tunetrail/serving/internal/idgen"
	"github.com/tunetrail/serving/internal/metrics"
	"github.com/tunetrail/serving/internal/models"
	"github.com/tunetrail/serving/internal/repository"
)

// Argon2id parameters for full-secret hashing. A plain SHA-256 digest is
// not acceptable here; the secret itself (not a low-entropy password) is
// hashed so these are deliberately lighter than a password-hashing
// default, trading some brute-force margin for request-path latency.
const (
	argon2Time    = 1
	argon2Memory  = 19 * 1024 // KiB
	argon2Threads = 2
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// apiKeySecretBytes is the length of the random secret portion, before
// base64 encoding.
const apiKeySecretBytes = 32

// ErrUnknownKey is returned when no key matches the presented prefix.
var ErrUnknownKey = errors.New("auth: unknown api key")

// ErrKeyRevoked is returned when a matched key has been revoked.
var ErrKeyRevoked = errors.New("auth: api key revoked")

// ErrKeyExpired is returned when a matched key has expired.
var ErrKeyExpired = errors.New("auth: api key expired")

// ErrIPNotAllowed is returned when the presenting IP is outside the key's
// allowlist.
var ErrIPNotAllowed = errors.New("auth: ip not allowed for this api key")

// lastUsedEnqueuer is the subset of LastUsedWriterService APIKeyManager
// needs; narrowed to an interface so tests can substitute a fake.
type lastUsedEnqueuer interface {
	Enqueue(keyID, clientIP string, at time.Time)
}

// APIKeyManager issues, validates, rotates, and revokes API keys. Secrets
// are stored as a salted argon2id digest, the memory-hard hash the full
// secret storage requires.
type APIKeyManager struct {
	repo  repository.ApiKeys
	ids   idgen.Generator
	clock clock.Clock
	writer lastUsedEnqueuer
}

// NewAPIKeyManager constructs an APIKeyManager. Last-used-at updates are
// written inline by a fire-and-forget goroutine until SetLastUsedWriter
// attaches a supervised LastUsedWriterService.
func NewAPIKeyManager(repo repository.ApiKeys, ids idgen.Generator, c clock.Clock) *APIKeyManager {
	return &APIKeyManager{repo: repo, ids: ids, clock: c}
}

// SetLastUsedWriter routes last-used-at updates through w's bounded queue
// instead of the per-call fire-and-forget goroutine, so the update rate is
// capped and observable independent of request volume.
func (m *APIKeyManager) SetLastUsedWriter(w *LastUsedWriterService) {
	m.writer = w
}

// Issue creates and persists a new API key, returning the stored record
// and the plaintext secret (shown exactly once).
func (m *APIKeyManager) Issue(ctx context.Context, ownerUserID, orgID string, req models.CreateApiKeyRequest) (*models.ApiKey, string, error) {
	plaintext, secretHash, prefix, err := m.mint()
	if err != nil {
		return nil, "", err
	}

	var expiresAt *time.Time
	if req.ExpiresIn != nil && *req.ExpiresIn > 0 {
		t := m.clock.Now().AddDate(0, 0, *req.ExpiresIn)
		expiresAt = &t
	}

	key := &models.ApiKey{
		ID:          m.ids.NewID(),
		OwnerUserID: ownerUserID,
		OrgID:       orgID,
		Prefix:      prefix,
		Hash:        secretHash,
		Name:        req.Name,
		Scopes:      models.ScopeSet(req.Scopes),
		Environment: req.Environment,
		Limits:      req.Limits,
		IPAllowlist: req.IPAllowlist,
		ExpiresAt:   expiresAt,
		CreatedAt:   m.clock.Now(),
	}
	if err := m.repo.CreateApiKey(ctx, key); err != nil {
		metrics.RecordAPIKeyOperation("create", false)
		return nil, "", fmt.Errorf("auth: store api key: %w", err)
	}
	metrics.RecordAPIKeyOperation("create", true)
	metrics.APIKeyActiveTotal.Inc()
	return key, plaintext, nil
}

// Rotate issues a replacement key sharing the old key's scopes/limits, and
// schedules the old key's revocation after graceSeconds.
func (m *APIKeyManager) Rotate(ctx context.Context, oldKeyID string, graceSeconds int64) (*models.ApiKey, string, error) {
	old, err := m.repo.GetApiKey(ctx, oldKeyID)
	if err != nil {
		return nil, "", err
	}

	plaintext, secretHash, prefix, err := m.mint()
	if err != nil {
		return nil, "", err
	}

	next := &models.ApiKey{
		ID:          m.ids.NewID(),
		OwnerUserID: old.OwnerUserID,
		OrgID:       old.OrgID,
		Prefix:      prefix,
		Hash:        secretHash,
		Name:        old.Name,
		Scopes:      old.Scopes,
		Environment: old.Environment,
		Limits:      old.Limits,
		IPAllowlist: old.IPAllowlist,
		ExpiresAt:   old.ExpiresAt,
		CreatedAt:   m.clock.Now(),
	}
	if err := m.repo.CreateApiKey(ctx, next); err != nil {
		metrics.RecordAPIKeyOperation("rotate", false)
		return nil, "", fmt.Errorf("auth: store rotated api key: %w", err)
	}
	if err := m.repo.SetApiKeyRotatedTo(ctx, oldKeyID, next.ID); err != nil {
		metrics.RecordAPIKeyOperation("rotate", false)
		return nil, "", fmt.Errorf("auth: link rotated api key: %w", err)
	}
	if err := m.repo.ScheduleApiKeyRevocation(ctx, oldKeyID, graceSeconds); err != nil {
		metrics.RecordAPIKeyOperation("rotate", false)
		return nil, "", fmt.Errorf("auth: schedule old key revocation: %w", err)
	}
	metrics.RecordAPIKeyOperation("rotate", true)
	return next, plaintext, nil
}

// Revoke immediately revokes a key.
func (m *APIKeyManager) Revoke(ctx context.Context, keyID string) error {
	err := m.repo.RevokeApiKey(ctx, keyID)
	metrics.RecordAPIKeyOperation("revoke", err == nil)
	if err == nil {
		metrics.APIKeyActiveTotal.Dec()
	}
	return err
}

// Verify resolves a plaintext API key to its stored record, checking
// revocation, expiry, and the IP allowlist. Usage (last-used timestamp)
// is updated asynchronously, fire-and-forget, so the hot authentication
// path never waits on it.
func (m *APIKeyManager) Verify(ctx context.Context, plaintext, clientIP string) (*models.ApiKey, error) {
	if len(plaintext) < models.APIKeyPrefixLen {
		metrics.RecordAPIKeyValidation("invalid")
		return nil, ErrUnknownKey
	}
	prefix := plaintext[:models.APIKeyPrefixLen]

	candidates, err := m.repo.ListApiKeysByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("auth: list keys by prefix: %w", err)
	}

	var match *models.ApiKey
	for _, candidate := range candidates {
		if verifySecret(plaintext, candidate.Hash) {
			match = candidate
			break
		}
	}
	if match == nil {
		metrics.RecordAPIKeyValidation("invalid")
		return nil, ErrUnknownKey
	}

	now := m.clock.Now()
	if match.IsRevoked(now) {
		metrics.RecordAPIKeyValidation("revoked")
		return nil, ErrKeyRevoked
	}
	if match.IsExpired(now) {
		metrics.RecordAPIKeyValidation("expired")
		return nil, ErrKeyExpired
	}
	if !match.IsIPAllowed(clientIP) {
		metrics.RecordAPIKeyValidation("ip_denied")
		return nil, ErrIPNotAllowed
	}

	keyID := match.ID
	if m.writer != nil {
		m.writer.Enqueue(keyID, clientIP, now)
	} else {
		go func() {
			updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.repo.UpdateApiKeyLastUsed(updateCtx, keyID, clientIP)
		}()
	}

	metrics.RecordAPIKeyValidation("valid")
	return match, nil
}

func (m *APIKeyManager) mint() (plaintext, hash, prefix string, err error) {
	secretBytes := make([]byte, apiKeySecretBytes)
	if _, err = rand.Read(secretBytes); err != nil {
		return "", "", "", fmt.Errorf("auth: generate api key secret: %w", err)
	}
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)
	plaintext = models.APIKeyPrefix + secret

	hashed, err := hashSecret(plaintext)
	if err != nil {
		return "", "", "", err
	}

	prefixLen := models.APIKeyPrefixLen
	if len(plaintext) < prefixLen {
		prefixLen = len(plaintext)
	}
	return plaintext, hashed, plaintext[:prefixLen], nil
}

// hashSecret derives a memory-hard argon2id digest of plaintext, encoding
// the salt and parameters alongside the hash so verifySecret needs no
// side-channel configuration lookup.
func hashSecret(plaintext string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate api key salt: %w", err)
	}
	digest := argon2.IDKey([]byte(plaintext), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// verifySecret recomputes the argon2id digest from the parameters and
// salt encoded in storedHash and compares it in constant time.
func verifySecret(plaintext, storedHash string) bool {
	parts := strings.Split(storedHash, "$")
	if len(parts) != 5 || parts[0] != "argon2id" {
		return false
	}

	var version, memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(plaintext), salt, iterations, memory, uint8(threads), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
