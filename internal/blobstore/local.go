// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package blobstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Local is a development-only BlobStore backed by an in-memory set of
// known keys and a URL template. It never serves bytes; it exists so the
// serving plane has something to call behind the BlobStore interface
// without a real object-storage backend configured.
type Local struct {
	mu        sync.RWMutex
	known     map[string]struct{}
	urlPrefix string
}

// NewLocal returns a Local blob store that resolves any registered key to
// urlPrefix + "/" + key with a query-string expiry marker.
func NewLocal(urlPrefix string) *Local {
	return &Local{known: make(map[string]struct{}), urlPrefix: urlPrefix}
}

var _ BlobStore = (*Local)(nil)

// Register marks key as present, as if a blob had been uploaded out of
// band.
func (l *Local) Register(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.known[key] = struct{}{}
}

func (l *Local) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	l.mu.RLock()
	_, ok := l.known[key]
	l.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return fmt.Sprintf("%s/%s?expires_in=%d", l.urlPrefix, key, int64(expiry.Seconds())), nil
}

func (l *Local) Exists(_ context.Context, key string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.known[key]
	return ok, nil
}
