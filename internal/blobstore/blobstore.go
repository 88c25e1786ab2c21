// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package blobstore defines the object-storage boundary for audio blobs.
// Object storage itself runs outside the serving plane; this is the
// interface a real backend, such as an S3-compatible bucket, plugs
// into. The serving plane only ever needs a signed retrieval URL and
// existence checks; it never reads or writes blob bytes directly.
package blobstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no blob exists at the given key.
var ErrNotFound = errors.New("blobstore: not found")

// BlobStore is a boundary for resolving a track id to a playable audio
// location without depending on any particular object-storage backend.
// No component in this repository calls it yet.
type BlobStore interface {
	// SignedURL returns a time-limited URL the client can use to fetch the
	// blob directly, bypassing the serving plane for the transfer itself.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Exists reports whether a blob is present at key.
	Exists(ctx context.Context, key string) (bool, error)
}
