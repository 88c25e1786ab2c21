// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package idgen mints opaque unique identifiers for entities across the
// serving plane. It wraps google/uuid so that every component depends
// on this package rather than importing google/uuid directly, making it
// trivial to swap the underlying ID scheme — or inject a deterministic
// generator in tests — without touching callers.
package idgen

import "github.com/google/uuid"

// Generator mints opaque unique IDs. Production code uses UUIDGenerator;
// tests can supply a Generator that returns a fixed sequence.
type Generator interface {
	NewID() string
}

// UUIDGenerator mints RFC 4122 v4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// New returns the production ID generator.
func New() Generator {
	return UUIDGenerator{}
}

// Sequential is a deterministic Generator for tests: it returns ids from
// a fixed prefix plus an incrementing counter, so assertions can reference
// exact ids instead of just "some non-empty string".
type Sequential struct {
	Prefix  string
	counter int
}

// NewID returns the next id in the sequence.
func (s *Sequential) NewID() string {
	s.counter++
	return idFromCounter(s.Prefix, s.counter)
}

func idFromCounter(prefix string, n int) string {
	const digits = "0123456789"
	buf := []byte{}
	if n == 0 {
		buf = append(buf, digits[0])
	}
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return prefix + string(buf)
}
