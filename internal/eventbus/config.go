// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package eventbus publishes accepted interactions onto a core NATS
// subject (JetStream is disabled) for external consumers (model training, analytics warehouses)
// named out of scope by the serving plane itself — the serving plane
// only owns getting the event published, never what happens downstream
// of the subject.
package eventbus

import "time"

// Config configures the NATS publisher. A zero-value URL disables
// publishing entirely; see NewPublisher.
type Config struct {
	URL              string
	Subject          string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// DefaultConfig returns production defaults for a publisher pointed at
// url, publishing to the given subject.
func DefaultConfig(url, subject string) Config {
	return Config{
		URL:              url,
		Subject:          subject,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}
