// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package interaction implements the Interaction Ingestor: the validated,
// append-only write path for play/skip/like/impression-feedback events.
// A single event runs session-ownership, sequence-ordering, duration-
// bound, and completion/skip downgrade checks before being persisted;
// IngestBatch runs the same checks per event, in order, stopping at the
// first hard validation error.
package interaction
