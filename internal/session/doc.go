// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package session implements the listening-session lifecycle: Start,
// Heartbeat, End, and the background expiry sweep. The Cache is the
// authoritative index of which sessions are currently active (keyed
// "session:active:{id}"), refreshed on every heartbeat; the Repository
// durably records the session row and its exactly-once finalized
// summary. A session surviving past IDLE_TIMEOUT without a heartbeat is
// swept into the Expired state by SweeperService, the background
// service the supervisor tree's background layer runs.
package session
