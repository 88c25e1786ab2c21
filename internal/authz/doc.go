// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package authz enforces per-operation scope requirements on top of a
// verified Principal. Scope checking here is a flat operation-to-scope
// table rather than a policy engine: the domain has no role hierarchy or
// resource-level ownership graph to reason about, just "does this
// principal's scope set satisfy what this operation requires." The
// decision cache in front of the check avoids re-walking the scope set
// for repeated checks on the same (principal, operation) pair within a
// request burst, which is common on hot endpoints like recommendations.
package authz
