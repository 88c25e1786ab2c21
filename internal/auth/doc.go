// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package auth implements the Credential Verifier: session bearer tokens
// (JWT, golang-jwt/jwt/v5) and long-lived API keys (argon2id, a
// memory-hard hash as required for full-secret storage), unified behind
// a priority-ordered MultiAuthenticator chain that tries each registered
// authenticator in turn until one recognizes the credential.
package auth
