// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and internally
// consistent.
func (c *Config) Validate() error {
	if err := c.validateEdition(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateOIDC(); err != nil {
		return err
	}
	return c.validateRecommend()
}

func (c *Config) validateEdition() error {
	switch c.Edition {
	case EditionCloud, EditionSelfHosted:
		return nil
	default:
		return fmt.Errorf("edition must be %q or %q, got %q", EditionCloud, EditionSelfHosted, c.Edition)
	}
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be one of development, staging, production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "memory", "badger":
	default:
		return fmt.Errorf("database.driver must be \"memory\" or \"badger\"")
	}
	if c.Database.Driver == "badger" && c.Database.Path == "" {
		return fmt.Errorf("database.path is required when database.driver is \"badger\"")
	}
	return nil
}

// validateSecurity requires a JWT secret of at least 32 characters once
// the server runs in production and skips the check otherwise. The
// default secret is empty, and auth.NewJWTManager rejects a secret under
// 32 characters in every environment, so the server does not start
// without one.
func (c *Config) validateSecurity() error {
	if c.Server.Environment != "production" {
		return nil
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters in production")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("security.jwt_secret contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateOIDC requires the fields the discovery and token-exchange calls
// cannot run without, once an issuer opts a deployment into OIDC at all.
func (c *Config) validateOIDC() error {
	oidc := c.Security.OIDC
	if oidc.IssuerURL == "" {
		return nil
	}
	if oidc.ClientID == "" {
		return fmt.Errorf("security.oidc.client_id is required when security.oidc.issuer_url is set")
	}
	if oidc.RedirectURL == "" {
		return fmt.Errorf("security.oidc.redirect_url is required when security.oidc.issuer_url is set")
	}
	if oidc.OrgClaim == "" {
		return fmt.Errorf("security.oidc.org_claim is required when security.oidc.issuer_url is set")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.BufferCapacity < 1 {
		return fmt.Errorf("recommend.buffer_capacity must be positive")
	}
	if c.Recommend.FreshTTL <= 0 {
		return fmt.Errorf("recommend.fresh_ttl must be positive")
	}
	if c.Recommend.StaleWhileError < 0 {
		return fmt.Errorf("recommend.stale_while_error must not be negative")
	}
	return nil
}

// containsPlaceholder flags the obvious copy-pasted example secrets so a
// production deployment cannot accidentally ship with one.
func containsPlaceholder(secret string) bool {
	lower := strings.ToLower(secret)
	for _, p := range []string{"changeme", "change-me", "your-secret", "example", "placeholder", "secret123"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
