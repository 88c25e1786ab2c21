// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordBcryptCost is the bcrypt cost factor for user passwords, the
// only bcrypt use in this package (API key secrets, being high-entropy
// and machine-generated, use argon2id instead; see apikey.go).
const passwordBcryptCost = 12

// MinPasswordLength is the floor enforced at registration.
const MinPasswordLength = 8

// ErrPasswordTooShort is returned by HashPassword for a password under
// MinPasswordLength.
var ErrPasswordTooShort = fmt.Errorf("auth: password must be at least %d characters", MinPasswordLength)

// ErrPasswordMismatch is returned by VerifyPassword when the password
// does not match the stored hash.
var ErrPasswordMismatch = fmt.Errorf("auth: password does not match")

// HashPassword bcrypt-hashes a user-chosen password for storage.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordBcryptCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks password against a stored bcrypt hash.
func VerifyPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrPasswordMismatch
	}
	return nil
}
