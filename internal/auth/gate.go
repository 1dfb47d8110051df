// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// Gate decides admin logins. With a configured hash the password is
// checked against it. Without one the gate runs in parity mode and compares
// against the adminPassword stored in the site document.
type Gate struct {
	hash string
}

// NewGate creates a Gate. An empty hash selects parity mode.
func NewGate(hash string) (*Gate, error) {
	if hash != "" {
		if err := ValidateHash(hash); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
	}
	return &Gate{hash: hash}, nil
}

// ParityMode reports whether logins are checked against the document.
func (g *Gate) ParityMode() bool {
	return g.hash == ""
}

// Check reports whether password is the admin password. documentPassword
// is only consulted in parity mode.
func (g *Gate) Check(password, documentPassword string) bool {
	if !g.ParityMode() {
		ok, err := CheckPassword(password, g.hash)
		return err == nil && ok
	}
	if documentPassword == "" {
		return false
	}
	// Hash both sides so the comparison does not leak the length.
	a := sha256.Sum256([]byte(password))
	b := sha256.Sum256([]byte(documentPassword))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
