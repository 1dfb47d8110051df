// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth verifies the admin password. Hashes are argon2id (the
// format produced by HashPassword) or bcrypt.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2 parameters (OWASP recommended second choice: m=19456, t=2, p=1)
const (
	Argon2Time    = 2
	Argon2Memory  = 19 * 1024
	Argon2Threads = 1
	Argon2KeyLen  = 32
	Argon2SaltLen = 16
)

// ErrUnsupportedHash is returned for hashes that are neither argon2id nor bcrypt.
var ErrUnsupportedHash = errors.New("auth: unsupported password hash")

// HashPassword creates an Argon2id hash of the password.
// Returns encoded hash in format: $argon2id$v=19$m=19456,t=2,p=1$salt$hash
func HashPassword(password string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, Argon2Time, Argon2Memory, Argon2Threads, Argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, Argon2Memory, Argon2Time, Argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// CheckPassword verifies a password against an argon2id or bcrypt hash.
// A mismatch is (false, nil); an error means the hash itself is unusable.
func CheckPassword(password, encodedHash string) (bool, error) {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2(password, encodedHash)
	case isBcrypt(encodedHash):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	default:
		return false, ErrUnsupportedHash
	}
}

// ValidateHash checks that encodedHash can be used by CheckPassword.
func ValidateHash(encodedHash string) error {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		_, _, err := parseArgon2(encodedHash)
		return err
	case isBcrypt(encodedHash):
		_, err := bcrypt.Cost([]byte(encodedHash))
		return err
	default:
		return ErrUnsupportedHash
	}
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

type argon2Params struct {
	memory, time uint32
	threads      uint8
}

func parseArgon2(encodedHash string) (argon2Params, [2][]byte, error) {
	var p argon2Params
	var raw [2][]byte

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, raw, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return p, raw, fmt.Errorf("unsupported hash type: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, raw, fmt.Errorf("parsing version: %w", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, raw, fmt.Errorf("parsing parameters: %w", err)
	}

	var err error
	if raw[0], err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, raw, fmt.Errorf("decoding salt: %w", err)
	}
	if raw[1], err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, raw, fmt.Errorf("decoding hash: %w", err)
	}
	return p, raw, nil
}

// verifyArgon2 uses constant-time comparison to prevent timing attacks.
func verifyArgon2(password, encodedHash string) (bool, error) {
	p, raw, err := parseArgon2(encodedHash)
	if err != nil {
		return false, err
	}
	salt, expected := raw[0], raw[1]
	hash := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(expected)))
	return subtle.ConstantTimeCompare(hash, expected) == 1, nil
}
