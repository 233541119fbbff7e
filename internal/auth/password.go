// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides argon2id password hashing and verification for
// credential storage.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2 parameters (OWASP recommended second choice: m=19456, t=2, p=1)
const (
	argon2Time    = 2
	argon2Memory  = 19 * 1024
	argon2Threads = 1
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

type hashParams struct {
	version int
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// decodeHash parses an encoded hash of the form
// $argon2id$v=19$m=19456,t=2,p=1$salt$hash.
func decodeHash(encoded string) (hashParams, error) {
	var p hashParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return p, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return p, fmt.Errorf("unsupported hash type: %s", parts[1])
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &p.version); err != nil {
		return p, fmt.Errorf("parsing version: %w", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, fmt.Errorf("parsing parameters: %w", err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, fmt.Errorf("decoding salt: %w", err)
	}
	if p.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, fmt.Errorf("decoding hash: %w", err)
	}
	return p, nil
}

// HashPassword creates an argon2id hash of the password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// CheckPassword verifies a password against an argon2id hash using a
// constant-time comparison.
func CheckPassword(password, encoded string) (bool, error) {
	p, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	hash := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.hash)))
	return subtle.ConstantTimeCompare(hash, p.hash) == 1, nil
}

// NeedsRehash reports whether an encoded hash was created with parameters
// different from the current defaults.
func NeedsRehash(encoded string) bool {
	p, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return p.memory != argon2Memory || p.time != argon2Time || p.threads != argon2Threads
}
