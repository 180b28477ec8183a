// Package id generates link tokens and entity identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TokenLength is the number of NanoID characters in a link token.
// At 64 symbols per character this carries 192 bits of entropy.
const TokenLength = 32

// Generate creates a prefixed unique ID using NanoID
// Format: prefix-nanoid (e.g., "sub-V1StGXR8_Z5jdHi6B-myT")
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	// Use default NanoID (21 characters, URL-safe alphabet)
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewToken returns a fresh bearer token for a testimonial link. Tokens are
// URL-safe and drawn from crypto/rand, so they carry no counter or clock.
//
// An entropy failure is not recoverable; NewToken panics rather than
// handing out a weak token.
func NewToken() string {
	token, err := gonanoid.New(TokenLength)
	if err != nil {
		panic(fmt.Sprintf("token entropy unavailable: %v", err))
	}
	return token
}
