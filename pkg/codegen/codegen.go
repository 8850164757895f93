// Package codegen issues the short numeric codes mailed during registration,
// password reset and email change.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// DefaultTTL is how long an issued code stays valid.
	DefaultTTL = 5 * time.Minute

	minCode = 1000
	maxCode = 9999
)

// Code is a generated value and the instant after which it no longer verifies.
type Code struct {
	Value     string
	ExpiresAt time.Time
}

// Expired reports whether now is past the expiry. A code checked exactly at
// ExpiresAt is still valid.
func (c Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Generate returns a uniformly random 4-digit code in [1000, 9999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+minCode), nil
}

// Generator produces code values. Generate is the production generator.
type Generator func() (string, error)

// Issue generates a code expiring ttl after now. A non-positive ttl falls back to DefaultTTL.
func (g Generator) Issue(now time.Time, ttl time.Duration) (Code, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	value, err := g()
	if err != nil {
		return Code{}, err
	}
	return Code{Value: value, ExpiresAt: now.Add(ttl)}, nil
}

// Issue generates a random code with Generate.
func Issue(now time.Time, ttl time.Duration) (Code, error) {
	return Generator(Generate).Issue(now, ttl)
}
