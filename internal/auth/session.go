// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// SessionTokenBytes is the size of the random token material.
// 32 bytes = 64 hex chars on the wire.
const SessionTokenBytes = 32

// Session binds an opaque token to an authenticated user.
// ExpiresAt is nil for sessions that never expire, which is the default:
// sessions stay valid until logged out or removed from the store.
type Session struct {
	ID         ulid.ULID
	UserID     ulid.ULID
	Username   string
	TokenHash  string
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// NewSession creates a validated Session instance.
// expiresAt may be nil for a session with indefinite validity.
func NewSession(userID ulid.ULID, username, tokenHash string, expiresAt *time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if username == "" {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("username cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt != nil && expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero when provided")
	}

	now := time.Now()
	return &Session{
		ID:         ulid.Make(),
		UserID:     userID,
		Username:   username,
		TokenHash:  tokenHash,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

// IsExpired returns true if the session has an expiry and it has passed.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return s.ExpiresAt != nil && t.After(*s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is handed to the client; only the hash is stored.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifySessionToken checks if the plaintext token matches the stored hash
// using a constant-time comparison.
func VerifySessionToken(token, hash string) (bool, error) {
	if token == "" {
		return false, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if hash == "" {
		return false, oops.Code("SESSION_HASH_EMPTY").Errorf("stored hash cannot be empty")
	}
	computed := HashSessionToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

// SessionRepository manages session persistence. The Session Manager owns
// all session state; implementations are injectable (PostgreSQL, in-memory).
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// GetByUser retrieves all sessions for a user.
	GetByUser(ctx context.Context, userID ulid.ULID) ([]*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// DeleteByTokenHash removes the session bound to the token hash.
	// Deleting an absent session is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByUser removes all sessions for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error
}
