// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service provides registration, login, and session resolution.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	hasher     PasswordHasher
	sessionTTL time.Duration // 0 = sessions never expire
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSessionTTL sets an expiry on newly issued sessions. The default is no
// expiry, matching the behavior of leaving sessions valid until logout.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.sessionTTL = ttl
	}
}

// NewService creates a new auth Service.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher, opts ...ServiceOption) *Service {
	s := &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with the given credentials.
// Fails with AUTH_DUPLICATE_USERNAME (wrapping ErrDuplicateUsername) when
// the username is already taken.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(username, hash)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, oops.Code("AUTH_DUPLICATE_USERNAME").
				With("username", username).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert user").
			With("username", username).
			Wrap(err)
	}

	return user, nil
}

// Login verifies credentials and issues a new session.
// Returns the session and the plaintext token handed to the client.
// Uses constant-time operations to prevent timing-based username enumeration.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, string, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	// Pick the hash to verify against: the real one, or the dummy so a
	// missing user costs the same as a wrong password.
	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	// Missing user and wrong password are indistinguishable to the caller.
	if !userExists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid username or password")
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	var expiresAt *time.Time
	if s.sessionTTL > 0 {
		t := time.Now().Add(s.sessionTTL)
		expiresAt = &t
	}

	session, err := NewSession(user.ID, user.Username, tokenHash, expiresAt)
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, token, nil
}

// Resolve validates a session token and returns the bound session.
// Fails with SESSION_INVALID for unknown tokens and SESSION_EXPIRED for
// sessions past their expiry. Updates LastSeenAt best-effort.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID").Errorf("session token cannot be empty")
	}

	tokenHash := HashSessionToken(token)

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Errorf("invalid session token")
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, oops.Code("SESSION_EXPIRED").Errorf("session has expired")
	}

	_ = s.sessions.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck // Best effort, resolution succeeds regardless

	return session, nil
}

// User returns the account record for the given id. Profile callers use
// this for fresh account data instead of the session's denormalized copy.
// A missing user means the session outlived its account; that reads as
// SESSION_INVALID so stale callers get logged out rather than a 500.
func (s *Service) User(ctx context.Context, id ulid.ULID) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").
				With("user_id", id.String()).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}
	return user, nil
}

// Sessions lists a user's sessions, newest first per the store's ordering,
// skipping any that have already expired.
func (s *Service) Sessions(ctx context.Context, userID ulid.ULID) ([]*Session, error) {
	sessions, err := s.sessions.GetByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("SESSION_LIST_FAILED").
			With("operation", "get sessions by user").
			Wrap(err)
	}

	active := make([]*Session, 0, len(sessions))
	for _, session := range sessions {
		if !session.IsExpired() {
			active = append(active, session)
		}
	}
	return active, nil
}

// Logout removes the session bound to the token. Idempotent: ending an
// already-absent session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token)); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}
