// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package memory provides in-memory implementations of the auth
// repositories. The session store is the injectable alternative to the
// PostgreSQL one for single-process deployments and tests; there is no
// hidden process-wide session state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskvault/taskvault/internal/auth"
)

// SessionStore implements auth.SessionRepository with an in-process map
// keyed by token hash. Safe for concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*auth.Session // token hash -> session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*auth.Session),
	}
}

// Create stores a new session.
func (s *SessionStore) Create(_ context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.TokenHash] = &cp
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (s *SessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

// GetByUser retrieves all sessions for a user.
func (s *SessionStore) GetByUser(_ context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*auth.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			cp := *session
			sessions = append(sessions, &cp)
		}
	}
	return sessions, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (s *SessionStore) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		if session.ID == id {
			session.LastSeenAt = lastSeen
			return nil
		}
	}
	return auth.ErrNotFound
}

// DeleteByTokenHash removes the session bound to the token hash.
// Deleting an absent session is not an error.
func (s *SessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, tokenHash)
	return nil
}

// DeleteByUser removes all sessions for a user.
func (s *SessionStore) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, hash)
		}
	}
	return nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionStore)(nil)
