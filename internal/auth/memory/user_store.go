// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package memory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskvault/taskvault/internal/auth"
)

// UserStore implements auth.UserRepository with in-process maps.
// Safe for concurrent use.
type UserStore struct {
	mu         sync.RWMutex
	byID       map[ulid.ULID]*auth.User
	byUsername map[string]*auth.User

	// onDelete hooks let a composed store cascade user deletion into
	// dependent stores (tasks, sessions), mirroring the schema-level
	// ON DELETE CASCADE of the PostgreSQL implementation.
	onDelete []func(userID ulid.ULID)
}

// NewUserStore creates an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:       make(map[ulid.ULID]*auth.User),
		byUsername: make(map[string]*auth.User),
	}
}

// OnDelete registers a cascade hook invoked after a user is deleted.
func (s *UserStore) OnDelete(hook func(userID ulid.ULID)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, hook)
}

// Create stores a new user. Usernames are unique, case-sensitively.
func (s *UserStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return auth.ErrDuplicateUsername
	}

	cp := *user
	s.byID[user.ID] = &cp
	s.byUsername[user.Username] = &cp
	return nil
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// GetByUsername retrieves a user by exact username match.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byUsername[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

// Delete removes a user and fires the registered cascade hooks.
func (s *UserStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	user, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return auth.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byUsername, user.Username)
	hooks := make([]func(ulid.ULID), len(s.onDelete))
	copy(hooks, s.onDelete)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook(id)
	}
	return nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserStore)(nil)
