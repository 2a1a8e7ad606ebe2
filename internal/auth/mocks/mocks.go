// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package mocks provides hand-maintained testify mocks for the auth
// repository and hasher interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/taskvault/taskvault/internal/auth"
)

// testingT is the subset of *testing.T the constructors need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a mock implementation of auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a mock wired to the test lifecycle.
func NewMockUserRepository(t testingT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	args := m.Called(ctx, id)
	var user *auth.User
	if args.Get(0) != nil {
		user = args.Get(0).(*auth.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	args := m.Called(ctx, username)
	var user *auth.User
	if args.Get(0) != nil {
		user = args.Get(0).(*auth.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a mock wired to the test lifecycle.
func NewMockSessionRepository(t testingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	args := m.Called(ctx, tokenHash)
	var session *auth.Session
	if args.Get(0) != nil {
		session = args.Get(0).(*auth.Session)
	}
	return session, args.Error(1)
}

func (m *MockSessionRepository) GetByUser(ctx context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	args := m.Called(ctx, userID)
	var sessions []*auth.Session
	if args.Get(0) != nil {
		sessions = args.Get(0).([]*auth.Session)
	}
	return sessions, args.Error(1)
}

func (m *MockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	args := m.Called(ctx, id, lastSeen)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock wired to the test lifecycle.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.UserRepository    = (*MockUserRepository)(nil)
	_ auth.SessionRepository = (*MockSessionRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
)
