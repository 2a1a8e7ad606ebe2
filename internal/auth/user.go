// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints on the registration path.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
)

// User represents a registered account. PasswordHash holds the argon2id
// PHC string, never the cleartext password.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a User with a fresh ID and timestamps.
// The password hash must already be computed by a PasswordHasher.
func NewUser(username, passwordHash string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateUsername checks the registration-path length bounds.
// Uniqueness is enforced by the repository, case-sensitively.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrDuplicateUsername (wrapped)
	// if the username is already taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by exact username match.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Delete removes a user. The store cascade-deletes the user's tasks
	// and sessions. No endpoint exposes this; it exists for operational
	// data management and referential-integrity tests.
	Delete(ctx context.Context, id ulid.ULID) error
}
