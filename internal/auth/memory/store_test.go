// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/auth/memory"
)

func newUser(t *testing.T, username string) *auth.User {
	t.Helper()
	user, err := auth.NewUser(username, "$argon2id$hash")
	require.NoError(t, err)
	return user
}

func TestUserStore(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get back", func(t *testing.T) {
		store := memory.NewUserStore()
		user := newUser(t, "alice")

		require.NoError(t, store.Create(ctx, user))

		byID, err := store.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Username, byID.Username)

		byName, err := store.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byName.ID)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		store := memory.NewUserStore()
		require.NoError(t, store.Create(ctx, newUser(t, "alice")))

		err := store.Create(ctx, newUser(t, "alice"))
		assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
	})

	t.Run("username match is case-sensitive", func(t *testing.T) {
		store := memory.NewUserStore()
		require.NoError(t, store.Create(ctx, newUser(t, "alice")))

		require.NoError(t, store.Create(ctx, newUser(t, "Alice")))

		_, err := store.GetByUsername(ctx, "ALICE")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		store := memory.NewUserStore()
		user := newUser(t, "alice")
		require.NoError(t, store.Create(ctx, user))

		got, err := store.GetByID(ctx, user.ID)
		require.NoError(t, err)
		got.Username = "mallory"

		again, err := store.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", again.Username)
	})

	t.Run("delete fires cascade hooks", func(t *testing.T) {
		store := memory.NewUserStore()
		user := newUser(t, "alice")
		require.NoError(t, store.Create(ctx, user))

		var cascaded ulid.ULID
		store.OnDelete(func(userID ulid.ULID) { cascaded = userID })

		require.NoError(t, store.Delete(ctx, user.ID))
		assert.Equal(t, user.ID, cascaded)

		_, err := store.GetByID(ctx, user.ID)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("delete unknown user", func(t *testing.T) {
		store := memory.NewUserStore()
		err := store.Delete(ctx, ulid.Make())
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()

	newSession := func(t *testing.T, userID ulid.ULID, tokenHash string) *auth.Session {
		t.Helper()
		session, err := auth.NewSession(userID, "alice", tokenHash, nil)
		require.NoError(t, err)
		return session
	}

	t.Run("create and resolve by token hash", func(t *testing.T) {
		store := memory.NewSessionStore()
		session := newSession(t, ulid.Make(), "hash1")

		require.NoError(t, store.Create(ctx, session))

		got, err := store.GetByTokenHash(ctx, "hash1")
		require.NoError(t, err)
		assert.Equal(t, session.UserID, got.UserID)
	})

	t.Run("unknown token hash", func(t *testing.T) {
		store := memory.NewSessionStore()
		_, err := store.GetByTokenHash(ctx, "unknown")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("get by user", func(t *testing.T) {
		store := memory.NewSessionStore()
		userID := ulid.Make()
		require.NoError(t, store.Create(ctx, newSession(t, userID, "hash1")))
		require.NoError(t, store.Create(ctx, newSession(t, userID, "hash2")))
		require.NoError(t, store.Create(ctx, newSession(t, ulid.Make(), "hash3")))

		sessions, err := store.GetByUser(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})

	t.Run("update last seen", func(t *testing.T) {
		store := memory.NewSessionStore()
		session := newSession(t, ulid.Make(), "hash1")
		require.NoError(t, store.Create(ctx, session))

		seen := time.Now().Add(time.Minute)
		require.NoError(t, store.UpdateLastSeen(ctx, session.ID, seen))

		got, err := store.GetByTokenHash(ctx, "hash1")
		require.NoError(t, err)
		assert.True(t, got.LastSeenAt.Equal(seen))
	})

	t.Run("delete by token hash is idempotent", func(t *testing.T) {
		store := memory.NewSessionStore()
		session := newSession(t, ulid.Make(), "hash1")
		require.NoError(t, store.Create(ctx, session))

		require.NoError(t, store.DeleteByTokenHash(ctx, "hash1"))
		require.NoError(t, store.DeleteByTokenHash(ctx, "hash1"))

		_, err := store.GetByTokenHash(ctx, "hash1")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("delete by user removes all the user's sessions", func(t *testing.T) {
		store := memory.NewSessionStore()
		userID := ulid.Make()
		require.NoError(t, store.Create(ctx, newSession(t, userID, "hash1")))
		require.NoError(t, store.Create(ctx, newSession(t, userID, "hash2")))
		require.NoError(t, store.Create(ctx, newSession(t, ulid.Make(), "hash3")))

		require.NoError(t, store.DeleteByUser(ctx, userID))

		sessions, err := store.GetByUser(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, sessions)

		_, err = store.GetByTokenHash(ctx, "hash3")
		assert.NoError(t, err)
	})
}
