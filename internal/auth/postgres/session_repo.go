// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
// The username is denormalized into the session row at create time so that
// resolving a token costs a single lookup.
type SessionRepository struct {
	pool dbPool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool dbPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, username, token_hash, expires_at, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.Username,
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, username, token_hash, expires_at, created_at, last_seen_at
		FROM sessions
		WHERE token_hash = $1
	`, tokenHash)

	session, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return session, nil
}

// GetByUser retrieves all sessions for a user, newest first.
func (r *SessionRepository) GetByUser(ctx context.Context, userID ulid.ULID) ([]*auth.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, username, token_hash, expires_at, created_at, last_seen_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_USER_FAILED").
			With("operation", "get sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, oops.Code("SESSION_SCAN_FAILED").
				With("operation", "scan session row").
				Wrap(err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("SESSION_ROWS_ERROR").
			With("operation", "iterate session rows").
			Wrap(err)
	}

	return sessions, nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (r *SessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE sessions SET last_seen_at = $2
		WHERE id = $1
	`, id.String(), lastSeen)
	if err != nil {
		return oops.Code("SESSION_UPDATE_LAST_SEEN_FAILED").
			With("operation", "update last_seen_at").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByTokenHash removes the session bound to the token hash.
// Deleting an absent session is a valid state, not an error.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session by token hash").
			Wrap(err)
	}
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// scanSession scans a single row into a Session.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSession(row pgx.Row) (*auth.Session, error) {
	var (
		idStr     string
		userIDStr string
		session   auth.Session
	)

	err := row.Scan(
		&idStr,
		&userIDStr,
		&session.Username,
		&session.TokenHash,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.LastSeenAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	session.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}

	session.UserID, err = ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &session, nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
