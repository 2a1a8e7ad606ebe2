// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package store provides PostgreSQL connection bootstrap and schema
// migration for TaskVault.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry parameters. A cold database (e.g. a container still
// starting) gets a short fibonacci backoff before we give up.
const (
	connectRetryBase = 250 * time.Millisecond
	connectRetryMax  = 5
)

// Connect opens a pgx connection pool and verifies it with a ping,
// retrying transient failures with fibonacci backoff.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create connection pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectRetryMax, retry.NewFibonacci(connectRetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_PING_FAILED").
			With("operation", "ping database").
			Wrap(err)
	}

	return pool, nil
}
