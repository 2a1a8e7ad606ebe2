// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package auth provides credential storage and session management for
// TaskVault. It owns user accounts (argon2id password hashing, unique
// usernames) and opaque session tokens that bind a request to an
// authenticated user.
package auth
