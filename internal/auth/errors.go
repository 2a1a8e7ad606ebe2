// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when registering a username that is
// already taken. Usernames are compared case-sensitively.
var ErrDuplicateUsername = errors.New("username already exists")
