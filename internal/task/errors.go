// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no task matches the given id and owner.
// A task that exists but belongs to someone else is indistinguishable from
// a task that does not exist; the scoped lookup never leaks existence.
var ErrNotFound = errors.New("task not found")

// ValidationError represents an input validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
