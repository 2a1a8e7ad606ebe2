// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// Repository manages task persistence. Every method that touches existing
// rows takes the owner id and must scope the operation to it; the owner
// scope on the mutation path is the most important invariant in the system.
type Repository interface {
	// Create persists a new task. Callers must validate the task first.
	Create(ctx context.Context, t *Task) error

	// ListByOwner retrieves all tasks owned by ownerID.
	// Order is implementation-defined; the PostgreSQL implementation
	// orders by id, which for ULIDs approximates creation order.
	ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*Task, error)

	// ToggleCompletion flips the completed flag of the task matching both
	// id and owner in a single atomic conditional update and returns the
	// updated task. Returns ErrNotFound (wrapped) when no row matches.
	ToggleCompletion(ctx context.Context, ownerID, taskID ulid.ULID) (*Task, error)

	// Delete removes the task matching both id and owner. Returns the
	// number of rows deleted (0 or 1); deleting a missing or foreign task
	// is not an error.
	Delete(ctx context.Context, ownerID, taskID ulid.ULID) (int64, error)
}
