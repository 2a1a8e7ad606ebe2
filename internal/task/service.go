// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service exposes owner-scoped task operations. The owner id must come
// from a resolved session; the service trusts it as the tenant boundary.
type Service struct {
	tasks Repository
}

// NewService creates a new task Service.
func NewService(tasks Repository) *Service {
	return &Service{tasks: tasks}
}

// Create validates and inserts a new task for the owner.
// Validation failures surface as *ValidationError.
func (s *Service) Create(ctx context.Context, ownerID ulid.ULID, title string, description *string) (*Task, error) {
	t, err := New(ownerID, title, description)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").
			With("operation", "insert task").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}

	return t, nil
}

// List returns all tasks owned by ownerID.
func (s *Service) List(ctx context.Context, ownerID ulid.ULID) ([]*Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").
			With("operation", "list tasks by owner").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	return tasks, nil
}

// ToggleCompletion flips the completed flag of the owner's task and returns
// the updated task. Fails with TASK_NOT_FOUND when the task does not exist
// for that owner - including when it exists but belongs to someone else.
func (s *Service) ToggleCompletion(ctx context.Context, ownerID, taskID ulid.ULID) (*Task, error) {
	t, err := s.tasks.ToggleCompletion(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("TASK_NOT_FOUND").
				With("task_id", taskID.String()).
				Wrap(err)
		}
		return nil, oops.Code("TASK_TOGGLE_FAILED").
			With("operation", "toggle completion").
			With("task_id", taskID.String()).
			Wrap(err)
	}
	return t, nil
}

// Delete removes the owner's task. Deleting a task that does not exist for
// that owner is a silent no-op.
func (s *Service) Delete(ctx context.Context, ownerID, taskID ulid.ULID) error {
	if _, err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		return oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task").
			With("task_id", taskID.String()).
			Wrap(err)
	}
	return nil
}
