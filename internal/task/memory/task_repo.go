// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package memory provides an in-memory task.Repository for single-process
// deployments and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskvault/taskvault/internal/task"
)

// TaskRepository implements task.Repository with an in-process map.
// Safe for concurrent use.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[ulid.ULID]*task.Task
}

// NewTaskRepository creates an empty TaskRepository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[ulid.ULID]*task.Task),
	}
}

// Create persists a new task.
func (r *TaskRepository) Create(_ context.Context, t *task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

// ListByOwner retrieves all tasks owned by ownerID, ordered by id.
func (r *TaskRepository) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]*task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*task.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].ID.Compare(tasks[j].ID) < 0
	})
	return tasks, nil
}

// ToggleCompletion flips the completed flag of the task matching both id
// and owner. The flip happens under the write lock, so concurrent toggles
// serialize just like the atomic SQL update.
func (r *TaskRepository) ToggleCompletion(_ context.Context, ownerID, taskID ulid.ULID) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return nil, task.ErrNotFound
	}

	t.Completed = !t.Completed
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

// Delete removes the task matching both id and owner, returning the number
// of entries deleted. Zero is not an error.
func (r *TaskRepository) Delete(_ context.Context, ownerID, taskID ulid.ULID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok || t.OwnerID != ownerID {
		return 0, nil
	}
	delete(r.tasks, taskID)
	return 1, nil
}

// DeleteByOwner removes every task owned by ownerID. It backs the cascade
// hook the in-memory user store fires on user deletion.
func (r *TaskRepository) DeleteByOwner(_ context.Context, ownerID ulid.ULID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.tasks {
		if t.OwnerID == ownerID {
			delete(r.tasks, id)
		}
	}
}

// Compile-time interface check.
var _ task.Repository = (*TaskRepository)(nil)
