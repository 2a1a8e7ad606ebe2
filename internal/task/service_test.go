// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskvault/taskvault/internal/task"
	"github.com/taskvault/taskvault/internal/task/mocks"
	"github.com/taskvault/taskvault/pkg/errutil"
)

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	ownerID := ulid.Make()

	t.Run("creates valid task", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("Create", ctx, mock.AnythingOfType("*task.Task")).Return(nil)

		tk, err := svc.Create(ctx, ownerID, "buy milk", nil)
		require.NoError(t, err)
		assert.Equal(t, "buy milk", tk.Title)
		assert.Equal(t, ownerID, tk.OwnerID)
	})

	t.Run("validation failure skips repository", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		tk, err := svc.Create(ctx, ownerID, "ab", nil)
		require.Error(t, err)
		assert.Nil(t, tk)

		var vErr *task.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("repository failure wraps with context", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("Create", ctx, mock.AnythingOfType("*task.Task")).Return(errors.New("db down"))

		_, err := svc.Create(ctx, ownerID, "buy milk", nil)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TASK_CREATE_FAILED")
	})
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	ownerID := ulid.Make()

	t.Run("returns owner's tasks", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		want := []*task.Task{
			{ID: ulid.Make(), Title: "buy milk", OwnerID: ownerID},
			{ID: ulid.Make(), Title: "walk dog", OwnerID: ownerID},
		}
		repo.On("ListByOwner", ctx, ownerID).Return(want, nil)

		got, err := svc.List(ctx, ownerID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("empty list for new owner", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("ListByOwner", ctx, ownerID).Return([]*task.Task{}, nil)

		got, err := svc.List(ctx, ownerID)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("repository failure wraps with context", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("ListByOwner", ctx, ownerID).Return(nil, errors.New("db down"))

		_, err := svc.List(ctx, ownerID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TASK_LIST_FAILED")
	})
}

func TestServiceToggleCompletion(t *testing.T) {
	ctx := context.Background()
	ownerID := ulid.Make()
	taskID := ulid.Make()

	t.Run("returns updated task", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		toggled := &task.Task{ID: taskID, Title: "buy milk", Completed: true, OwnerID: ownerID}
		repo.On("ToggleCompletion", ctx, ownerID, taskID).Return(toggled, nil)

		got, err := svc.ToggleCompletion(ctx, ownerID, taskID)
		require.NoError(t, err)
		assert.True(t, got.Completed)
	})

	t.Run("missing task surfaces as not found", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("ToggleCompletion", ctx, ownerID, taskID).Return(nil, task.ErrNotFound)

		_, err := svc.ToggleCompletion(ctx, ownerID, taskID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TASK_NOT_FOUND")
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("repository failure wraps with context", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("ToggleCompletion", ctx, ownerID, taskID).Return(nil, errors.New("db down"))

		_, err := svc.ToggleCompletion(ctx, ownerID, taskID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TASK_TOGGLE_FAILED")
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	ownerID := ulid.Make()
	taskID := ulid.Make()

	t.Run("deletes existing task", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("Delete", ctx, ownerID, taskID).Return(int64(1), nil)

		require.NoError(t, svc.Delete(ctx, ownerID, taskID))
	})

	t.Run("missing task is a silent no-op", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("Delete", ctx, ownerID, taskID).Return(int64(0), nil)

		require.NoError(t, svc.Delete(ctx, ownerID, taskID))
	})

	t.Run("repository failure wraps with context", func(t *testing.T) {
		repo := mocks.NewMockRepository(t)
		svc := task.NewService(repo)

		repo.On("Delete", ctx, ownerID, taskID).Return(int64(0), errors.New("db down"))

		err := svc.Delete(ctx, ownerID, taskID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TASK_DELETE_FAILED")
	})
}
