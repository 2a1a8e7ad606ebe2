// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package mocks provides a hand-maintained testify mock for the task
// repository interface.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/taskvault/taskvault/internal/task"
)

// testingT is the subset of *testing.T the constructor needs.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockRepository is a mock implementation of task.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a mock wired to the test lifecycle.
func NewMockRepository(t testingT) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID)
	var tasks []*task.Task
	if args.Get(0) != nil {
		tasks = args.Get(0).([]*task.Task)
	}
	return tasks, args.Error(1)
}

func (m *MockRepository) ToggleCompletion(ctx context.Context, ownerID, taskID ulid.ULID) (*task.Task, error) {
	args := m.Called(ctx, ownerID, taskID)
	var t *task.Task
	if args.Get(0) != nil {
		t = args.Get(0).(*task.Task)
	}
	return t, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, ownerID, taskID ulid.ULID) (int64, error) {
	args := m.Called(ctx, ownerID, taskID)
	return args.Get(0).(int64), args.Error(1)
}

// Compile-time interface check.
var _ task.Repository = (*MockRepository)(nil)
