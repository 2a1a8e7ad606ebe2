// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package postgres implements the task repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/task"
)

// dbPool is the subset of pgxpool.Pool the repository uses.
// pgxmock.PgxPoolIface satisfies it in tests.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepository implements task.Repository using PostgreSQL.
// Every statement is scoped by owner_id; the owner never appears only in
// application code.
type TaskRepository struct {
	pool dbPool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool dbPool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create persists a new task.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, description, completed, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		t.ID.String(),
		t.Title,
		t.Description,
		t.Completed,
		t.OwnerID.String(),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TASK_INSERT_FAILED").
			With("operation", "insert task").
			With("id", t.ID.String()).
			Wrap(err)
	}
	return nil
}

// ListByOwner retrieves all tasks owned by ownerID, ordered by id.
// ULID ids are time-ordered, so this approximates creation order without
// promising it.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID ulid.ULID) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID.String())
	if err != nil {
		return nil, oops.Code("TASK_QUERY_FAILED").
			With("operation", "list tasks by owner").
			With("owner_id", ownerID.String()).
			Wrap(err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ToggleCompletion flips the completed flag in a single atomic conditional
// update scoped by both id and owner. Two concurrent toggles serialize at
// the row; there is no read-modify-write window to lose an update in.
func (r *TaskRepository) ToggleCompletion(ctx context.Context, ownerID, taskID ulid.ULID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET completed = NOT completed, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, title, description, completed, owner_id, created_at, updated_at
	`, taskID.String(), ownerID.String())

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TASK_NOT_FOUND").
			With("task_id", taskID.String()).
			Wrap(task.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TASK_TOGGLE_FAILED").
			With("operation", "toggle completion").
			With("task_id", taskID.String()).
			Wrap(err)
	}
	return t, nil
}

// Delete removes the task scoped by id and owner, returning the number of
// rows deleted. Zero rows is not an error.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID ulid.ULID) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND owner_id = $2
	`, taskID.String(), ownerID.String())
	if err != nil {
		return 0, oops.Code("TASK_DELETE_FAILED").
			With("operation", "delete task").
			With("task_id", taskID.String()).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// taskScanFields holds intermediate scan values for task parsing.
type taskScanFields struct {
	idStr      string
	ownerIDStr string
}

// scanTask scans a single task from a row.
// Callers are responsible for handling pgx.ErrNoRows.
func scanTask(row pgx.Row) (*task.Task, error) {
	var t task.Task
	var f taskScanFields

	err := row.Scan(
		&f.idStr, &t.Title, &t.Description, &t.Completed,
		&f.ownerIDStr, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TASK_SCAN_FAILED").
			With("operation", "scan task").
			Wrap(err)
	}

	if err := parseTaskFromFields(&f, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

// parseTaskFromFields converts scan fields to task fields.
func parseTaskFromFields(f *taskScanFields, t *task.Task) error {
	var err error
	t.ID, err = ulid.Parse(f.idStr)
	if err != nil {
		return oops.Code("TASK_PARSE_FAILED").With("field", "id").With("value", f.idStr).Wrap(err)
	}
	t.OwnerID, err = ulid.Parse(f.ownerIDStr)
	if err != nil {
		return oops.Code("TASK_PARSE_FAILED").With("field", "owner_id").With("value", f.ownerIDStr).Wrap(err)
	}
	return nil
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0)
	for rows.Next() {
		var t task.Task
		var f taskScanFields

		if err := rows.Scan(
			&f.idStr, &t.Title, &t.Description, &t.Completed,
			&f.ownerIDStr, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, oops.Code("TASK_SCAN_FAILED").Wrap(err)
		}

		if err := parseTaskFromFields(&f, &t); err != nil {
			return nil, err
		}

		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("TASK_ITERATE_FAILED").Wrap(err)
	}

	return tasks, nil
}

// Compile-time interface check.
var _ task.Repository = (*TaskRepository)(nil)
