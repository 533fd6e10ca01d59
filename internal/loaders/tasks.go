package loaders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const taskColumns = `id::text, title, description, column_id, position, assignee_id::text, due_date,
	priority, subtasks, created_at, updated_at`

func (c *PostgresClient) ListTasks(ctx context.Context) ([]types.Task, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY column_id, position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (c *PostgresClient) GetTask(ctx context.Context, id string) (*types.Task, error) {
	t, err := scanTask(c.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	return &t, nil
}

func (c *PostgresClient) CreateTask(ctx context.Context, t types.Task) (*types.Task, error) {
	subtasks, err := json.Marshal(nonNilSubtasks(t.Subtasks))
	if err != nil {
		return nil, err
	}
	created, err := scanTask(c.pool.QueryRow(ctx, `
		INSERT INTO tasks (id, title, description, column_id, position, assignee_id, due_date, priority, subtasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, string(t.ColumnID), t.Position, t.AssigneeID, t.DueDate,
		string(t.Priority), string(subtasks)))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &created, nil
}

// SaveTask overwrites every editable field of an existing task.
func (c *PostgresClient) SaveTask(ctx context.Context, t types.Task) (*types.Task, error) {
	subtasks, err := json.Marshal(nonNilSubtasks(t.Subtasks))
	if err != nil {
		return nil, err
	}
	saved, err := scanTask(c.pool.QueryRow(ctx, `
		UPDATE tasks SET title = $2, description = $3, column_id = $4, position = $5, assignee_id = $6,
			due_date = $7, priority = $8, subtasks = $9::jsonb, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, string(t.ColumnID), t.Position, t.AssigneeID, t.DueDate,
		string(t.Priority), string(subtasks)))
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return &saved, nil
}

func (c *PostgresClient) DeleteTask(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// MoveTasks applies a board reorder atomically. An unknown id rolls back
// the whole set.
func (c *PostgresClient) MoveTasks(ctx context.Context, moves []types.TaskMove) error {
	return c.withTx(ctx, func(tx pgx.Tx) error {
		for _, m := range moves {
			tag, err := tx.Exec(ctx, `
				UPDATE tasks SET column_id = $2, position = $3, updated_at = now() WHERE id = $1`,
				m.ID, string(m.ColumnID), m.Position)
			if err != nil {
				return fmt.Errorf("failed to move task %s: %w", m.ID, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("task %s: %w", m.ID, types.ErrNotFound)
			}
		}
		return nil
	})
}

func scanTask(row pgx.Row) (types.Task, error) {
	var (
		t        types.Task
		column   string
		priority string
		subtasks []byte
		dueDate  *time.Time
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &column, &t.Position, &t.AssigneeID, &dueDate,
		&priority, &subtasks, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	t.ColumnID = types.ColumnID(column)
	t.Priority = types.Priority(priority)
	t.DueDate = dueDate
	t.Subtasks = []types.Subtask{}
	if len(subtasks) > 0 {
		if err := json.Unmarshal(subtasks, &t.Subtasks); err != nil {
			return t, fmt.Errorf("failed to decode subtasks: %w", err)
		}
	}
	return t, nil
}

func nonNilSubtasks(s []types.Subtask) []types.Subtask {
	if s == nil {
		return []types.Subtask{}
	}
	return s
}
