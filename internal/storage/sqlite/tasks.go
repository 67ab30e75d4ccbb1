package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskflow/internal/models"
)

const taskColumns = `id, title, description, status, priority, project_id, assignee_id, due_date, created_at`

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks returns tasks for the given project ordered by creation.
func (s *Store) ListTasks(ctx context.Context, projectID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task. When entry is non-nil (task created already
// assigned) the insert and the history append commit together or not at all.
func (s *Store) CreateTask(ctx context.Context, t models.Task, entry *models.TaskHistoryEntry) (models.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return models.Task{}, fmt.Errorf("task title must not be empty")
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO tasks(title, description, status, priority, project_id, assignee_id, due_date)
            VALUES(?, ?, ?, ?, ?, ?, ?)`,
			strings.TrimSpace(t.Title), t.Description, t.Status, t.Priority, t.ProjectID, t.AssigneeID, t.DueDate)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}
		if entry != nil {
			entry.TaskID = id
			return appendHistoryTx(ctx, tx, *entry)
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, id)
}

// SetAssignee updates a task's assignee and appends the paired history entry
// in the same transaction.
func (s *Store) SetAssignee(ctx context.Context, taskID int64, assigneeID *int64, entry models.TaskHistoryEntry) (models.Task, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := execTaskUpdate(ctx, tx, `UPDATE tasks SET assignee_id = ? WHERE id = ?`, assigneeID, taskID); err != nil {
			return err
		}
		return appendHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, taskID)
}

// SetStatus updates a task's status and appends the paired history entry in
// the same transaction.
func (s *Store) SetStatus(ctx context.Context, taskID int64, status models.TaskStatus, entry models.TaskHistoryEntry) (models.Task, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := execTaskUpdate(ctx, tx, `UPDATE tasks SET status = ? WHERE id = ?`, status, taskID); err != nil {
			return err
		}
		return appendHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, taskID)
}

// ReleaseTask clears the assignee and resets the status to TODO, appending
// the paired history entry in the same transaction.
func (s *Store) ReleaseTask(ctx context.Context, taskID int64, entry models.TaskHistoryEntry) (models.Task, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := execTaskUpdate(ctx, tx, `UPDATE tasks SET assignee_id = NULL, status = ? WHERE id = ?`, models.TaskTodo, taskID); err != nil {
			return err
		}
		return appendHistoryTx(ctx, tx, entry)
	})
	if err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, taskID)
}

func execTaskUpdate(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task: %w", ErrNotFound)
	}
	return nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.ProjectID, &t.AssigneeID, &t.DueDate, &t.CreatedAt)
	return t, err
}
