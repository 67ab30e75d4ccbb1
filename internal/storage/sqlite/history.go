package sqlite

import (
	"context"
	"fmt"

	"taskflow/internal/models"
)

// ListHistory returns the append-only audit trail for a task, oldest first.
// Entries are never mutated or deleted; the id tiebreaker keeps the order
// stable for entries sharing a timestamp.
func (s *Store) ListHistory(ctx context.Context, taskID int64) ([]models.TaskHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, task_id, user_id, action, previous_status, new_status, comment, created_at
        FROM task_history WHERE task_id = ? ORDER BY created_at ASC, id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []models.TaskHistoryEntry
	for rows.Next() {
		var e models.TaskHistoryEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &e.Action, &e.PreviousStatus, &e.NewStatus, &e.Comment, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
