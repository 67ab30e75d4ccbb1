// Package lifecycle executes every task-mutating operation. Each operation
// checks the access policy first, then applies the task change and its audit
// history entry as one atomic unit through the store, so a task can never
// change state without a matching history record.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"taskflow/internal/models"
	"taskflow/internal/policy"
	"taskflow/internal/storage/sqlite"
)

// ErrForbidden is returned when the access policy denies an operation. The
// denied operation must not leave any trace in the task or its history.
var ErrForbidden = errors.New("not authorized")

// Engine orchestrates task state transitions against the store.
type Engine struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// New constructs a lifecycle engine.
func New(store *sqlite.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// CreateTaskInput carries the fields for a new task. Status defaults to TODO
// when empty.
type CreateTaskInput struct {
	ProjectID   int64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.Priority
	AssigneeID  *int64
	DueDate     *string
}

// CreateTask inserts a task under a project. When the task is created already
// assigned, an ASSIGNED history entry naming the assignee is appended in the
// same transaction as the insert.
func (e *Engine) CreateTask(ctx context.Context, actor models.Actor, in CreateTaskInput) (models.Task, error) {
	if !policy.CanPerform(actor, policy.ActionCreateTask, nil) {
		return models.Task{}, ErrForbidden
	}

	if _, err := e.store.GetProject(ctx, in.ProjectID); err != nil {
		return models.Task{}, err
	}

	status := in.Status
	if status == "" {
		status = models.TaskTodo
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
	}

	var entry *models.TaskHistoryEntry
	if in.AssigneeID != nil {
		assignee, err := e.store.GetUser(ctx, *in.AssigneeID)
		if err != nil {
			return models.Task{}, err
		}
		comment := assignmentComment(assignee)
		entry = &models.TaskHistoryEntry{
			UserID:    actor.ID,
			Action:    models.ActionAssigned,
			NewStatus: &status,
			Comment:   &comment,
		}
	}

	return e.store.CreateTask(ctx, task, entry)
}

// AssignTask hands a task to a user. The status is left untouched; the
// ASSIGNED history entry records neither a previous nor a new status.
func (e *Engine) AssignTask(ctx context.Context, actor models.Actor, taskID, assigneeID int64) (models.Task, error) {
	if !policy.CanPerform(actor, policy.ActionAssignTask, nil) {
		return models.Task{}, ErrForbidden
	}

	if _, err := e.store.GetTask(ctx, taskID); err != nil {
		return models.Task{}, err
	}
	assignee, err := e.store.GetUser(ctx, assigneeID)
	if err != nil {
		return models.Task{}, err
	}

	comment := assignmentComment(assignee)
	entry := models.TaskHistoryEntry{
		TaskID:  taskID,
		UserID:  actor.ID,
		Action:  models.ActionAssigned,
		Comment: &comment,
	}
	return e.store.SetAssignee(ctx, taskID, &assigneeID, entry)
}

// UpdateStatus moves a task to the given status. Any valid target status is
// accepted regardless of the current one; reaching DONE is recorded as
// COMPLETED, everything else as UPDATED. Developers may only update tasks
// assigned to them.
func (e *Engine) UpdateStatus(ctx context.Context, actor models.Actor, taskID int64, newStatus models.TaskStatus, comment *string) (models.Task, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if !policy.CanPerform(actor, policy.ActionUpdateStatus, &task) {
		e.logger.Warn("status update denied",
			slog.Int64("task", taskID), slog.Int64("actor", actor.ID), slog.String("role", string(actor.Role)))
		return models.Task{}, ErrForbidden
	}

	action := models.ActionUpdated
	if newStatus == models.TaskDone {
		action = models.ActionCompleted
	}

	prev := task.Status
	entry := models.TaskHistoryEntry{
		TaskID:         taskID,
		UserID:         actor.ID,
		Action:         action,
		PreviousStatus: &prev,
		NewStatus:      &newStatus,
		Comment:        comment,
	}
	return e.store.SetStatus(ctx, taskID, newStatus, entry)
}

// AbandonTask clears the assignee and resets the status to TODO regardless of
// the prior status, even from REVIEW or DONE. Same ownership rule as
// UpdateStatus.
func (e *Engine) AbandonTask(ctx context.Context, actor models.Actor, taskID int64, comment *string) (models.Task, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if !policy.CanPerform(actor, policy.ActionAbandonTask, &task) {
		e.logger.Warn("abandon denied",
			slog.Int64("task", taskID), slog.Int64("actor", actor.ID), slog.String("role", string(actor.Role)))
		return models.Task{}, ErrForbidden
	}

	prev := task.Status
	next := models.TaskTodo
	entry := models.TaskHistoryEntry{
		TaskID:         taskID,
		UserID:         actor.ID,
		Action:         models.ActionAbandoned,
		PreviousStatus: &prev,
		NewStatus:      &next,
		Comment:        comment,
	}
	return e.store.ReleaseTask(ctx, taskID, entry)
}

func assignmentComment(assignee models.User) string {
	return fmt.Sprintf("Task assigned to %s (%s)", assignee.Name, assignee.Role)
}
