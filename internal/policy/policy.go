// Package policy centralizes every role and ownership decision so that the
// rules live in one place instead of being scattered across handlers. All
// functions are pure predicates; they never mutate state.
package policy

import "taskflow/internal/models"

// Action identifies an operation subject to an access decision.
type Action string

const (
	ActionCreateProject Action = "project:create"
	ActionCreateTask    Action = "task:create"
	ActionAssignTask    Action = "task:assign"
	ActionUpdateStatus  Action = "task:status"
	ActionAbandonTask   Action = "task:abandon"
	ActionListUsers     Action = "user:list"
)

// CanPerform decides whether the actor may perform the action. For
// task-scoped actions the task carries the current assignee; it may be nil
// for actions that do not target a task.
func CanPerform(actor models.Actor, action Action, task *models.Task) bool {
	switch action {
	case ActionCreateProject, ActionCreateTask, ActionAssignTask, ActionListUsers:
		return isManagement(actor.Role)
	case ActionUpdateStatus, ActionAbandonTask:
		if isManagement(actor.Role) {
			return true
		}
		// A developer may only touch a task currently assigned to them.
		return actor.Role == models.RoleDeveloper && task != nil &&
			task.AssigneeID != nil && *task.AssigneeID == actor.ID
	}
	return false
}

// SeesAllProjects reports whether the actor's project listing is unfiltered.
// Developers see only projects containing a task assigned to them.
func SeesAllProjects(role models.Role) bool {
	return isManagement(role)
}

func isManagement(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleManager
}
