package models

import "time"

// Role determines what a user may do across the system.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleDeveloper Role = "DEVELOPER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDeveloper:
		return true
	}
	return false
}

// ProjectStatus is the coarse lifecycle phase of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "PLANNING"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectCompleted:
		return true
	}
	return false
}

// TaskStatus is a column in the task workflow. The canonical progression is
// TODO -> IN_PROGRESS -> REVIEW -> DONE, but a status update may set any
// target status; the server does not enforce adjacency. That is observed
// behavior of the system, not a workflow guarantee.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskDone       TaskStatus = "DONE"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// Priority is the urgency label on a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// HistoryAction labels one entry in a task's audit trail.
type HistoryAction string

const (
	ActionAssigned  HistoryAction = "ASSIGNED"
	ActionUpdated   HistoryAction = "UPDATED"
	ActionCompleted HistoryAction = "COMPLETED"
	ActionAbandoned HistoryAction = "ABANDONED"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   int64
	Role Role
}

// Project groups tasks under an optional manager.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   string        `json:"startDate"`
	EndDate     *string       `json:"endDate"`
	ManagerID   *int64        `json:"managerId"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Task is a unit of work inside a project. Status and AssigneeID change only
// through the lifecycle engine, which pairs every change with a history entry.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	ProjectID   int64      `json:"projectId"`
	AssigneeID  *int64     `json:"assigneeId"`
	DueDate     *string    `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TaskHistoryEntry is one immutable audit record of a task mutation.
type TaskHistoryEntry struct {
	ID             int64         `json:"id"`
	TaskID         int64         `json:"taskId"`
	UserID         int64         `json:"userId"`
	Action         HistoryAction `json:"action"`
	PreviousStatus *TaskStatus   `json:"previousStatus"`
	NewStatus      *TaskStatus   `json:"newStatus"`
	Comment        *string       `json:"comment"`
	CreatedAt      time.Time     `json:"createdAt"`
}
