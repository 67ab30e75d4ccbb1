package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/lifecycle"
	"taskflow/internal/models"
)

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *int64  `json:"assigneeId"`
	DueDate     *string `json:"dueDate"`
}

type assignRequest struct {
	AssigneeID int64 `json:"assigneeId"`
}

type statusRequest struct {
	Status  string  `json:"status"`
	Comment *string `json:"comment"`
}

type abandonRequest struct {
	Comment *string `json:"comment"`
}

// handleListTasks fetches tasks for a project.
func (s *Server) handleListTasks(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	tasks, err := s.store.ListTasks(c.Request.Context(), projectID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// handleCreateTask inserts a new task into a project.
func (s *Server) handleCreateTask(c *gin.Context) {
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}
	priority := models.Priority(req.Priority)
	if !priority.Valid() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid priority %q", req.Priority))
		return
	}
	status := models.TaskStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid task status %q", req.Status))
		return
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), actorFrom(c), lifecycle.CreateTaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.respondOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleAssignTask hands a task to a user.
func (s *Server) handleAssignTask(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.AssigneeID == 0 {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("assigneeId is required"))
		return
	}

	task, err := s.tasks.AssignTask(c.Request.Context(), actorFrom(c), taskID, req.AssigneeID)
	if err != nil {
		s.respondOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleUpdateStatus moves a task to a new workflow status.
func (s *Server) handleUpdateStatus(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	status := models.TaskStatus(req.Status)
	if !status.Valid() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid task status %q", req.Status))
		return
	}

	task, err := s.tasks.UpdateStatus(c.Request.Context(), actorFrom(c), taskID, status, req.Comment)
	if err != nil {
		s.respondOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleAbandonTask releases a task back to the TODO column.
func (s *Server) handleAbandonTask(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}

	var req abandonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.tasks.AbandonTask(c.Request.Context(), actorFrom(c), taskID, req.Comment)
	if err != nil {
		s.respondOperationError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleTaskHistory returns the audit trail of a task, oldest entry first.
func (s *Server) handleTaskHistory(c *gin.Context) {
	taskID, ok := parseID(c, "taskId")
	if !ok {
		return
	}

	entries, err := s.store.ListHistory(c.Request.Context(), taskID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []models.TaskHistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
