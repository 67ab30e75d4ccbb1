package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/models"
	"taskflow/internal/policy"
)

type projectRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

// handleListProjects returns the projects visible to the actor. Managers and
// admins see everything; developers only the projects where they hold a task.
func (s *Server) handleListProjects(c *gin.Context) {
	actor := actorFrom(c)

	var (
		projects []models.Project
		err      error
	)
	if policy.SeesAllProjects(actor.Role) {
		projects, err = s.store.ListProjects(c.Request.Context())
	} else {
		projects, err = s.store.ListProjectsForAssignee(c.Request.Context(), actor.ID)
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

// handleCreateProject creates a project owned by the creating actor.
func (s *Server) handleCreateProject(c *gin.Context) {
	actor := actorFrom(c)
	if !policy.CanPerform(actor, policy.ActionCreateProject, nil) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" || req.StartDate == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("name and start_date are required"))
		return
	}
	status := models.ProjectStatus(req.Status)
	if !status.Valid() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid project status %q", req.Status))
		return
	}

	managerID := actor.ID
	project, err := s.store.CreateProject(c.Request.Context(), models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ManagerID:   &managerID,
	})
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, project)
}
