package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/models"
	"taskflow/internal/policy"
)

// handleListUsers returns the accounts that can appear in assignment pickers.
// Only managers and admins may list users; admin accounts are excluded from
// the result.
func (s *Server) handleListUsers(c *gin.Context) {
	actor := actorFrom(c)
	if !policy.CanPerform(actor, policy.ActionListUsers, nil) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		return
	}

	users, err := s.store.ListAssignableUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}
