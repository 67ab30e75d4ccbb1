package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/auth"
	"taskflow/internal/models"
)

const actorKey = "actor"

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates an account and returns it with a signed token.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("email, password and name are required"))
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid role %q", req.Role))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Email, req.Name, hash, role)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// handleLogin verifies credentials and returns the user with a signed token.
// The failure message is identical whether the email or the password was
// wrong.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", slog.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// requireAuth verifies the bearer token and resolves the acting user. The
// actor's id and role are stored on the request context for policy checks.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if header == "" || token == header {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Info("token rejected", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	user, err := s.store.GetUser(c.Request.Context(), userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
		return
	}

	c.Set(actorKey, models.Actor{ID: user.ID, Role: user.Role})
	c.Next()
}

// actorFrom returns the authenticated actor placed by requireAuth.
func actorFrom(c *gin.Context) models.Actor {
	actor, _ := c.MustGet(actorKey).(models.Actor)
	return actor
}
