package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskflow/internal/auth"
	"taskflow/internal/lifecycle"
	"taskflow/internal/storage/sqlite"
)

// Server provides HTTP handlers for the task management backend.
type Server struct {
	engine *gin.Engine
	store  *sqlite.Store
	tasks  *lifecycle.Engine
	tokens *auth.TokenManager
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, tokens *auth.TokenManager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"))

	srv := &Server{
		engine: router,
		store:  store,
		tasks:  lifecycle.New(store, logger),
		tokens: tokens,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires the public and authenticated API handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)

	authGroup := s.engine.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
	}

	api := s.engine.Group("/", s.requireAuth)
	{
		api.GET("/projects", s.handleListProjects)
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects/:projectId/tasks", s.handleListTasks)
		api.POST("/projects/:projectId/tasks", s.handleCreateTask)

		api.POST("/tasks/:taskId/assign", s.handleAssignTask)
		api.POST("/tasks/:taskId/status", s.handleUpdateStatus)
		api.POST("/tasks/:taskId/abandon", s.handleAbandonTask)
		api.GET("/tasks/:taskId/history", s.handleTaskHistory)

		api.GET("/users", s.handleListUsers)
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err != nil {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondOperationError maps engine and store failures to HTTP statuses:
// policy denials to 403, missing references to 404, everything else to 500.
func (s *Server) respondOperationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrForbidden):
		s.respondError(c, http.StatusForbidden, err)
	case errors.Is(err, sqlite.ErrNotFound):
		s.respondError(c, http.StatusNotFound, err)
	default:
		s.respondError(c, http.StatusInternalServerError, err)
	}
}
