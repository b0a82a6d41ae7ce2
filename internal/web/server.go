// Package web serves the board over a JSON HTTP API. Bucket access follows
// the same rules as the terminal views: protected buckets need ?token=.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rogersnm/kanban/internal/board"
)

type Server struct {
	board  *board.Store
	router *gin.Engine
	log    *slog.Logger
}

func NewServer(b *board.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	router := gin.New()
	s := &Server{board: b, router: router, log: log}
	router.Use(gin.Recovery(), s.logRequests)

	router.GET("/api/state", s.handleState)
	router.DELETE("/api/state/error", s.handleClearError)
	router.GET("/api/search", s.handleSearch)

	buckets := router.Group("/api/buckets")
	{
		buckets.GET("", s.handleListBuckets)
		buckets.POST("", s.handleCreateBucket)
		buckets.GET("/:name", s.handleBucket)
		buckets.POST("/:name/tasks", s.handleAddTask)
	}

	tasks := router.Group("/api/tasks")
	{
		tasks.GET("/:id", s.handleGetTask)
		tasks.PATCH("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
		tasks.POST("/:id/after", s.handleAddTaskAfter)
		tasks.POST("/:id/move", s.handleMoveTask)
		tasks.POST("/:id/editing", s.handleEditing)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the web server
func (s *Server) Run(addr string) error {
	s.log.Info("listening", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"took", time.Since(start))
}
