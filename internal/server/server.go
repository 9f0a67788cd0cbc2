// Package server exposes the backend over HTTP: an auth surface under
// /auth/v1 and per-user table access under /rest/v1.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
	"golang.org/x/time/rate"
)

type Options struct {
	RequestsPerMin int
	Burst          int
	CORSOrigins    []string
	Logger         *slog.Logger
	// Quiet drops the request log, used by tests.
	Quiet bool
}

type Server struct {
	db     *backend.Backend
	auth   *auth.Service
	log    *slog.Logger
	engine *gin.Engine
}

func New(db *backend.Backend, svc *auth.Service, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{db: db, auth: svc, log: opts.Logger}
	s.engine = s.routes(opts)
	return s
}

// Handler returns the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(opts Options) *gin.Engine {
	r := gin.New()
	if !opts.Quiet {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	if opts.RequestsPerMin > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		r.Use(RateLimiter(rate.Limit(float64(opts.RequestsPerMin)/60.0), burst))
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.CORSOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)

	authRoutes := r.Group("/auth/v1")
	{
		authRoutes.POST("/signup", s.signUp)
		authRoutes.POST("/token", s.token)
		authRoutes.POST("/logout", RequireUser(s.auth), s.logout)
		authRoutes.GET("/user", RequireUser(s.auth), s.currentUser)
	}

	rest := r.Group("/rest/v1")
	rest.Use(RequireUser(s.auth))
	{
		mount(rest, "/projects", resource[backend.ProjectRow]{
			list:   s.db.ListProjects,
			create: s.db.CreateProject,
			update: s.db.UpdateProject,
			remove: s.db.DeleteProject,
		})
		mount(rest, "/tasks", resource[backend.TaskRow]{
			list:   s.db.ListTasks,
			create: s.db.CreateTask,
			update: s.db.UpdateTask,
			remove: s.db.DeleteTask,
		})
		mount(rest, "/time_blocks", resource[backend.TimeBlockRow]{
			list:   s.db.ListTimeBlocks,
			create: s.db.CreateTimeBlock,
			update: s.db.UpdateTimeBlock,
			remove: s.db.DeleteTimeBlock,
		})
		mount(rest, "/daily_goals", resource[backend.DailyGoalRow]{
			list:   s.db.ListDailyGoals,
			create: s.db.CreateDailyGoal,
			update: s.db.UpdateDailyGoal,
			remove: s.db.DeleteDailyGoal,
		})
		mount(rest, "/habits", resource[backend.HabitRow]{
			list:   s.db.ListHabits,
			create: s.db.CreateHabit,
			remove: s.db.DeleteHabit,
		})
		mount(rest, "/habit_completions", resource[backend.HabitCompletionRow]{
			create: s.db.CreateCompletion,
			remove: s.db.DeleteCompletion,
		})
		rest.GET("/habit_completions", s.listCompletions)
		mount(rest, "/focus_sessions", resource[backend.FocusSessionRow]{
			list:   s.db.ListFocusSessions,
			create: s.db.CreateFocusSession,
			update: s.db.UpdateFocusSession,
		})
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	if err := s.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "up",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// writeError maps domain errors onto status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, backend.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, backend.ErrInvalid), errors.Is(err, auth.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, backend.ErrConflict), errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
