package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/trendradar/trendradar/internal/auth"
	"github.com/trendradar/trendradar/internal/ingestion"
	"github.com/trendradar/trendradar/internal/scheduler"
)

// SetupRoutes configures the admin API routes.
func SetupRoutes(mux *http.ServeMux, sched *scheduler.Scheduler, repo ingestion.ProjectRepository, collector *ingestion.Collector, db *sql.DB, authConfig auth.Config, logger *slog.Logger) {
	authHandler := NewAuthHandler(authConfig, logger)
	taskHandler := NewTaskHandler(sched, logger)
	statusHandler := NewStatusHandler(repo, collector, db, logger)

	authMiddleware := auth.Middleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Task administration routes (admin only)
	mux.HandleFunc("/api/admin/tasks", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(taskHandler.ListTasks)).ServeHTTP(w, r)
	})
	mux.HandleFunc("/api/admin/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/api/admin/tasks/") == "" {
			http.NotFound(w, r)
			return
		}
		authMiddleware(http.HandlerFunc(taskHandler.TaskAction)).ServeHTTP(w, r)
	})

	// Store status route (admin only)
	mux.HandleFunc("/api/admin/status", func(w http.ResponseWriter, r *http.Request) {
		authMiddleware(http.HandlerFunc(statusHandler.GetStatus)).ServeHTTP(w, r)
	})
}
