package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/trendradar/trendradar/internal/scheduler"
)

// TaskHandler exposes the scheduler's administrative operations: listing
// task status, arming and disarming schedules, and manual triggers.
type TaskHandler struct {
	sched  *scheduler.Scheduler
	logger *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(sched *scheduler.Scheduler, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{sched: sched, logger: logger}
}

// ListTasks handles GET /api/admin/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": h.sched.Status(),
	}, h.logger)
}

// TaskAction handles GET /api/admin/tasks/{name} and
// POST /api/admin/tasks/{name}/start|stop|run
func (h *TaskHandler) TaskAction(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/tasks/")
	parts := strings.Split(rest, "/")

	if r.Method == http.MethodGet {
		if len(parts) != 1 || parts[0] == "" {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		status, err := h.sched.StatusOf(parts[0])
		if err != nil {
			h.writeTaskError(w, parts[0], "status", err)
			return
		}
		writeJSON(w, http.StatusOK, status, h.logger)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(parts) != 2 || parts[0] == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	name, action := parts[0], parts[1]

	var err error
	switch action {
	case "start":
		err = h.sched.Start(r.Context(), name)
	case "stop":
		err = h.sched.Stop(name)
	case "run":
		// The trigger is asynchronous and outlives this request, so it must
		// not inherit the request context. The outcome is observable via
		// task status.
		_, err = h.sched.ExecuteNow(context.Background(), name)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if err != nil {
		h.writeTaskError(w, name, action, err)
		return
	}

	status := http.StatusOK
	if action == "run" {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]string{
		"task":   name,
		"action": action,
		"status": "ok",
	}, h.logger)
}

func (h *TaskHandler) writeTaskError(w http.ResponseWriter, name, action string, err error) {
	var unknown *scheduler.UnknownTaskError
	var running *scheduler.AlreadyRunningError

	switch {
	case errors.As(err, &unknown):
		writeError(w, http.StatusNotFound, err.Error(), h.logger)
	case errors.As(err, &running):
		writeError(w, http.StatusConflict, err.Error(), h.logger)
	default:
		h.logger.Error("task action failed", "task", name, "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "task action failed", h.logger)
	}
}
