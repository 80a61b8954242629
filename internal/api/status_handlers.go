package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/trendradar/trendradar/internal/database"
	"github.com/trendradar/trendradar/internal/ingestion"
)

// StatusHandler reports the aggregate state of the project store: total
// count, per-source breakdown and connection pool statistics.
type StatusHandler struct {
	repo      ingestion.ProjectRepository
	collector *ingestion.Collector
	db        *sql.DB
	logger    *slog.Logger
}

// NewStatusHandler creates a new status handler. db may be nil when the
// service runs against the in-memory store.
func NewStatusHandler(repo ingestion.ProjectRepository, collector *ingestion.Collector, db *sql.DB, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{repo: repo, collector: collector, db: db, logger: logger}
}

// GetStatus handles GET /api/admin/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.repo.Count(r.Context())
	if err != nil {
		h.logger.Error("failed to count projects", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read project store", h.logger)
		return
	}

	stats, err := h.repo.SourceStats(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate source stats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read project store", h.logger)
		return
	}

	payload := map[string]interface{}{
		"total_projects": total,
		"sources":        stats,
		"adapters":       h.collector.AdapterNames(),
	}
	if h.db != nil {
		payload["database"] = database.Stats(h.db)
	}

	writeJSON(w, http.StatusOK, payload, h.logger)
}
