package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/trendradar/trendradar/internal/api"
	"github.com/trendradar/trendradar/internal/auth"
	"github.com/trendradar/trendradar/internal/config"
	"github.com/trendradar/trendradar/internal/database"
	"github.com/trendradar/trendradar/internal/ingestion"
	"github.com/trendradar/trendradar/internal/logging"
	"github.com/trendradar/trendradar/internal/metrics"
	"github.com/trendradar/trendradar/internal/scheduler"
	"github.com/trendradar/trendradar/internal/scoring"
	"github.com/trendradar/trendradar/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting trendradar")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Project store: Postgres when DATABASE_URL is set, otherwise in-memory.
	var repo ingestion.ProjectRepository
	var db *sql.DB
	if cfg.Database.URL != "" {
		logger.Info("connecting to database")
		db, err = database.Connect(ctx, database.Config{
			URL:                cfg.Database.URL,
			MaxConnections:     cfg.Database.MaxConnections,
			MaxIdleConnections: cfg.Database.MaxIdleConnections,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			ConnectTimeout:     cfg.Database.ConnectTimeout,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("database connected")

		if err := database.RunMigrations(ctx, db, "./migrations", logger); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		repo = database.NewPostgresProjectRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory project store")
		repo = ingestion.NewMemoryProjectRepository()
	}

	collectorMetrics, err := metrics.New()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	// Source adapters, in collection order. Credentialed sources are only
	// registered when their token is configured.
	var adapters []ingestion.SourceAdapter
	if cfg.Sources.YouTubeAPIKey != "" {
		adapters = append(adapters, ingestion.NewYouTubeAdapter(cfg.Sources.YouTubeAPIKey, logging.WithComponent(logger, "youtube")))
	} else {
		logger.Warn("YOUTUBE_API_KEY not set, youtube collection disabled")
	}
	if cfg.Sources.GitHubToken != "" {
		adapters = append(adapters, ingestion.NewGitHubAdapter(cfg.Sources.GitHubToken, logging.WithComponent(logger, "github")))
	} else {
		logger.Warn("GITHUB_TOKEN not set, github collection disabled")
	}
	if cfg.Sources.ProductHuntToken != "" {
		adapters = append(adapters, ingestion.NewProductHuntAdapter(cfg.Sources.ProductHuntToken, logging.WithComponent(logger, "producthunt")))
	} else {
		logger.Warn("PRODUCTHUNT_TOKEN not set, producthunt collection disabled")
	}
	adapters = append(adapters, ingestion.NewHuggingFaceAdapter(logging.WithComponent(logger, "huggingface")))

	scorer := scoring.NewHotScorer()
	merger := ingestion.NewMerger(repo, scorer, logging.WithComponent(logger, "merger"), nil)
	collector := ingestion.NewCollector(
		adapters,
		merger,
		repo,
		scorer,
		logging.WithComponent(logger, "collector"),
		collectorMetrics,
		cfg.Scheduler.SourceDelay,
		nil,
	)

	sched := scheduler.New(nil, cfg.Scheduler.Location(), logging.WithComponent(logger, "scheduler"), collectorMetrics)
	if err := registerTasks(sched, cfg.Scheduler, collector); err != nil {
		logger.Error("failed to register tasks", "error", err)
		os.Exit(1)
	}
	if cfg.Scheduler.Enabled {
		startEnabledTasks(ctx, sched, cfg.Scheduler, collector, logger)
	} else {
		logger.Info("scheduler disabled, tasks available for manual triggering only")
	}

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := database.HealthCheck(r.Context(), db); err != nil {
				http.Error(w, `{"status":"unhealthy"}`, http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", collectorMetrics.Handler())

	api.SetupRoutes(mux, sched, repo, collector, db, authConfig, logger)

	srv := server.New(cfg.Server, logger, collectorMetrics.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("trendradar started", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	sched.StopAll()
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

// Task names exposed on the admin surface.
const (
	taskFullCollection = "full_collection"
	taskScoreRefresh   = "score_refresh"
	taskCleanup        = "cleanup"
)

func registerTasks(sched *scheduler.Scheduler, cfg config.SchedulerConfig, collector *ingestion.Collector) error {
	if err := sched.Register(taskFullCollection, cfg.FullCollection.Schedule, collector.RunCollection,
		"collect from every source, then refresh all scores"); err != nil {
		return err
	}

	for _, name := range collector.AdapterNames() {
		source := name
		if err := sched.Register("collect_"+source, cfg.PerSource.Schedule, func(ctx context.Context) error {
			return collector.CollectSource(ctx, source)
		}, fmt.Sprintf("collect from %s only", source)); err != nil {
			return err
		}
	}

	if err := sched.Register(taskScoreRefresh, cfg.ScoreRefresh.Schedule, collector.RefreshScores,
		"recompute scores and flags for every stored project"); err != nil {
		return err
	}

	return sched.Register(taskCleanup, cfg.Cleanup.Schedule, collector.Cleanup,
		"remove duplicate identities and stale low-score projects")
}

func startEnabledTasks(ctx context.Context, sched *scheduler.Scheduler, cfg config.SchedulerConfig, collector *ingestion.Collector, logger *slog.Logger) {
	start := func(name string, enabled bool) {
		if !enabled {
			logger.Info("task disabled by config", "task", name)
			return
		}
		if err := sched.Start(ctx, name); err != nil {
			logger.Error("failed to start task", "task", name, "error", err)
		}
	}

	start(taskFullCollection, cfg.FullCollection.Enabled)
	for _, name := range collector.AdapterNames() {
		start("collect_"+name, cfg.PerSource.Enabled)
	}
	start(taskScoreRefresh, cfg.ScoreRefresh.Enabled)
	start(taskCleanup, cfg.Cleanup.Enabled)
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
