// cmd/service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/natefinch/lumberjack.v2"

	"oss-tldr/internal/api"
	"oss-tldr/internal/config"
	"oss-tldr/internal/database"
	"oss-tldr/internal/github"
	"oss-tldr/internal/groups"
	"oss-tldr/internal/llm"
	"oss-tldr/internal/report"
	"oss-tldr/internal/tracker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	logger := newLogger(os.Stdout, logLevel)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogFileMaxSizeMB,
			MaxBackups: cfg.LogFileMaxBackups,
			MaxAge:     cfg.LogFileMaxAgeDays,
			Compress:   true,
		}
		defer rotator.Close()
		logger = newLogger(io.MultiWriter(os.Stdout, rotator), logLevel)
		slog.SetDefault(logger)
	}
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize database connection and run migrations
	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	logger.Info("Database connection established")

	if err := runMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully")

	// 5. Start the system group seeder in a separate goroutine
	seeder, err := groups.NewSeeder(dbpool, logger, cfg.GroupsDir, cfg.GroupsReloadSchedule)
	if err != nil {
		return fmt.Errorf("failed to create group seeder: %w", err)
	}
	go seeder.Start(ctx)

	// 6. Initialize application components
	router, err := newRouter(dbpool, cfg, logger)
	if err != nil {
		return err
	}

	// 7. Serve until a shutdown signal arrives
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received. Draining connections.")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Shutdown complete")
	return nil
}

// newRouter wires the report engine, tracker, group service and model client
// behind the HTTP API.
func newRouter(dbpool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger, llmOpts ...option.RequestOption) (http.Handler, error) {
	policy, err := report.NewPolicy(cfg.CachePolicy, cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache policy: %w", err)
	}
	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.AnthropicAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Concurrency: cfg.LLMConcurrency,
	}, logger, llmOpts...)
	store := report.NewStore(database.New(dbpool), policy, logger)
	repoTracker := tracker.New(dbpool, logger)
	engine := report.NewEngine(store, repoTracker, llmClient, llmClient, report.Options{
		MaxItems:         cfg.MaxItemsPerSection,
		FetchTimeout:     cfg.FetchTimeout,
		SummarizeTimeout: cfg.SummarizeTimeout,
		AggregateTimeout: cfg.AggregateTimeout,
		SingleFlight:     cfg.SingleFlight,
	}, logger)

	sources := func(token string) (api.Source, error) {
		client, err := github.NewClient(token, logger,
			github.WithEnterpriseURL(cfg.GithubAPIURL),
			github.WithMaxItems(cfg.MaxItemsPerSection),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	return api.NewRouter(engine, repoTracker, groups.NewService(dbpool, logger), llmClient, sources, api.Options{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.FrontendURLs,
	}, logger), nil
}

func newLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func runMigrations(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
