package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/VoidMesh/randint/internal/api"
	"github.com/VoidMesh/randint/internal/config"
	"github.com/VoidMesh/randint/internal/db"
	"github.com/VoidMesh/randint/internal/metrics"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	setupLogging(cfg.Logging)
	log.Debug("Configuration loaded",
		"server_port", cfg.Server.Port,
		"db_path", cfg.Database.Path,
		"settings_backend", cfg.Plugin.SettingsBackend,
	)

	// Initialize database
	database, err := initializeDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer database.Close()

	// Run migrations
	log.Debug("Running database migrations")
	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run database migrations", "error", err)
	}
	log.Info("Database migrations completed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load plugin settings
	store, err := settingsStore(cfg.Plugin, database)
	if err != nil {
		log.Fatal("Failed to create settings store", "error", err)
	}
	p := plugin.New(store, rng.NewSource())
	if err := p.Load(ctx); err != nil {
		log.Fatal("Failed to load plugin settings", "error", err)
	}

	// Initialize API handlers
	noteManager := note.NewManager(database)
	routerCfg := api.RouterConfig{RequestTimeout: cfg.Server.RequestTimeout}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
		routerCfg.MetricsHandler = metrics.Handler()
	}
	router := api.SetupRoutes(api.NewHandler(p, noteManager), note.NewNoteHandlers(noteManager), routerCfg)
	log.Debug("API routes configured", "metrics_enabled", cfg.Metrics.Enabled)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting randint server", "port", cfg.Server.Port, "version", plugin.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", "error", err)
			return err
		}
		log.Debug("Server shutdown completed gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

func setupLogging(cfg config.LoggingConfig) {
	// Set log level
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warn("Invalid log level, using info", "level", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	// Configure output format
	switch {
	case cfg.Format == "pretty" || !cfg.Structured:
		log.SetFormatter(log.TextFormatter)
		log.SetReportCaller(true)
		log.SetReportTimestamp(true)
	case cfg.Format == "logfmt":
		log.SetFormatter(log.LogfmtFormatter)
	default:
		log.SetFormatter(log.JSONFormatter)
	}

	log.SetPrefix("[randint] ")
}

func initializeDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	log.Debug("Opening database connection", "path", cfg.Path)
	database, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	log.Debug("Configuring database connection pool",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
		"conn_max_lifetime", cfg.ConnMaxLifetime,
	)
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database initialized", "path", cfg.Path)
	return database, nil
}

func settingsStore(cfg config.PluginConfig, database *sql.DB) (settings.Store, error) {
	switch cfg.SettingsBackend {
	case config.SettingsBackendSQLite:
		log.Debug("Using sqlite settings store", "plugin_id", cfg.ID)
		return settings.NewDBStore(db.NewLoggingQueries(database), cfg.ID), nil
	case config.SettingsBackendFile:
		log.Debug("Using file settings store", "path", cfg.SettingsPath)
		return settings.NewFileStore(afero.NewOsFs(), cfg.SettingsPath), nil
	default:
		return nil, fmt.Errorf("unknown settings backend %q", cfg.SettingsBackend)
	}
}
