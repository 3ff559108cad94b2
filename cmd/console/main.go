package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/VoidMesh/randint/cmd/console/models"
	"github.com/VoidMesh/randint/internal/config"
	"github.com/VoidMesh/randint/internal/db"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
)

func main() {
	dbPath := flag.String("db", "./notes.db", "Path to the SQLite database")
	startView := flag.String("view", "menu", "Starting view (menu, notes, settings)")
	logLevel := flag.String("log", "info", "Log level (debug, info, warn, error)")
	backend := flag.String("settings-backend", config.SettingsBackendSQLite, "Where settings are stored (sqlite, file)")
	settingsPath := flag.String("settings-path", "./plugins/random-int/data.json", "Settings file for the file backend")
	flag.Parse()

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	database, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		log.Fatal("Failed to open database", "error", err, "path", *dbPath)
	}
	defer database.Close()
	database.SetMaxOpenConns(1)

	if err := database.Ping(); err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run database migrations", "error", err)
	}

	var store settings.Store
	switch *backend {
	case config.SettingsBackendFile:
		store = settings.NewFileStore(afero.NewOsFs(), *settingsPath)
	default:
		store = settings.NewDBStore(db.NewLoggingQueries(database), "random-int")
	}

	p := plugin.New(store, rng.NewSource())
	if err := p.Load(context.Background()); err != nil {
		log.Fatal("Failed to load settings", "error", err)
	}

	// The terminal belongs to the UI from here on, so logs go to a file when
	// DEBUG is set and are discarded otherwise.
	if len(os.Getenv("DEBUG")) > 0 {
		f, err := tea.LogToFile("debug.log", "debug")
		if err != nil {
			fmt.Println("fatal:", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	app := models.NewApp(p, note.NewManager(database), *startView)
	program := tea.NewProgram(app, tea.WithAltScreen())

	log.Info("Starting randint console", "db_path", *dbPath, "start_view", *startView)

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running console:", err)
		os.Exit(1)
	}
}
