package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/wordgym/wordgym-api/internal/config"
	"github.com/wordgym/wordgym-api/internal/platform/memstore"
	"github.com/wordgym/wordgym-api/internal/platform/postgres"
	"github.com/wordgym/wordgym-api/internal/service/auth"
	"github.com/wordgym/wordgym-api/internal/store"
)

// application holds the wired dependencies for the HTTP server.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB // nil when running on the memory backend

	userStore    store.UserStore
	deckStore    store.DeckStore
	streakStore  store.StreakStore
	sessionStore store.SessionStore
	txRunner     store.TxRunner

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
}

// newApplication wires stores and services according to the configured
// storage backend.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := openDatabase(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		if err := runMigrations(db, logger); err != nil {
			return nil, err
		}

		app.db = db
		app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
		app.deckStore = postgres.NewPostgresDeckStore(db, logger)
		app.streakStore = postgres.NewPostgresStreakStore(db, logger)
		app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
		app.txRunner = &store.SQLRunner{DB: db}

	case config.BackendMemory:
		logger.Warn("using in-memory storage, data is lost on shutdown")
		mem := memstore.New()
		app.userStore = mem.Users()
		app.deckStore = mem.Decks()
		app.streakStore = mem.Streaks()
		app.sessionStore = mem.Sessions()
		app.txRunner = mem.Runner()

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return app, nil
}

// cleanup releases resources on shutdown.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("Error closing database connection", "error", err)
	}
}
