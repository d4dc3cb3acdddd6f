// Package commands implements the tasksctl subcommands.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/benvon/task-tracker/internal/config"
	"github.com/benvon/task-tracker/internal/database"
	"github.com/benvon/task-tracker/internal/services/auth"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openDatabase connects to PostgreSQL. The in-memory store is per process, so
// commands that read tasks refuse it.
func openDatabase(cfg *config.Config) (*database.DB, func(), error) {
	if cfg.UseMemoryStore() {
		return nil, nil, fmt.Errorf("DATABASE_URL=%s has no persistent data; point it at PostgreSQL", config.MemoryDatabaseURL)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return db, closeDB, nil
}

func newSessionTokens(cfg *config.Config, ttl time.Duration) (*auth.SessionTokens, error) {
	if ttl <= 0 {
		ttl = cfg.JWTTTL
	}
	sessions, err := auth.NewSessionTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create session tokens: %w", err)
	}
	return sessions, nil
}
