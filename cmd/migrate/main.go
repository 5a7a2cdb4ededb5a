package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"acquisitions/internal/platform/config"
	"acquisitions/internal/platform/db"
	"acquisitions/internal/platform/logger"
	"acquisitions/migrations"
)

func main() {
	log := logger.NewLogger("migrate")

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("migrations applied")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	conn, err := sql.Open("pgx", db.BuildDSN(cfg.DB))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer conn.Close()

	return migrations.Migrate(conn)
}
