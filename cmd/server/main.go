package main

import (
	"context"

	"github.com/duarte/tender-finder/internal/api"
	"github.com/duarte/tender-finder/internal/config"
	"github.com/duarte/tender-finder/internal/db"
	"github.com/duarte/tender-finder/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	lg := logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		lg.Fatal().Err(err).Msg("migration failed")
	}

	srv := api.NewServer(db.NewStore(pool), lg)
	lg.Info().Str("port", cfg.Server.Port).Msg("server starting")
	if err := srv.Start(cfg.Server.Port); err != nil {
		lg.Fatal().Err(err).Msg("server stopped")
	}
}
