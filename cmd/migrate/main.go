package main

import (
	"context"
	"flag"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/config"
	"github.com/jwalitptl/chronosync/internal/repository/postgres"
	"github.com/jwalitptl/chronosync/pkg/logger"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Console: cfg.Log.Format == "console",
		Service: "chronosync-migrate",
	}).SetGlobal()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *down > 0 {
		if err := postgres.MigrateDown(db, *down); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		log.Info().Int("steps", *down).Msg("migrations rolled back")
		return
	}

	if err := postgres.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}
