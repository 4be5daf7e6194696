package main

import (
	"context"
	"flag"

	"github.com/happyloop/vendbot/internal/config"
	"github.com/happyloop/vendbot/internal/logger"
	"github.com/happyloop/vendbot/internal/store"
)

func main() {
	var dsn = flag.String("dsn", "", "SQLite DSN (overrides DATABASE_DSN env)")
	flag.Parse()

	log := logger.New()

	cfg := config.Load()
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Str("dsn", cfg.DatabaseDSN).Msg("Failed to open datastore")
	}

	inserted, err := store.Seed(context.Background(), db)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	if inserted == 0 {
		log.Info().Msg("Catalog already populated, nothing to do")
		return
	}
	log.Info().Int("products", inserted).Str("dsn", cfg.DatabaseDSN).Msg("Initial catalog seeded")
}
