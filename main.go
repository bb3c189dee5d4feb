package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/game"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/httpserver"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/score"
	"github.com/L4wrenzzz/Guess-the-Number-Game/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/guess.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	players := store.NewSQLiteStore(db)
	engine := score.New(players)
	catalog := game.DefaultCatalog()
	srv := httpserver.New(db, catalog, engine)

	port := getEnv("PORT", "5000")
	log.Info().Str("port", port).Msg("starting guess-the-number server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
