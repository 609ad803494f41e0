package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/meowkart/cat-ecommerce-golang/internal/config"
	"github.com/meowkart/cat-ecommerce-golang/internal/database"
	"github.com/meowkart/cat-ecommerce-golang/internal/handlers"
	"github.com/meowkart/cat-ecommerce-golang/internal/routes"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on system environment variables")
	}
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run schema migration")
	}
	logger.Info().Str("driver", cfg.DBDriver).Msg("database ready")

	// --- Application setup ---
	app := handlers.New(db, cfg, logger)
	router := routes.SetupRouter(app, cfg)

	// --- Start Server ---
	logger.Info().Str("port", cfg.Port).Msg("starting Cat eCommerce API server")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
