package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pictocat/backend/internal/config"
	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/handlers"
	"github.com/pictocat/backend/internal/routes"
	"github.com/pictocat/backend/internal/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal().Err(err).Msg("❌ MongoDB connection failed")
	}
	defer database.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("❌ Failed to create MongoDB indexes")
	}
	if err := services.EnsureShopData(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("❌ Failed to seed shop data")
	}
	cancel()

	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal().Err(err).Msg("❌ Redis connection failed")
	}
	defer database.DisconnectRedis()

	// Postgres analytics are optional; the API runs without them.
	if cfg.PostgresURI != "" {
		if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
			log.Warn().Err(err).Msg("⚠️ PostgreSQL unavailable, activity insights disabled")
			database.PostgresDB = nil
		} else {
			defer database.DisconnectPostgres()
		}
	}

	handlers.Init(cfg)
	if cfg.CloudinaryName != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Warn().Err(err).Msg("⚠️ Cloudinary unavailable, catalog uploads disabled")
		}
	}

	router := routes.New(cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("✅ Server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("❌ Server failed")
	}
}
