package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trackhub/backend/internal/api"
	"github.com/trackhub/backend/internal/config"
	"github.com/trackhub/backend/internal/db"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()

	ctx := context.Background()
	client, err := db.NewNeo4jClient(ctx, db.Neo4jConfig{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUser,
		Password: cfg.Neo4jPass,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("neo4j connection failed")
	}
	defer client.Close()

	if err := client.InitSchema(ctx, cfg.EmbeddingDim); err != nil {
		log.Fatal().Err(err).Msg("schema init failed")
	}

	h := api.NewHandler(cfg, client)
	defer h.Close()

	app := fiber.New(fiber.Config{
		AppName: "Track-Hub API",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "trackhub-backend",
		})
	})

	api.SetupRoutes(app, cfg, client, h)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("starting trackhub backend")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
