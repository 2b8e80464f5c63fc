package main

//go:generate swag init -g main.go -d .,../../internal/handlers,../../internal/domains,../../transport/http/response,../../shared/dto -o ../../docs

import (
	"homestay/config"
	"homestay/di"
	"homestay/helper"
	"homestay/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title Homestay API
// @version 1.0
// @description Homestay marketplace: catalog, cart, checkout, bookings and payments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @securityDefinitions.apikey APIKey
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		migrateUp(cfg)
	}

	app := di.InitializeApp()

	app.Scheduler.Start()
	defer app.Scheduler.Stop()

	app.HTTP.Serve()
}

func migrateUp(cfg *config.Config) {
	m, err := helper.NewMigrator(cfg, helper.DefaultMigrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}
}
