// Command migrate applies the booking schema and exits.
package main

import (
	"context"
	"time"

	"github.com/iliyamo/restaurant-table-booking/internal/config"
	"github.com/iliyamo/restaurant-table-booking/internal/database"
	"github.com/iliyamo/restaurant-table-booking/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("load config", "error", err)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "table-booking-migrate"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("migrate", "error", err)
	}
	log.Info("schema up to date", "db", cfg.DBName)
}
