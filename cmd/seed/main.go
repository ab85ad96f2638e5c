package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/storefront/backend/internal/infrastructure/bootstrap"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		reset   bool
		timeout time.Duration
	)
	flag.BoolVar(&reset, "reset", false, "Delete all orders and products before seeding")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall timeout")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	// Seeding needs the tables regardless of the server setting
	cfg.Database.AutoMigrate = true

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rt, err := bootstrap.Init(ctx, cfg, bootstrap.Options{Component: "seed", SkipTelemetry: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close(ctx)

	inserted, err := persistence.NewSeeder(rt.Products, rt.Orders).Seed(ctx, reset)
	if err != nil {
		rt.Logger.Error("Seeding failed", zap.Error(err))
		rt.Close(ctx)
		os.Exit(1)
	}
	if inserted == 0 {
		rt.Logger.Info("Catalog already populated, nothing to do (use -reset to reseed)")
		return
	}
	rt.Logger.Info("Catalog seeded", zap.Int("products", inserted), zap.Bool("reset", reset))
}
