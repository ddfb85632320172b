package main

import (
	"context"
	"log"
	"time"

	"brochureflow/internal/activities"
	"brochureflow/internal/config"
	"brochureflow/internal/logging"
	"brochureflow/internal/storage"
	"brochureflow/internal/workflows"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger, err := logging.New(cfg.LogJSON)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		logger.Fatal(err)
	}
	defer c.Close()

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()
	activities.Register(w, activities.New(cfg, db, logger))

	logger.Infow("brochureflow worker started", "temporal", cfg.TemporalAddress, "queue", cfg.TemporalTaskQueue, "service_mode", cfg.ServiceMode)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal(err)
	}
}
