package main

import (
	"log"
	"net/http"

	"brochureflow/internal/api"
	"brochureflow/internal/config"
	"brochureflow/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger, err := logging.New(cfg.LogJSON)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	h := api.NewServer(cfg, logger)
	logger.Infow("brochureflow api listening", "addr", cfg.APIAddr, "service_mode", cfg.ServiceMode)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		logger.Fatal(err)
	}
}
