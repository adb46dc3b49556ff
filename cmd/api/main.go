package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"fes-bids/internal/api"
	"fes-bids/internal/compile"
	"fes-bids/internal/config"
	"fes-bids/internal/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfgPath := os.Getenv("FES_CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Development); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	ctx := logger.WithFields(context.Background(), "component", "api")

	// Set up Gin router
	if cfg.Secrets.APIEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := compile.Wire(cfg)
	if engine.OpenWarehouse == nil {
		logger.Warnf(ctx, "no warehouse DSN configured, upload_sql requests will only warn")
	}
	router := api.NewRouter(cfg, engine, nil)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Secrets.APIPort)
	logger.Infof(ctx, "Starting API server on %s (config %s)", addr, cfgPath)
	if err := router.Run(addr); err != nil {
		logger.Fatal(ctx, fmt.Errorf("failed to start server: %w", err))
	}
}
