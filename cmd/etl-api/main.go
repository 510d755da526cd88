// The etl-api command serves the HTTP API for triggering and
// inspecting ETL runs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	_ "shift-etl/docs"
	"shift-etl/internal/api"
	"shift-etl/internal/api/handler"
	"shift-etl/internal/config"
	"shift-etl/internal/source"
	"shift-etl/internal/store"
	"shift-etl/pkg/router"
	"shift-etl/pkg/utils"
)

// @title Shift ETL API
// @version 1.0
// @description Triggers and inspects shift ETL runs and their KPIs.
// @BasePath /api/v1
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}
	defer st.Close()

	client := source.New(cfg.SourceURL, utils.ParseDuration(cfg.HTTPTimeout, 30*time.Second), logger)

	r := router.New()
	api.RegisterRoutes(r, handler.New(st, client, cfg, logger))

	r.Start(cfg.Addr)
}

func newLogger(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		zapCfg.Level = lvl
	}
	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}
