// The etl command runs one full pipeline pass: fetch all shifts from
// the paginated API, flatten, persist, compute KPIs, and exit.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shift-etl/internal/config"
	"shift-etl/internal/pipeline"
	"shift-etl/internal/source"
	"shift-etl/internal/store"
	"shift-etl/pkg/utils"
)

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

	runID := uuid.New().String()
	if err := st.SaveRun(runID); err != nil {
		logger.Fatal("recording run", zap.Error(err))
	}

	if err := pipeline.Run(ctx, runID, st, client, cfg.Truncate, logger); err != nil {
		logger.Fatal("etl run failed", zap.Error(err))
	}
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
