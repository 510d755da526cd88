package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"shift-etl/internal/model"
	"shift-etl/internal/store"
	"shift-etl/pkg/metrics"
)

// Source produces the raw shift records for a run.
type Source interface {
	FetchAll(ctx context.Context) ([]model.RawShift, error)
}

// Run executes one full ETL pass: fetch everything, flatten everything,
// persist the entity rows, then compute and persist the KPI rows from
// the in-memory dataset. The stages run strictly in sequence and every
// error is fatal to the run. When truncate is set, prior shift-derived
// rows and KPI rows are cleared before the write phase so reruns with a
// fixed input seed stay idempotent.
func Run(ctx context.Context, runID string, st *store.Store, src Source, truncate bool, log *zap.Logger) (err error) {
	start := time.Now()
	log.Info("starting etl run", zap.String("run_id", runID))

	defer func() {
		if err != nil {
			st.UpdateRunStatus(runID, model.RunStatusFailed)
			st.SaveRunError(runID, err)
			metrics.RunsTotal.WithLabelValues(model.RunStatusFailed).Inc()
			log.Error("etl run failed", zap.String("run_id", runID), zap.Error(err))
		}
	}()

	st.UpdateRunStatus(runID, model.RunStatusFetching)
	records, err := src.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching shifts: %w", err)
	}
	metrics.RecordsFetched.Add(float64(len(records)))

	st.UpdateRunStatus(runID, model.RunStatusFlattening)
	ds, err := Flatten(records)
	if err != nil {
		return fmt.Errorf("flattening shifts: %w", err)
	}

	if truncate {
		if err = st.Reset(); err != nil {
			return fmt.Errorf("resetting tables: %w", err)
		}
	}

	st.UpdateRunStatus(runID, model.RunStatusPersisting)
	if err = st.SaveDataset(ds); err != nil {
		return fmt.Errorf("persisting entities: %w", err)
	}
	metrics.RowsWritten.WithLabelValues("shifts").Add(float64(len(ds.Shifts)))
	metrics.RowsWritten.WithLabelValues("allowances").Add(float64(len(ds.Allowances)))
	metrics.RowsWritten.WithLabelValues("award_interpretations").Add(float64(len(ds.AwardInterpretations)))
	metrics.RowsWritten.WithLabelValues("breaks").Add(float64(len(ds.Breaks)))

	st.UpdateRunStatus(runID, model.RunStatusComputing)
	kpis, err := ComputeKPIs(ds, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("computing kpis: %w", err)
	}
	if err = st.SaveKPIs(kpis); err != nil {
		return fmt.Errorf("persisting kpis: %w", err)
	}
	metrics.RowsWritten.WithLabelValues("kpis").Add(float64(len(kpis)))

	if err = st.UpdateRunCounts(runID, ds); err != nil {
		return fmt.Errorf("recording run counts: %w", err)
	}
	st.UpdateRunStatus(runID, model.RunStatusCompleted)
	metrics.RunsTotal.WithLabelValues(model.RunStatusCompleted).Inc()

	log.Info("etl run completed",
		zap.String("run_id", runID),
		zap.Int("shifts", len(ds.Shifts)),
		zap.Int("allowances", len(ds.Allowances)),
		zap.Int("award_interpretations", len(ds.AwardInterpretations)),
		zap.Int("breaks", len(ds.Breaks)),
		zap.Duration("duration", time.Since(start)))
	return nil
}
