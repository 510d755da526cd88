// Package metrics exposes Prometheus counters for the ETL pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler returns the handler serving the metrics endpoint.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}

var (
	// RecordsFetched counts raw shift records pulled from the source.
	RecordsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shift_etl",
		Name:      "records_fetched_total",
		Help:      "Raw shift records fetched from the shifts API.",
	})

	// RowsWritten counts persisted rows, labelled by entity table.
	RowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shift_etl",
		Name:      "rows_written_total",
		Help:      "Rows appended to the store, per entity.",
	}, []string{"entity"})

	// RunsTotal counts finished runs, labelled by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shift_etl",
		Name:      "runs_total",
		Help:      "ETL runs finished, per outcome.",
	}, []string{"status"})
)
