package api

import (
	httpSwagger "github.com/swaggo/http-swagger"

	"shift-etl/internal/api/handler"
	"shift-etl/pkg/metrics"
	"shift-etl/pkg/router"
)

// RegisterRoutes mounts the ETL API onto the router. More specific
// routes are registered first.
func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.POST("/api/v1/runs", h.CreateRun)
	r.GET("/api/v1/runs", h.ListRuns)
	r.GET("/api/v1/runs/*/errors", h.GetRunErrors)
	r.GET("/api/v1/runs/*", h.GetRun)
	r.GET("/api/v1/kpis", h.LatestKPIs)
	r.GET("/metrics", metrics.HTTPHandler().ServeHTTP)
	r.GET("/swagger/*", httpSwagger.WrapHandler.ServeHTTP)
}
