// Package config defines the process configuration and its loading.
package config

// Config contains process configuration for both the one-shot ETL
// binary and the API server.
type Config struct {
	// SourceURL is the paginated shifts endpoint.
	SourceURL string `koanf:"source_url"`

	// DatabasePath is the SQLite database file. Use ":memory:" for an
	// in-memory database.
	DatabasePath string `koanf:"database_path"`

	// Addr configures the API server listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Truncate clears the shift-derived tables and the KPI table before
	// the write phase, keeping repeated runs idempotent.
	Truncate bool `koanf:"truncate"`

	// HTTPTimeout bounds a single shifts API request, e.g. "30s".
	HTTPTimeout string `koanf:"http_timeout"`

	// RunTimeout bounds a whole ETL run started via the API, e.g. "5m".
	RunTimeout string `koanf:"run_timeout"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		SourceURL:    "http://localhost:8000/api/shifts",
		DatabasePath: "shifts.db",
		Addr:         ":8080",
		Truncate:     true,
		HTTPTimeout:  "30s",
		RunTimeout:   "5m",
		LogLevel:     "info",
	}
}
