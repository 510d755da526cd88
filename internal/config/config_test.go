package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-etl/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/shifts", cfg.SourceURL)
	assert.Equal(t, "shifts.db", cfg.DatabasePath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.Truncate)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ETL_SOURCE_URL", "http://shifts.internal/api/shifts")
	t.Setenv("ETL_DATABASE_PATH", "/tmp/etl.db")
	t.Setenv("ETL_TRUNCATE", "false")

	cfg, err := config.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://shifts.internal/api/shifts", cfg.SourceURL)
	assert.Equal(t, "/tmp/etl.db", cfg.DatabasePath)
	assert.False(t, cfg.Truncate)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source_url: http://from-file/api/shifts\naddr: \":9090\"\n"), 0o644))

	t.Setenv("ETL_CONFIG", path)
	t.Setenv("ETL_SOURCE_URL", "http://from-env/api/shifts")

	cfg, err := config.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://from-env/api/shifts", cfg.SourceURL, "env wins over file")
	assert.Equal(t, ":9090", cfg.Addr, "file wins over defaults")
}

func TestLoad_EmptySourceURLRejected(t *testing.T) {
	t.Setenv("ETL_SOURCE_URL", "")

	_, err := config.Load(context.Background())
	assert.Error(t, err)
}
