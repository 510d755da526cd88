package config

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional YAML file,
// and environment variables. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ETL_CONFIG is set
//  3. env (prefix ETL_), e.g. ETL_SOURCE_URL, ETL_DATABASE_PATH
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ETL_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Env keys map to flat koanf keys: ETL_SOURCE_URL -> source_url.
	envProvider := env.Provider("ETL_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "etl_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.SourceURL == "" {
		return nil, errors.New("source_url must not be empty")
	}
	if cfg.DatabasePath == "" {
		return nil, errors.New("database_path must not be empty")
	}
	return &cfg, nil
}
