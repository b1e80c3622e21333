package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// defaultConfigFile is read from the working directory when --config is not
// given. A missing default file is not an error.
const defaultConfigFile = "ctesh.yaml"

// Config holds the shell settings.
type Config struct {
	Engine         string `koanf:"engine"`
	DSN            string `koanf:"dsn"`
	LogLevel       string `koanf:"log_level"`
	HistoryLimit   int    `koanf:"history_limit"`
	StatementCache int    `koanf:"statement_cache"`
}

// loadConfig layers defaults, the YAML file, CTESH_ env vars and explicitly
// set flags, in increasing order of precedence.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"engine":          "sqlite",
		"dsn":             ":memory:",
		"log_level":       "warn",
		"history_limit":   500,
		"statement_cache": 64,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// DATABASE_URL is a fallback only; CTESH_DSN wins over it.
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		if err := k.Set("dsn", dsn); err != nil {
			return nil, fmt.Errorf("failed to load DATABASE_URL: %w", err)
		}
	}
	if err := k.Load(env.Provider("CTESH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CTESH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" || f.Name == "exec" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	b, err := dialect.Lookup(c.Engine)
	if err != nil {
		return err
	}
	c.Engine = b.Name()
	if _, err := c.level(); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return errors.New("history_limit must not be negative")
	}
	return nil
}

// level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
