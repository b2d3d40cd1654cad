package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"multidict/storage"
)

type Config struct {
	LogLevel   string
	LogFormat  string
	CompactMin int
}

// Bind registers the configuration flags on fs. Defaults come from the
// MDTOOL_* environment variables when set.
func Bind(fs *pflag.FlagSet) *Config {
	cfg := &Config{}
	fs.StringVar(&cfg.LogLevel, "log-level", envStr("MDTOOL_LOG_LEVEL", "info"), "log level (trace, debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", envStr("MDTOOL_LOG_FORMAT", "console"), "log format (console, json)")
	fs.IntVar(&cfg.CompactMin, "compact-min", envInt("MDTOOL_COMPACT_MIN", storage.DefaultCompactMin), "dead slots tolerated before an insert compacts the store")
	return cfg
}

// Validate checks values that flags cannot type-check.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.CompactMin < 1 {
		return fmt.Errorf("compact-min must be positive, got %d", c.CompactMin)
	}
	return nil
}

// StoreOptions returns the store options described by the configuration.
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{CompactMin: c.CompactMin}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
