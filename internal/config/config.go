package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the secure notes application.
//
// Fields:
//   - DataDir: base directory for all durable state (registry, per-user
//     crypto material, encrypted note blobs).
//   - AutoSaveInterval: minimum delay between periodic note flushes.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	DataDir          string
	AutoSaveInterval time.Duration
	LogLevel         string
}

// LoadDefaults populates c with sensible defaults. The data directory
// follows the platform per-user configuration convention, falling back to
// the current directory when none is defined.
func (c *Config) LoadDefaults() {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	c.DataDir = filepath.Join(base, "secure_notes")
	c.AutoSaveInterval = 2 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
