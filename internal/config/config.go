// Package config loads process configuration from the environment and
// default replay options from an optional YAML options file. Precedence
// is built-in defaults, then the options file, then CLI flags (applied
// by the caller).
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config is process-level configuration, resolved from RECOMP_* env vars.
type Config struct {
	// LogLevel selects the slog level: debug, info, warn, or error.
	LogLevel string `env:"RECOMP_LOG_LEVEL" envDefault:"info"`

	// InfeedCapacity bounds the engine's streaming input channel.
	InfeedCapacity int `env:"RECOMP_INFEED_CAPACITY" envDefault:"8"`

	// BaselineDir overrides where baselines are stored.
	BaselineDir string `env:"RECOMP_BASELINE_DIR"`

	// OptionsPath points at a YAML options file with default replay
	// options. Overridden by the --options flag.
	OptionsPath string `env:"RECOMP_OPTIONS"`
}

// Load resolves configuration from an environ slice (os.Environ form).
// Taking the slice rather than reading the process environment keeps the
// loader testable.
func Load(environ []string) (Config, error) {
	envMap := make(map[string]string, len(environ))
	for _, e := range environ {
		if idx := strings.Index(e, "="); idx != -1 {
			envMap[e[:idx]] = e[idx+1:]
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: envMap}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ParseLevel maps a log level name to its slog level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
