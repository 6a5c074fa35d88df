// Package config holds the engine's own runtime configuration, loaded from
// G2_* environment variables. This is distinct from the per-project
// .g2/state.yaml ledger, which is data produced by the engine, not config
// consumed by it.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the engine's runtime configuration.
type Config struct {
	// LockStaleSeconds is how old a lock file's timestamp may be before a
	// new caller is allowed to break it and proceed.
	LockStaleSeconds int `env:"G2_LOCK_STALE_SECONDS" envDefault:"300"`

	// SubprocessTimeoutSeconds bounds every git invocation and every
	// post_apply/test command.
	SubprocessTimeoutSeconds int `env:"G2_SUBPROCESS_TIMEOUT_SECONDS" envDefault:"120"`

	// BaseIncludes lists the project-relative paths snapshotted into
	// .g2/base on init, in original_source's BASE_INCLUDES shape.
	BaseIncludes []string `env:"G2_BASE_INCLUDES" envSeparator:","`

	// BaseExcludes lists directory names pruned from every snapshot/copy
	// walk, in original_source's BASE_EXCLUDES shape.
	BaseExcludes []string `env:"G2_BASE_EXCLUDES" envSeparator:","`

	// RunTests controls whether apply/uninstall invoke a skill's
	// declared test command after mutating the tree.
	RunTests bool `env:"G2_RUN_TESTS" envDefault:"true"`
}

// Default returns the engine's built-in defaults, matching
// original_source/skills_engine/init.py's BASE_INCLUDES/BASE_EXCLUDES.
func Default() Config {
	return Config{
		LockStaleSeconds:         300,
		SubprocessTimeoutSeconds: 120,
		BaseIncludes:             []string{"src/", "package.json", ".env.example", "container/"},
		BaseExcludes:             []string{"node_modules", ".g2", ".git", "dist", "data", "groups", "store", "logs"},
		RunTests:                 true,
	}
}

// Load reads G2_* environment overrides on top of Default.
func Load() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LockStaleWindow is LockStaleSeconds as a time.Duration.
func (c Config) LockStaleWindow() time.Duration {
	return time.Duration(c.LockStaleSeconds) * time.Second
}

// SubprocessTimeout is SubprocessTimeoutSeconds as a time.Duration.
func (c Config) SubprocessTimeout() time.Duration {
	return time.Duration(c.SubprocessTimeoutSeconds) * time.Second
}
