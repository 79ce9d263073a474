package app

import (
	"fmt"
	"time"
)

// Config holds the fully resolved settings for one tool invocation.
type Config struct {
	// Command is one of "check", "build" or "verify".
	Command string

	// ManifestPath points at the build manifest (.hcl, .yaml or .yml).
	ManifestPath string

	// OutputDir is where the collected bundle folder is created.
	OutputDir string

	// CachePath is the bbolt build cache. Empty disables the cache for
	// build; verify requires it.
	CachePath string

	// Timestamp pins the build time for deterministic output. Zero means
	// time.Now().
	Timestamp time.Time

	LogFormat string
	LogLevel  string
}

// NewConfig validates the cross-field constraints and returns the config.
func NewConfig(c Config) (*Config, error) {
	switch c.Command {
	case "check", "build", "verify":
	default:
		return nil, fmt.Errorf("unknown command %q", c.Command)
	}
	if c.ManifestPath == "" {
		return nil, fmt.Errorf("a manifest path is required")
	}
	if c.Command == "verify" && c.CachePath == "" {
		return nil, fmt.Errorf("verify needs a build cache (-cache or LAUNCHPACK_CACHE)")
	}
	return &c, nil
}
