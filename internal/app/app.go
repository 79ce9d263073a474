// Package app wires the manifest loader, bundler, and build cache behind
// the three CLI commands.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mrhapile/launchpack/pkg/buildcache"
	"github.com/mrhapile/launchpack/pkg/bundler"
	"github.com/mrhapile/launchpack/pkg/manifest"
	"github.com/mrhapile/launchpack/pkg/types"
)

// App runs one tool invocation.
type App struct {
	out    io.Writer
	logger *slog.Logger
}

// New creates the application. Human-readable command output goes to out;
// logs go to errW.
func New(out, errW io.Writer, cfg *Config) *App {
	return &App{
		out:    out,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, errW),
	}
}

// Run executes the configured command.
func (a *App) Run(cfg *Config) error {
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	switch cfg.Command {
	case "check":
		if err := manifest.Validate(m); err != nil {
			return fmt.Errorf("manifest validation failed: %w", err)
		}
		fmt.Fprintf(a.out, "%s: ok (entrypoint %s, %d data, %d binaries, %d hidden imports, %d excludes)\n",
			cfg.ManifestPath, m.Entrypoint, len(m.Datas), len(m.Binaries), len(m.HiddenImports), len(m.Excludes))
		return nil

	case "build":
		opts := []bundler.Option{
			bundler.WithOutputDir(cfg.OutputDir),
			bundler.WithLogger(a.logger),
		}
		if !cfg.Timestamp.IsZero() {
			opts = append(opts, bundler.WithTimestamp(cfg.Timestamp))
		}
		if cfg.CachePath != "" {
			cache, err := buildcache.Open(cfg.CachePath)
			if err != nil {
				return err
			}
			defer cache.Close()
			opts = append(opts, bundler.WithCache(cache))
		}
		result, err := bundler.Build(m, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "bundle %s: %d files, %d archived bytes\n", result.OutputDir, result.FileCount, result.SizeBytes)
		fmt.Fprintf(a.out, "launcher %s\n", result.LauncherPath)
		return nil

	case "verify":
		return a.verify(cfg, m)
	}
	return fmt.Errorf("unknown command %q", cfg.Command)
}

// verify rebuilds the bundle into a throwaway directory and compares its
// file manifest against the cached record from the last real build. The
// scratch build never touches the cache.
func (a *App) verify(cfg *Config, m *types.BuildManifest) error {
	cache, err := buildcache.Open(cfg.CachePath)
	if err != nil {
		return err
	}
	defer cache.Close()

	scratch, err := os.MkdirTemp("", "launchpack-verify-")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	opts := []bundler.Option{
		bundler.WithOutputDir(scratch),
		bundler.WithLogger(a.logger),
	}
	if !cfg.Timestamp.IsZero() {
		opts = append(opts, bundler.WithTimestamp(cfg.Timestamp))
	}
	result, err := bundler.Build(m, opts...)
	if err != nil {
		return err
	}

	drift, err := cache.Verify(result.Manifest)
	if err != nil {
		return err
	}
	if drift.Empty() {
		fmt.Fprintf(a.out, "bundle %s reproduces the recorded file set (%d files)\n", m.Name, result.Manifest.TotalFiles)
		return nil
	}
	return fmt.Errorf("bundle %s drifted from the recorded build: missing [%s], extra [%s], changed [%s]",
		m.Name,
		strings.Join(drift.Missing, ", "),
		strings.Join(drift.Extra, ", "),
		strings.Join(drift.Changed, ", "))
}
