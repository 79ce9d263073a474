// Package bundler turns a validated build manifest into one collected
// output folder: a deterministic code archive, a launcher named after the
// bundle, and every declared data and binary file.
package bundler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/mrhapile/launchpack/pkg/analysis"
	"github.com/mrhapile/launchpack/pkg/buildcache"
	"github.com/mrhapile/launchpack/pkg/manifest"
	"github.com/mrhapile/launchpack/pkg/types"
)

// Option configures the build.
type Option func(*config)

type config struct {
	timestamp time.Time
	outputDir string
	cache     *buildcache.Store
	logger    *slog.Logger
}

// WithTimestamp sets a specific timestamp for deterministic output.
// If zero, defaults to time.Now() (which breaks determinism across runs).
func WithTimestamp(t time.Time) Option {
	return func(c *config) {
		c.timestamp = t
	}
}

// WithOutputDir sets the directory under which the collected folder is
// created.
func WithOutputDir(path string) Option {
	return func(c *config) {
		c.outputDir = path
	}
}

// WithCache records the produced bundle manifest in the given store after a
// successful build.
func WithCache(s *buildcache.Store) Option {
	return func(c *config) {
		c.cache = s
	}
}

// WithLogger sets the logger used during the build.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Build validates the manifest, computes the code closure, archives it, and
// collects the final output folder named m.Name.
func Build(m *types.BuildManifest, opts ...Option) (*types.BuildResult, error) {
	cfg := &config{
		timestamp: time.Now(), // Default, can be overridden for determinism
		outputDir: ".",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := manifest.Validate(m); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	closure, err := analysis.Analyze(m)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	cfg.logger.Debug("analysis complete.", "files", len(closure.Files), "skipped", len(closure.Skipped))

	mb := NewManifestBuilder(m.Name, cfg.timestamp)
	aw := NewArchiveWriter(cfg.timestamp, m.Options.Compress)

	for _, f := range closure.Files {
		content, err := os.ReadFile(f.Src)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.Src, err)
		}
		aw.AddFile(f.Path, content)
		// Manifest paths describe the bundle as it looks after the
		// launcher unpacks the archive.
		mb.AddFile(path.Join(AppDir, f.Path), content)
	}

	outDir, err := filepath.Abs(filepath.Join(cfg.outputDir, m.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	col := newCollector(outDir)

	if err := col.copyPairs(m.Datas, mb); err != nil {
		return nil, fmt.Errorf("failed to collect data files: %w", err)
	}
	if err := col.copyPairs(m.Binaries, mb); err != nil {
		return nil, fmt.Errorf("failed to collect binaries: %w", err)
	}

	launcherPath, launcher, err := col.writeLauncher(m.Name, closure.Entry, m.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to write launcher: %w", err)
	}
	mb.AddFile(m.Name, launcher)

	if m.Options.Debug {
		report, err := json.MarshalIndent(closure, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal analysis report: %w", err)
		}
		if err := col.writeFile(AnalysisFile, report, 0644); err != nil {
			return nil, err
		}
		mb.AddFile(AnalysisFile, report)
	}

	archivePath := filepath.Join(outDir, archiveName(m.Name, m.Options.Compress))
	size, err := aw.WriteToDisk(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to write archive: %w", err)
	}

	bundle := mb.Build()
	manifestBytes, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	// The manifest goes into the bundle but never lists itself.
	if err := col.writeFile(ManifestFile, manifestBytes, 0644); err != nil {
		return nil, err
	}

	if cfg.cache != nil {
		if err := cfg.cache.Put(bundle); err != nil {
			return nil, fmt.Errorf("failed to record bundle in cache: %w", err)
		}
	}

	cfg.logger.Info("bundle collected.",
		"name", m.Name,
		"output", outDir,
		"files", bundle.TotalFiles,
		"archived_bytes", size,
	)

	return &types.BuildResult{
		OutputDir:    outDir,
		ArchivePath:  archivePath,
		LauncherPath: launcherPath,
		FileCount:    bundle.TotalFiles + 1, // +1 for manifest.json
		SizeBytes:    size,
		Manifest:     bundle,
	}, nil
}
