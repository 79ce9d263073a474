package analysis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrhapile/launchpack/pkg/analysis"
	"github.com/mrhapile/launchpack/pkg/types"
)

// fixture lays out a small project: a source root with an excluded helper
// folder, and a vendor directory serving hidden imports.
//
//	root/app.py            entry point
//	root/lib/util.py
//	root/lib/util.map      debug artifact, dropped by strip
//	root/scripts/deploy.sh excluded helper folder
//	root/certs/cacert.pem  declared data, never part of the closure
//	vendor/tzdata/zones.db hidden import "tzdata"
//	vendor/dotenv.py       hidden import "dotenv" (resolved by stem)
func fixture(t *testing.T) *types.BuildManifest {
	t.Helper()
	base := t.TempDir()
	root := filepath.Join(base, "root")
	vendor := filepath.Join(base, "vendor")

	files := map[string]string{
		filepath.Join(root, "app.py"):              "print('hi')\n",
		filepath.Join(root, "lib", "util.py"):      "def util(): pass\n",
		filepath.Join(root, "lib", "util.map"):     "{}",
		filepath.Join(root, "scripts", "deploy.sh"): "#!/bin/sh\n",
		filepath.Join(root, "certs", "cacert.pem"): "-----BEGIN CERTIFICATE-----\n",
		filepath.Join(vendor, "tzdata", "zones.db"): "zones",
		filepath.Join(vendor, "dotenv.py"):         "def load(): pass\n",
	}
	for path, content := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	return &types.BuildManifest{
		Entrypoint:  filepath.Join(root, "app.py"),
		Name:        "panel",
		SearchPaths: []string{vendor},
		Datas: []types.FilePair{
			{Src: filepath.Join(root, "certs", "cacert.pem"), Dest: "certs"},
		},
		HiddenImports: []string{"tzdata", "dotenv"},
		Excludes:      []string{"scripts"},
	}
}

func closurePaths(c *analysis.Closure) []string {
	paths := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

func TestAnalyze(t *testing.T) {
	m := fixture(t)

	c, err := analysis.Analyze(m)
	require.NoError(t, err)

	require.Equal(t, "app.py", c.Entry)
	paths := closurePaths(c)
	require.Contains(t, paths, "app.py")
	require.Contains(t, paths, "lib/util.py")
	require.Contains(t, paths, "tzdata/zones.db")
	require.Contains(t, paths, "dotenv.py")

	// Excluded folder pruned, declared data left to collection.
	require.NotContains(t, paths, "scripts/deploy.sh")
	require.NotContains(t, paths, "certs/cacert.pem")
	require.Contains(t, c.Skipped, "scripts/")

	require.IsIncreasing(t, paths)
}

func TestAnalyzeStripDropsDebugArtifacts(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	artifacts := []string{"lib/util.map", "lib/util.pdb", "app.debug"}
	for _, rel := range artifacts[1:] {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(rel)), []byte("dbg"), 0644))
	}

	c, err := analysis.Analyze(m)
	require.NoError(t, err)
	for _, rel := range artifacts {
		require.Contains(t, closurePaths(c), rel)
	}

	m.Options.Strip = true
	c, err = analysis.Analyze(m)
	require.NoError(t, err)
	for _, rel := range artifacts {
		require.NotContains(t, closurePaths(c), rel)
		require.Contains(t, c.Skipped, rel)
	}
}

func TestAnalyzeHiddenImportDirectoryOnlyGlobKeepsSearching(t *testing.T) {
	m := fixture(t)
	// A search path where "plugin.*" matches only a directory must not
	// satisfy the import; the later search path holding the real file wins.
	decoy := filepath.Join(t.TempDir(), "decoy")
	require.NoError(t, os.MkdirAll(filepath.Join(decoy, "plugin.d"), 0755))
	real := filepath.Join(t.TempDir(), "real")
	require.NoError(t, os.MkdirAll(real, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "plugin.py"), []byte("def run(): pass\n"), 0644))

	m.SearchPaths = append([]string{decoy}, append(m.SearchPaths, real)...)
	m.HiddenImports = append(m.HiddenImports, "plugin")

	c, err := analysis.Analyze(m)
	require.NoError(t, err)
	require.Contains(t, closurePaths(c), "plugin.py")
}

func TestAnalyzeHiddenImportDirectoryOnlyGlobFails(t *testing.T) {
	m := fixture(t)
	decoy := filepath.Join(t.TempDir(), "decoy")
	require.NoError(t, os.MkdirAll(filepath.Join(decoy, "plugin.d"), 0755))

	m.SearchPaths = append(m.SearchPaths, decoy)
	m.HiddenImports = append(m.HiddenImports, "plugin")

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, `hidden import "plugin"`)
}

func TestAnalyzeMissingHiddenImport(t *testing.T) {
	m := fixture(t)
	m.HiddenImports = append(m.HiddenImports, "sqlite_driver")

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, `hidden import "sqlite_driver"`)
}

func TestAnalyzeExcludedEntrypointFails(t *testing.T) {
	m := fixture(t)
	m.Excludes = append(m.Excludes, "app.py")

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, "pruned from its own closure")
}

func TestAnalyzeHiddenImportDirectoryKeepsPrefix(t *testing.T) {
	m := fixture(t)

	c, err := analysis.Analyze(m)
	require.NoError(t, err)

	for _, f := range c.Files {
		if filepath.Base(f.Src) == "zones.db" {
			require.Equal(t, "tzdata/zones.db", f.Path)
			return
		}
	}
	t.Fatal("hidden import tzdata was not resolved")
}
