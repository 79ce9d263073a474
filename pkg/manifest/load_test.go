package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrhapile/launchpack/pkg/manifest"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadHCL(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.hcl", `
entrypoint     = "src/app.py"
name           = "panel"
hidden_imports = ["tzdata", "dotenv"]
excludes       = ["scripts"]
console        = false

data {
  src  = "certs/cacert.pem"
  dest = "certs"
}

binary {
  src  = "native/libsql.so"
  dest = "lib"
}
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)

	require.Equal(t, "panel", m.Name)
	require.Equal(t, filepath.Join(dir, "src", "app.py"), m.Entrypoint)
	require.Equal(t, []string{"tzdata", "dotenv"}, m.HiddenImports)
	require.Equal(t, []string{"scripts"}, m.Excludes)

	require.Len(t, m.Datas, 1)
	require.Equal(t, filepath.Join(dir, "certs", "cacert.pem"), m.Datas[0].Src)
	require.Equal(t, "certs", m.Datas[0].Dest)
	require.Len(t, m.Binaries, 1)
	require.Equal(t, "lib", m.Binaries[0].Dest)

	// Explicit console=false, everything else defaulted.
	require.False(t, m.Options.Console)
	require.False(t, m.Options.Debug)
	require.True(t, m.Options.Compress)
	require.False(t, m.Options.Strip)

	// Search paths default to the entry point's directory.
	require.Equal(t, []string{filepath.Join(dir, "src")}, m.SearchPaths)
}

func TestLoadHCLEnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LAUNCHPACK_TEST_ROOT", dir)

	path := writeManifest(t, dir, "build.hcl", `
entrypoint = "${env.LAUNCHPACK_TEST_ROOT}/app.py"
name       = "panel"
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app.py"), m.Entrypoint)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.yaml", `
entrypoint: src/app.py
name: panel
hidden_imports: [tzdata]
excludes: [scripts]
datas:
  - src: certs/cacert.pem
    dest: certs
options:
  console: false
  compress: false
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, "panel", m.Name)
	require.Equal(t, filepath.Join(dir, "src", "app.py"), m.Entrypoint)
	require.Equal(t, []string{"tzdata"}, m.HiddenImports)
	require.False(t, m.Options.Console)
	require.False(t, m.Options.Compress)
	require.False(t, m.Options.Debug)
}

func TestLoadYAMLRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.yaml", `
entrypoint: app.py
hidden_import: [tzdata]
`)

	_, err := manifest.Load(path)
	require.Error(t, err)
}

func TestLoadDefaultsNameFromEntrypoint(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.hcl", `
entrypoint = "launcher.py"
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, "launcher", m.Name)
}

func TestLoadDefaultsPairDest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.hcl", `
entrypoint = "app.py"

data {
  src = "cacert.pem"
}
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Len(t, m.Datas, 1)
	require.Equal(t, ".", m.Datas[0].Dest)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.toml", `entrypoint = "app.py"`)

	_, err := manifest.Load(path)
	require.ErrorContains(t, err, "unsupported manifest format")
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "build.hcl", `
entrypoint = "`+filepath.Join(dir, "app.py")+`"
name       = "panel"
`)

	m, err := manifest.Load(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app.py"), m.Entrypoint)
}
