package analysis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrhapile/launchpack/pkg/analysis"
	"github.com/mrhapile/launchpack/pkg/types"
)

func TestAnalyzeRefusesStrayEnvFile(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	envFile := filepath.Join(root, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_KEY=abc\nDISCORD_TOKEN=xyz\n"), 0600))

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, "environment file .env")
	// Key names are reported so the author knows what almost shipped;
	// values never appear.
	require.ErrorContains(t, err, "API_KEY")
	require.ErrorContains(t, err, "DISCORD_TOKEN")
	require.NotContains(t, err.Error(), "abc")
	require.NotContains(t, err.Error(), "xyz")
}

func TestAnalyzeRefusesCredentialFile(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	require.NoError(t, os.WriteFile(filepath.Join(root, "google_credentials.json"), []byte("{}"), 0600))

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, "credential file google_credentials.json")
}

func TestAnalyzeRefusesPrivateKey(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	require.NoError(t, os.WriteFile(filepath.Join(root, "id_rsa"), []byte("key"), 0600))

	_, err := analysis.Analyze(m)
	require.ErrorContains(t, err, "private key id_rsa")
}

func TestAnalyzeAllowsExcludedSecrets(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	// Secrets inside the excluded helper folder never reach the closure.
	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", ".env"), []byte("API_KEY=abc\n"), 0600))

	_, err := analysis.Analyze(m)
	require.NoError(t, err)
}

func TestAnalyzeSkipsDeclaredDataFromGuard(t *testing.T) {
	m := fixture(t)
	root := filepath.Dir(m.Entrypoint)
	settings := filepath.Join(root, "client_secret.json")
	require.NoError(t, os.WriteFile(settings, []byte("{}"), 0600))
	m.Datas = append(m.Datas, types.FilePair{Src: settings, Dest: "config"})

	_, err := analysis.Analyze(m)
	require.NoError(t, err)
}
