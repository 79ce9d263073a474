package bundler

const (
	ManifestFile = "manifest.json"
	AnalysisFile = "analysis.json"

	// AppDir is where the launcher unpacks the code archive on first run.
	AppDir = "app"

	// LayoutVersion is the schema version of the bundle layout.
	LayoutVersion = "v1"
)

// archiveName returns the archive filename for a bundle. The name is the
// same string that names the launcher and the output folder.
func archiveName(name string, compress bool) string {
	if compress {
		return name + ".tar.gz"
	}
	return name + ".tar"
}
