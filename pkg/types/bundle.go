package types

import "time"

// BundleManifest describes every file placed in a collected bundle, both the
// code files inside the archive and the resources copied next to it.
type BundleManifest struct {
	// Name is the bundle name from the build manifest.
	Name string `json:"name"`

	// Version is the schema version of the bundle layout.
	Version string `json:"version"`

	// GeneratedAt is the timestamp when the bundle was created.
	GeneratedAt time.Time `json:"generatedAt"`

	// TotalFiles is the count of files included in the bundle.
	TotalFiles int `json:"totalFiles"`

	// Files lists all files with their metadata, sorted by path.
	Files []FileEntry `json:"files"`

	// ContentHash is the SHA256 over the per-file hashes. It deliberately
	// ignores GeneratedAt so two builds of unchanged inputs compare equal.
	ContentHash string `json:"contentHash"`
}

// FileEntry represents a single file inside the bundle.
type FileEntry struct {
	// Path is the bundle-relative path of the file.
	Path string `json:"path"`

	// Size is the size of the file in bytes.
	Size int64 `json:"size"`

	// SHA256 is the checksum of the file content.
	SHA256 string `json:"sha256"`
}

// BuildResult represents the output of a successful build.
type BuildResult struct {
	// OutputDir is the absolute path of the collected output folder.
	OutputDir string

	// ArchivePath is the absolute path of the code archive inside OutputDir.
	ArchivePath string

	// LauncherPath is the absolute path of the generated launcher.
	LauncherPath string

	// FileCount is the total number of files placed in the bundle.
	FileCount int

	// SizeBytes is the total uncompressed size of the archived code.
	SizeBytes int64

	Manifest BundleManifest
}
