package bundler

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/mrhapile/launchpack/pkg/types"
)

// ManifestBuilder accumulates per-file checksums for everything placed in a
// bundle and produces the final BundleManifest.
type ManifestBuilder struct {
	manifest types.BundleManifest
}

func NewManifestBuilder(name string, ts time.Time) *ManifestBuilder {
	return &ManifestBuilder{
		manifest: types.BundleManifest{
			Name:        name,
			Version:     LayoutVersion,
			GeneratedAt: ts,
			Files:       []types.FileEntry{},
		},
	}
}

func (mb *ManifestBuilder) AddFile(path string, data []byte) {
	hash := sha256.Sum256(data)
	mb.manifest.Files = append(mb.manifest.Files, types.FileEntry{
		Path:   path,
		Size:   int64(len(data)),
		SHA256: hex.EncodeToString(hash[:]),
	})
	mb.manifest.TotalFiles++
}

// Build sorts the entries and seals the manifest with a content hash over
// the per-file hashes. The hash excludes GeneratedAt, so rebuilding
// unchanged inputs yields the same ContentHash.
func (mb *ManifestBuilder) Build() types.BundleManifest {
	sort.Slice(mb.manifest.Files, func(i, j int) bool {
		return mb.manifest.Files[i].Path < mb.manifest.Files[j].Path
	})
	hasher := sha256.New()
	for _, f := range mb.manifest.Files {
		hasher.Write([]byte(f.Path))
		hasher.Write([]byte(f.SHA256))
	}
	mb.manifest.ContentHash = hex.EncodeToString(hasher.Sum(nil))
	return mb.manifest
}
