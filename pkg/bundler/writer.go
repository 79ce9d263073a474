package bundler

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ArchiveWriter serializes the code closure into a tar archive with
// deterministic entry ordering and fixed timestamps.
type ArchiveWriter struct {
	files    map[string][]byte
	ts       time.Time
	compress bool
}

// NewArchiveWriter creates a writer. All entry timestamps are pinned to ts
// so identical inputs yield byte-identical archives.
func NewArchiveWriter(ts time.Time, compress bool) *ArchiveWriter {
	return &ArchiveWriter{
		files:    make(map[string][]byte),
		ts:       ts,
		compress: compress,
	}
}

// AddFile adds a file to the archive. path is relative to the archive root.
func (w *ArchiveWriter) AddFile(path string, content []byte) {
	w.files[path] = content
}

// WriteToDisk creates the archive at archivePath. It returns the total
// uncompressed size of the archived content.
func (w *ArchiveWriter) WriteToDisk(archivePath string) (int64, error) {
	f, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	var out io.Writer = f
	var gw *gzip.Writer
	if w.compress {
		gw = gzip.NewWriter(f)
		defer gw.Close()
		out = gw
	}

	tw := tar.NewWriter(out)
	defer tw.Close()

	// Sort files by path for deterministic output
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var totalSize int64
	for _, p := range paths {
		content := w.files[p]
		header := &tar.Header{
			Name:       p,
			Size:       int64(len(content)),
			Mode:       0644,
			ModTime:    w.ts,
			AccessTime: w.ts,
			ChangeTime: w.ts,
			Typeflag:   tar.TypeReg,
		}

		if err := tw.WriteHeader(header); err != nil {
			return 0, fmt.Errorf("failed to write header for %s: %w", p, err)
		}
		if _, err := tw.Write(content); err != nil {
			return 0, fmt.Errorf("failed to write content for %s: %w", p, err)
		}
		totalSize += int64(len(content))
	}

	return totalSize, nil
}
