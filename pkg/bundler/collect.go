package bundler

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrhapile/launchpack/pkg/types"
)

// collector assembles the output folder: the code archive, the launcher,
// and every declared data and binary file copied verbatim to its
// destination folder.
type collector struct {
	dir string
}

func newCollector(dir string) *collector {
	return &collector{dir: dir}
}

// copyPairs copies each pair's source into the bundle and records it in the
// manifest builder under its bundle-relative path.
func (c *collector) copyPairs(pairs []types.FilePair, mb *ManifestBuilder) error {
	for _, p := range pairs {
		content, err := os.ReadFile(p.Src)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p.Src, err)
		}
		rel := path.Join(filepath.ToSlash(p.Dest), filepath.Base(p.Src))
		if err := c.writeFile(rel, content, 0644); err != nil {
			return err
		}
		mb.AddFile(rel, content)
	}
	return nil
}

// writeLauncher emits the bundle's entry-point launcher: a shell script that
// unpacks the code archive on first run and execs the entry point. When the
// console option is off, launcher output goes to <name>.log beside the
// bundle instead of the terminal.
func (c *collector) writeLauncher(name, entry string, opts types.BuildOptions) (string, []byte, error) {
	tarFlags := "-xf"
	if opts.Compress {
		tarFlags = "-xzf"
	}
	redirect := ""
	if !opts.Console {
		redirect = fmt.Sprintf(` >>"$DIR/%s.log" 2>&1`, name)
	}

	script := fmt.Sprintf(`#!/bin/sh
# Launcher for %[1]s. Unpacks the code archive on first run.
set -e
DIR=$(CDPATH= cd -- "$(dirname -- "$0")" && pwd)
if [ ! -d "$DIR/%[2]s" ]; then
	mkdir -p "$DIR/%[2]s"
	tar %[3]s "$DIR/%[4]s" -C "$DIR/%[2]s"
fi
exec "$DIR/%[2]s/%[5]s" "$@"%[6]s
`, name, AppDir, tarFlags, archiveName(name, opts.Compress), entry, redirect)

	content := []byte(script)
	if err := c.writeFile(name, content, 0755); err != nil {
		return "", nil, err
	}
	return filepath.Join(c.dir, name), content, nil
}

func (c *collector) writeFile(rel string, content []byte, mode os.FileMode) error {
	dst := filepath.Join(c.dir, filepath.FromSlash(rel))
	// Validation already rejects escaping destinations; this is the
	// collector's own invariant so it can never write outside its folder.
	if dst != c.dir && !strings.HasPrefix(dst, c.dir+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to write %s outside the bundle folder", rel)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", rel, err)
	}
	if err := os.WriteFile(dst, content, mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return nil
}
