// Package analysis computes the dependency closure of a build: the set of
// code files that will be serialized into the bundle archive.
//
// Discovery is deliberately name- and path-based. Language-aware import
// scanning belongs to the runtime's own tooling; this stage works purely
// from what the manifest declares: the entry point's source tree, forced
// hidden imports, and excluded names.
package analysis

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrhapile/launchpack/pkg/types"
)

// strippedExts are debug-symbol artifacts dropped when Options.Strip is set.
var strippedExts = map[string]struct{}{
	".pdb":   {},
	".map":   {},
	".debug": {},
}

// File is one member of the code closure.
type File struct {
	// Path is the slash-separated archive-relative path.
	Path string `json:"path"`

	// Src is the absolute path of the file on disk.
	Src string `json:"src"`

	Size int64 `json:"size"`
}

// Closure is the ordered result of the analysis stage.
type Closure struct {
	// Root is the primary source root (the entry point's directory).
	Root string `json:"root"`

	// Entry is the archive-relative path of the entry point.
	Entry string `json:"entry"`

	// Files is sorted by Path.
	Files []File `json:"files"`

	// Skipped records archive-relative paths pruned by excludes or strip,
	// kept for the debug report.
	Skipped []string `json:"skipped,omitempty"`
}

// Analyze walks the entry point's source tree, forces in every hidden
// import, prunes excluded names, and returns the deterministic closure.
// Declared data and binary sources never join the closure; they ship through
// collection instead.
func Analyze(m *types.BuildManifest) (*Closure, error) {
	root, err := filepath.Abs(filepath.Dir(m.Entrypoint))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root: %w", err)
	}

	c := &Closure{Root: root}
	excludes := make(map[string]struct{}, len(m.Excludes))
	for _, ex := range m.Excludes {
		excludes[ex] = struct{}{}
	}
	declared := declaredSources(m)
	seen := make(map[string]struct{})

	add := func(archivePath, src string, size int64) {
		if _, dup := seen[archivePath]; dup {
			return
		}
		seen[archivePath] = struct{}{}
		c.Files = append(c.Files, File{Path: archivePath, Src: src, Size: size})
	}

	if err := c.walkTree(root, "", m.Options.Strip, excludes, declared, add); err != nil {
		return nil, err
	}

	entryAbs, err := filepath.Abs(m.Entrypoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entrypoint: %w", err)
	}
	rel, err := filepath.Rel(root, entryAbs)
	if err != nil {
		return nil, fmt.Errorf("entrypoint %s is outside source root %s: %w", entryAbs, root, err)
	}
	c.Entry = filepath.ToSlash(rel)
	if _, ok := seen[c.Entry]; !ok {
		return nil, fmt.Errorf("entrypoint %s was pruned from its own closure; check excludes", m.Entrypoint)
	}

	for _, name := range m.HiddenImports {
		if err := c.resolveHiddenImport(name, m, excludes, declared, add); err != nil {
			return nil, err
		}
	}

	sort.Slice(c.Files, func(i, j int) bool { return c.Files[i].Path < c.Files[j].Path })
	sort.Strings(c.Skipped)

	if err := guardSecrets(c, declared); err != nil {
		return nil, err
	}
	return c, nil
}

// walkTree collects every file under dir into the closure, rooted at prefix
// inside the archive.
func (c *Closure) walkTree(dir, prefix string, strip bool, excludes, declared map[string]struct{}, add func(string, string, int64)) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		archivePath := path.Join(prefix, filepath.ToSlash(rel))

		if d.IsDir() {
			if p == dir {
				return nil
			}
			if _, ex := excludes[d.Name()]; ex {
				c.Skipped = append(c.Skipped, archivePath+"/")
				return filepath.SkipDir
			}
			return nil
		}

		if _, ex := excludes[d.Name()]; ex {
			c.Skipped = append(c.Skipped, archivePath)
			return nil
		}
		if _, isData := declared[p]; isData {
			return nil
		}
		if strip {
			if _, dbg := strippedExts[strings.ToLower(filepath.Ext(p))]; dbg {
				c.Skipped = append(c.Skipped, archivePath)
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		add(archivePath, p, info.Size())
		return nil
	})
}

// resolveHiddenImport forces the named module into the closure. A name may
// resolve to a directory, an exact file, or a file stem within one of the
// search paths; the first search path that yields anything wins. A hidden
// import that resolves nowhere is an error, since it exists precisely
// because discovery cannot find it.
func (c *Closure) resolveHiddenImport(name string, m *types.BuildManifest, excludes, declared map[string]struct{}, add func(string, string, int64)) error {
	for _, sp := range m.SearchPaths {
		cand := filepath.Join(sp, filepath.FromSlash(name))

		info, err := os.Stat(cand)
		if err == nil && info.IsDir() {
			return c.walkTree(cand, path.Clean(name), m.Options.Strip, excludes, declared, add)
		}
		if err == nil {
			add(path.Clean(name), cand, info.Size())
			return nil
		}

		matches, err := filepath.Glob(cand + ".*")
		if err != nil {
			return fmt.Errorf("bad hidden import pattern %q: %w", name, err)
		}
		sort.Strings(matches)
		found := false
		for _, match := range matches {
			mi, err := os.Stat(match)
			if err != nil || mi.IsDir() {
				continue
			}
			rel, err := filepath.Rel(sp, match)
			if err != nil {
				return err
			}
			add(filepath.ToSlash(rel), match, mi.Size())
			found = true
		}
		// A glob that matched only directories resolved nothing; keep
		// trying the remaining search paths.
		if found {
			return nil
		}
	}
	return fmt.Errorf("hidden import %q not found in search paths %v", name, m.SearchPaths)
}

func declaredSources(m *types.BuildManifest) map[string]struct{} {
	declared := make(map[string]struct{}, len(m.Datas)+len(m.Binaries))
	for _, p := range m.Datas {
		if abs, err := filepath.Abs(p.Src); err == nil {
			declared[abs] = struct{}{}
		}
	}
	for _, p := range m.Binaries {
		if abs, err := filepath.Abs(p.Src); err == nil {
			declared[abs] = struct{}{}
		}
	}
	return declared
}
