package manifest

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mrhapile/launchpack/pkg/types"
)

// pemReadLimit caps how much of a candidate certificate bundle is read when
// probing for CERTIFICATE blocks.
const pemReadLimit = 4 << 20

// Validate performs the static consistency checks on a loaded manifest.
// All failures are collected and returned together as a joined error.
//
// The checks, in order: the entry point exists, every declared data and
// binary source exists, at least one data entry is a trust-root certificate
// bundle, excludes stay disjoint from data destinations and hidden imports,
// and the output name is usable as both an executable and a folder name.
func Validate(m *types.BuildManifest) error {
	var errs []error

	if m.Entrypoint == "" {
		errs = append(errs, errors.New("entrypoint is required"))
	} else if err := statFile(m.Entrypoint); err != nil {
		errs = append(errs, fmt.Errorf("entrypoint: %w", err))
	}

	for _, p := range m.Datas {
		if err := statFile(p.Src); err != nil {
			errs = append(errs, fmt.Errorf("data %s: %w", p.Src, err))
		}
		if err := checkDest(p.Dest); err != nil {
			errs = append(errs, fmt.Errorf("data %s: %w", p.Src, err))
		}
	}
	for _, p := range m.Binaries {
		if err := statFile(p.Src); err != nil {
			errs = append(errs, fmt.Errorf("binary %s: %w", p.Src, err))
		}
		if err := checkDest(p.Dest); err != nil {
			errs = append(errs, fmt.Errorf("binary %s: %w", p.Src, err))
		}
	}

	// Removing the certificate bundle would silently break every outbound
	// TLS connection the packaged application makes, so its presence is a
	// hard validation requirement rather than a convention.
	if !hasCertBundle(m.Datas) {
		errs = append(errs, errors.New("no trust-root certificate bundle among data entries (need a PEM file with at least one CERTIFICATE block)"))
	}

	errs = append(errs, checkExcludeOverlap(m)...)

	if m.Name == "" {
		errs = append(errs, errors.New("output name must not be empty"))
	} else if strings.ContainsAny(m.Name, `/\`) {
		errs = append(errs, fmt.Errorf("output name %q must not contain path separators", m.Name))
	}

	return errors.Join(errs...)
}

// checkDest keeps every destination a folder name within the bundle: it
// must be relative and must not climb out of the bundle root.
func checkDest(dest string) error {
	if dest == "" || dest == "." {
		return nil
	}
	if filepath.IsAbs(dest) {
		return fmt.Errorf("destination %q must be relative to the bundle folder", dest)
	}
	clean := path.Clean(filepath.ToSlash(dest))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("destination %q escapes the bundle folder", dest)
	}
	return nil
}

func statFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New("file does not exist")
		}
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory, want a file")
	}
	return nil
}

// hasCertBundle reports whether any data entry carries a PEM-encoded
// certificate bundle. Only the block types are inspected; the certificates
// themselves are not parsed.
func hasCertBundle(datas []types.FilePair) bool {
	for _, p := range datas {
		raw, err := readCapped(p.Src, pemReadLimit)
		if err != nil {
			continue
		}
		for len(raw) > 0 {
			block, rest := pem.Decode(raw)
			if block == nil {
				break
			}
			if block.Type == "CERTIFICATE" {
				return true
			}
			raw = rest
		}
	}
	return false
}

func readCapped(path string, limit int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > limit {
		return nil, fmt.Errorf("file %s exceeds %d byte probe limit", path, limit)
	}
	return os.ReadFile(path)
}

// checkExcludeOverlap enforces the disjointness invariant: a name placed in
// excludes must not simultaneously be shipped through datas or forced in
// through hidden imports, otherwise the resulting bundle is ambiguous.
func checkExcludeOverlap(m *types.BuildManifest) []error {
	var errs []error
	for _, ex := range m.Excludes {
		for _, hi := range m.HiddenImports {
			if hi == ex {
				errs = append(errs, fmt.Errorf("exclude %q also listed as a hidden import", ex))
			}
		}
		for _, p := range m.Datas {
			if pathHasSegment(p.Dest, ex) || pathHasSegment(p.Src, ex) {
				errs = append(errs, fmt.Errorf("exclude %q overlaps data entry %s -> %s", ex, p.Src, p.Dest))
			}
		}
	}
	return errs
}

// pathHasSegment reports whether name appears as a whole path segment of p.
func pathHasSegment(p, name string) bool {
	p = strings.ReplaceAll(p, `\`, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg == name {
			return true
		}
	}
	return false
}
