// Package buildcache persists the manifest of each produced bundle so a
// later invocation can check that an unchanged build manifest and unchanged
// inputs reproduce an identical file set.
package buildcache

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mrhapile/launchpack/pkg/types"
)

var bucketBundles = []byte("bundles")

// Store is a bbolt-backed record of previously built bundles, keyed by
// bundle name.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open build cache %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBundles)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize build cache: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put records the bundle manifest, replacing any previous record for the
// same bundle name.
func (s *Store) Put(m types.BundleManifest) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode bundle manifest: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBundles).Put([]byte(m.Name), raw)
	})
}

// Get returns the recorded manifest for name, if any.
func (s *Store) Get(name string) (*types.BundleManifest, bool, error) {
	var m *types.BundleManifest
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketBundles).Get([]byte(name))
		if raw == nil {
			return nil
		}
		m = &types.BundleManifest{}
		return json.Unmarshal(raw, m)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read build cache: %w", err)
	}
	return m, m != nil, nil
}

// Drift describes how a freshly built bundle differs from the recorded one.
type Drift struct {
	Missing []string // recorded before, absent now
	Extra   []string // present now, not recorded before
	Changed []string // present in both with different content
}

// Empty reports whether the two manifests describe the same file set.
func (d *Drift) Empty() bool {
	return len(d.Missing) == 0 && len(d.Extra) == 0 && len(d.Changed) == 0
}

// Verify compares a freshly computed manifest against the recorded one for
// the same bundle name. Timestamps are ignored; only paths and content
// hashes count.
func (s *Store) Verify(m types.BundleManifest) (*Drift, error) {
	prev, ok, err := s.Get(m.Name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no recorded bundle named %q in cache", m.Name)
	}
	return diffManifests(prev, &m), nil
}

func diffManifests(prev, cur *types.BundleManifest) *Drift {
	prevFiles := hashByPath(prev)
	curFiles := hashByPath(cur)

	d := &Drift{}
	for p, h := range prevFiles {
		ch, ok := curFiles[p]
		switch {
		case !ok:
			d.Missing = append(d.Missing, p)
		case ch != h:
			d.Changed = append(d.Changed, p)
		}
	}
	for p := range curFiles {
		if _, ok := prevFiles[p]; !ok {
			d.Extra = append(d.Extra, p)
		}
	}
	sort.Strings(d.Missing)
	sort.Strings(d.Extra)
	sort.Strings(d.Changed)
	return d
}

func hashByPath(m *types.BundleManifest) map[string]string {
	files := make(map[string]string, len(m.Files))
	for _, f := range m.Files {
		files[f.Path] = f.SHA256
	}
	return files
}
