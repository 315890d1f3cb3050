// Package filesystem provides write-only, timestamp-addressed artifact
// storage for edited images and masks.
package filesystem

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store hands out collision-resistant output paths under a root
// directory. Filenames embed a UTC timestamp with microsecond precision
// plus a short random suffix so concurrent workflow runs writing to the
// same directory never contend on a name.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// EnsureDir creates the root directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact dir %s: %w", s.root, err)
	}
	return nil
}

// TimestampedPath returns a fresh output path for an artifact derived
// from stem, e.g. "street_20250114_093015_123456.png".
func (s *Store) TimestampedPath(stem, suffix string) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	now := time.Now().UTC()
	b := make([]byte, 2)
	_, _ = rand.Read(b)
	name := fmt.Sprintf("%s_%s_%06d_%s%s",
		stem, now.Format("20060102_150405"), now.Nanosecond()/1000, hex.EncodeToString(b), suffix)
	return filepath.Join(s.root, name), nil
}

// Stem returns the base name of path without its suffix, for deriving
// artifact names from input images.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
