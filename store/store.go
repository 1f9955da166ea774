// Package store provides durable single-document JSON storage for the
// site's cache envelopes, one file per logical cache.
package store

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

// File persists one value of type T as indented JSON at a fixed path.
type File[T any] struct {
	path string
}

// NewFile creates a store backed by the file at path. The parent
// directory is created on first write, not here.
func NewFile[T any](path string) *File[T] {
	return &File[T]{path: path}
}

// Path returns the configured file path.
func (f *File[T]) Path() string {
	return f.path
}

// Read loads the stored value. On a missing file, unreadable file, or
// parse failure it returns (def, false) — the cache is disposable, so
// corruption heals by discarding. It never returns an error.
func (f *File[T]) Read(def T) (T, bool) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return def, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return def, false
	}
	return v, true
}

// Write persists v, creating the parent directory if needed. Write to a
// temporary file first, then rename (atomic operation).
func (f *File[T]) Write(v T) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := f.path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, b, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpPath, f.path)
}
