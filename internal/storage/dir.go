// Package storage holds uploaded bytes on the local filesystem, keyed by the
// server-chosen stored name.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates no stored file exists under the given name.
var ErrNotFound = errors.New("storage: not found")

// Dir is a flat directory of uploaded files.
type Dir struct {
	root string
}

// NewDir creates the upload directory if needed and returns the store.
func NewDir(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Dir{root: root}, nil
}

// Save writes the stream under the stored name and returns the byte count.
func (d *Dir) Save(name string, r io.Reader) (int64, error) {
	path, err := d.resolve(name)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("storage: create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("storage: write file: %w", err)
	}
	return n, nil
}

// Open returns a read handle for the stored name.
func (d *Dir) Open(name string) (*os.File, error) {
	path, err := d.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// resolve rejects any name that would escape the root. Stored names are
// server-generated, so this only triggers on programming errors or tampered
// registry rows.
func (d *Dir) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: unsafe stored name %q", name)
	}
	return filepath.Join(d.root, name), nil
}
