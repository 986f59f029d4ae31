// Package storage keeps local copies of uploaded files so content can be
// re-sent even when the platform file handle has gone stale.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store saves and serves file blobs by path.
type Store interface {
	// Save writes r into the store and returns the absolute path. baseName
	// only contributes its extension.
	Save(r io.Reader, baseName string) (string, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

// Local is a flat directory of uuid-named files.
type Local struct {
	dir string
}

// NewLocal creates the directory if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	return &Local{dir: abs}, nil
}

func (l *Local) Save(r io.Reader, baseName string) (string, error) {
	name := uuid.NewString() + ext(baseName)
	path := filepath.Join(l.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage save: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("storage save: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage save: %w", err)
	}
	return path, nil
}

func (l *Local) Open(path string) (io.ReadCloser, error) {
	confined, err := l.confine(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(confined)
	if err != nil {
		return nil, fmt.Errorf("storage open: %w", err)
	}
	return f, nil
}

func (l *Local) Remove(path string) error {
	confined, err := l.confine(path)
	if err != nil {
		return err
	}
	if err := os.Remove(confined); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage remove: %w", err)
	}
	return nil
}

// confine rejects paths escaping the store directory.
func (l *Local) confine(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("storage path: %w", err)
	}
	if abs != l.dir && !strings.HasPrefix(abs, l.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("storage path outside store: %s", path)
	}
	return abs, nil
}

// ext extracts a safe file extension from an upload's original name.
func ext(baseName string) string {
	e := strings.ToLower(filepath.Ext(filepath.Base(baseName)))
	if len(e) > 8 || strings.ContainsAny(e, " \t\n") {
		return ""
	}
	return e
}
