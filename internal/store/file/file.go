// Package file stores persistence keys as files in one directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samanthvittal/bookmark-browser/internal/store"
)

// Backend keeps each key in <dir>/<key>.
type Backend struct {
	dir string
}

// New creates a file backend rooted at dir. The directory is created on first write.
func New(dir string) *Backend {
	return &Backend{dir: filepath.Clean(dir)}
}

// Dir returns the backing directory.
func (b *Backend) Dir() string {
	return b.dir
}

// Path returns the file that holds key.
func (b *Backend) Path(key string) string {
	return filepath.Join(b.dir, key)
}

// Read returns the contents of key, or store.ErrNotFound.
func (b *Backend) Read(_ context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(b.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return data, err
}

// Write replaces key atomically: the data lands in a temp file in the same
// directory which is then renamed over the target.
func (b *Backend) Write(_ context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", b.dir, err)
	}
	return writeFileAtomic(b.Path(key), data, 0o600)
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
