package blob

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// DirStore implements Store on a local directory. Used in development and
// tests where no object store is available. Keys are flattened to base
// names so uploads cannot escape the directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %q: %w", dir, err)
	}
	return &DirStore{dir: dir}, nil
}

func (d *DirStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path := filepath.Join(d.dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create blob file %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write blob file %q: %w", path, err)
	}
	return nil
}

func (d *DirStore) PublicRef(key string) string {
	abs, err := filepath.Abs(filepath.Join(d.dir, filepath.Base(key)))
	if err != nil {
		abs = filepath.Join(d.dir, filepath.Base(key))
	}
	return "file://" + abs
}

func (d *DirStore) List(_ context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob directory %q: %w", d.dir, err)
	}

	var objects []ObjectInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, ObjectInfo{
			Name:        entry.Name(),
			ContentType: contentTypeByName(entry.Name()),
			Size:        info.Size(),
		})
	}
	return objects, nil
}

func (d *DirStore) Download(_ context.Context, name string) ([]byte, error) {
	path := filepath.Join(d.dir, filepath.Base(name))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob file %q: %w", path, err)
	}
	return data, nil
}

func contentTypeByName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
