package presets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage stores the document as <dir>/<key>.json.
type FileStorage struct {
	path string
}

func NewFileStorage(dir, key string) *FileStorage {
	return &FileStorage{path: filepath.Join(dir, key+".json")}
}

func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) Name() string { return "file" }

func (f *FileStorage) Read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return data, nil
}

// Write replaces the file atomically via a temp file in the same directory.
func (f *FileStorage) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename to %s: %w", f.path, err)
	}
	return nil
}
