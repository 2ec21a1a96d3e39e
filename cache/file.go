package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps translations in a single JSON object file whose keys are
// source texts and whose values are translations.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file is read and written
// back immediately so that an unreadable or unwritable location is reported
// here rather than after translation work has been done.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("cache file path is empty")
	}

	s := &FileStore{path: path}
	ctx := context.Background()

	entries, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, entries); err != nil {
		return nil, fmt.Errorf("cache file %s is not writable: %w", path, err)
	}

	return s, nil
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the cache file. A missing file is an empty cache.
func (s *FileStore) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	entries := make(map[string]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return entries, nil
}

// Save writes all entries to the cache file. The file is replaced
// atomically through a temporary file in the same directory.
func (s *FileStore) Save(ctx context.Context, entries map[string]string) error {
	if entries == nil {
		entries = map[string]string{}
	}

	var buf bytes.Buffer
	if err := encodeEntries(&buf, entries, ""); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Verify FileStore implements Store
var _ Store = (*FileStore)(nil)
