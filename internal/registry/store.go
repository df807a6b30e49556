package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// snapshotPerm is the mode of new snapshot files.
const snapshotPerm = 0o644

// Store persists the registry as one JSON array file.
type Store struct {
	path string
}

// NewStore creates a store for the snapshot at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot.
//
// A missing or empty file yields an empty registry.
//
// Returns:
//   - *Registry: Loaded registry
//   - error: Read failure, or ErrCorruptSnapshot
func (s *Store) Load() (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if len(data) == 0 {
		return New(), nil
	}

	var channels []Channel
	if err := json.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, s.path, err)
	}

	r, err := FromChannels(channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, s.path, err)
	}
	return r, nil
}

// Save writes the whole registry, replacing the previous snapshot.
//
// The data goes to a temporary file in the same directory which is then
// renamed over the snapshot, so a crash leaves either the old or the new
// file.
func (s *Store) Save(r *Registry) error {
	data, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()        //nolint:errcheck,gosec // already failing
		os.Remove(tmpName) //nolint:errcheck,gosec // best-effort cleanup
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // best-effort cleanup
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, snapshotPerm); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // best-effort cleanup
		return fmt.Errorf("setting snapshot mode: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck,gosec // best-effort cleanup
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
