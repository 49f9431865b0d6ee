package manifest

import (
	"os"
	"path/filepath"
	"time"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
)

// Store reads and writes one manifest file. It is an explicit handle:
// every command receives a Store rather than reaching for an ambient
// path. Concurrent writers are not coordinated; a single local
// operator per project is the documented model.
type Store struct {
	path string
}

// NewStore returns a store for the manifest at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the manifest location.
func (s *Store) Path() string { return s.path }

// Exists reports whether the manifest file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and parses the manifest. A missing file fails with
// ErrManifestNotFound so callers can distinguish "not initialized"
// from a parse failure.
func (s *Store) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestNotFound, "no manifest at %s", s.path)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestNotFound, "cannot read manifest at %s", s.path)
	}
	return ParseManifest(data)
}

// LoadOrNew loads the manifest, returning a fresh empty one if the
// file does not exist yet.
func (s *Store) LoadOrNew() (*Manifest, error) {
	m, err := s.Load()
	if err != nil {
		if errors.IsCode(err, errors.ErrManifestNotFound) {
			return New(), nil
		}
		return nil, err
	}
	return m, nil
}

// Save writes the manifest atomically: serialize to a temp file in the
// manifest's own directory, fsync, then rename over the target. A
// crash mid-write leaves the previous manifest intact. The document's
// updated_at is bumped as part of the save.
func (s *Store) Save(m *Manifest) error {
	log := logging.GetLogger("manifest.store")
	m.touch(time.Now())

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create manifest directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot create temp manifest")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(m.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write temp manifest")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrFileWrite, "cannot sync temp manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot close temp manifest")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace manifest at %s", s.path)
	}

	log.Debug().Str("path", s.path).Int("packages", len(m.Packages())).Msg("Manifest saved")
	return nil
}
