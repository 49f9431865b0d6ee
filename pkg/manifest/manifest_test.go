package manifest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(name string) *manifest.PackageRecord {
	installed := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &manifest.PackageRecord{
		Name:        name,
		Source:      "https://github.com/acme/" + name,
		Version:     manifest.SemVer{Major: 1, Minor: 2, Patch: 0},
		InstalledAt: installed,
		UpdatedAt:   installed,
		Contents: map[manifest.Category][]manifest.FileEntry{
			manifest.CategoryPatterns: {
				{Name: "jwt-validation.md", InstalledPath: "patterns/jwt-validation.md", Hash: "ab12"},
			},
			manifest.CategoryCommands: {
				{Name: "setup-auth.md", InstalledPath: "commands/setup-auth.md", Hash: "cd34"},
			},
		},
	}
}

func TestUpsertAndGet(t *testing.T) {
	m := manifest.New()
	m.Upsert(sampleRecord("auth-kit"))

	rec, err := m.Get("auth-kit")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/acme/auth-kit", rec.Source)
	assert.Equal(t, "1.2.0", rec.Version.String())
	assert.Equal(t, 2, rec.FileCount())
	assert.Empty(t, rec.Files(manifest.CategoryDesigns))
}

func TestGet_MissingPackage(t *testing.T) {
	m := manifest.New()

	_, err := m.Get("nope")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPackageNotFound))
}

func TestUpsert_ReplacesInPlacePreservingOrder(t *testing.T) {
	m := manifest.New()
	m.Upsert(sampleRecord("alpha"))
	m.Upsert(sampleRecord("beta"))
	m.Upsert(sampleRecord("gamma"))

	updated := sampleRecord("beta")
	updated.Version = manifest.SemVer{Major: 2, Minor: 0, Patch: 0}
	m.Upsert(updated)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, m.Packages(),
		"updating a package must not move its block")

	rec, err := m.Get("beta")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", rec.Version.String())
}

func TestUpsert_NormalizesTimestampInvariant(t *testing.T) {
	rec := sampleRecord("auth-kit")
	rec.UpdatedAt = rec.InstalledAt.Add(-time.Hour)

	m := manifest.New()
	m.Upsert(rec)

	got, err := m.Get("auth-kit")
	require.NoError(t, err)
	assert.False(t, got.UpdatedAt.Before(got.InstalledAt), "installed_at must not exceed updated_at")
}

func TestRemove_DeletesWholeBlock(t *testing.T) {
	m := manifest.New()
	m.Upsert(sampleRecord("alpha"))
	m.Upsert(sampleRecord("beta"))

	assert.True(t, m.Remove("alpha"))
	assert.False(t, m.Remove("alpha"), "second remove reports absence")
	assert.Equal(t, []string{"beta"}, m.Packages())

	rec, err := m.Get("beta")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.FileCount(), "sibling package must be untouched")
}

func TestListFiles(t *testing.T) {
	m := manifest.New()
	m.Upsert(sampleRecord("auth-kit"))

	files, err := m.ListFiles("auth-kit", manifest.CategoryPatterns)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "jwt-validation.md", files[0].Name)
	assert.Equal(t, "patterns/jwt-validation.md", files[0].InstalledPath)
	assert.Equal(t, "ab12", files[0].Hash)
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	store := manifest.NewStore(path)

	m := manifest.New()
	m.Upsert(sampleRecord("alpha"))
	m.Upsert(sampleRecord("beta"))
	require.NoError(t, store.Save(m))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, loaded.Packages())

	// save(load(path)) then load again yields the identical record set
	require.NoError(t, store.Save(loaded))
	reloaded, err := store.Load()
	require.NoError(t, err)

	for _, name := range []string{"alpha", "beta"} {
		a, err := loaded.Get(name)
		require.NoError(t, err)
		b, err := reloaded.Get(name)
		require.NoError(t, err)
		assert.Equal(t, a.Source, b.Source)
		assert.Equal(t, a.Version, b.Version)
		assert.Equal(t, a.Contents, b.Contents)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := manifest.NewStore(filepath.Join(t.TempDir(), "manifest.yaml"))

	_, err := store.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrManifestNotFound))

	m, err := store.LoadOrNew()
	require.NoError(t, err)
	assert.Empty(t, m.Packages())
}

func TestStore_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	store := manifest.NewStore(path)

	m := manifest.New()
	m.Upsert(sampleRecord("alpha"))
	require.NoError(t, store.Save(m))

	// No temp files may survive a save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.yaml", entries[0].Name())
}

func TestStore_CorruptManifestIsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("packages:\n  a:\n    source: x\n  a:\n    source: y\n"), 0644))

	_, err := manifest.NewStore(path).Load()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDuplicateKey))
}
