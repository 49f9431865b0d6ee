package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/registry"
	"github.com/stenciltools/stencil/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptor(t *testing.T) {
	data := []byte(`name: auth-kit
version: 1.2.0
contents:
  patterns:
    - name: jwt-validation.md
    - name: api-key-rotation.md
  commands:
    - name: setup-auth.md
`)

	desc, err := registry.ParseDescriptor(data)

	require.NoError(t, err)
	assert.Equal(t, "auth-kit", desc.Name)
	assert.Equal(t, "1.2.0", desc.Version.String())
	assert.Equal(t, []string{"jwt-validation.md", "api-key-rotation.md"}, desc.Files[manifest.CategoryPatterns])
	assert.Equal(t, []string{"setup-auth.md"}, desc.Files[manifest.CategoryCommands])
	assert.Equal(t, 3, desc.FileCount())
}

func TestParseDescriptor_MissingFields(t *testing.T) {
	cases := map[string]string{
		"no name":    "version: 1.0.0\ncontents:\n  patterns:\n    - name: a.md\n",
		"no version": "name: x\ncontents:\n  patterns:\n    - name: a.md\n",
		"no files":   "name: x\nversion: 1.0.0\n",
	}
	for label, src := range cases {
		_, err := registry.ParseDescriptor([]byte(src))
		require.Error(t, err, label)
		assert.True(t, errors.IsCode(err, errors.ErrPackageInvalid), label)
	}
}

func TestParseDescriptor_DuplicateFileNameRejected(t *testing.T) {
	src := "name: x\nversion: 1.0.0\ncontents:\n  patterns:\n    - name: a.md\n    - name: a.md\n"

	_, err := registry.ParseDescriptor([]byte(src))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPackageInvalid))

	// The same name in two different categories is fine.
	src = "name: x\nversion: 1.0.0\ncontents:\n  patterns:\n    - name: a.md\n  commands:\n    - name: a.md\n"
	desc, err := registry.ParseDescriptor([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, 2, desc.FileCount())
}

func TestParseDescriptor_BadVersion(t *testing.T) {
	_, err := registry.ParseDescriptor([]byte("name: x\nversion: 1.2\ncontents:\n  patterns:\n    - name: a.md\n"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrVersionInvalid))
}

func TestFetchRemoteVersion(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.SetupPackageSource(testutil.PackageFixture{
		Name:    "auth-kit",
		Version: "1.4.0",
		Files:   map[string]string{"patterns/jwt.md": "# jwt"},
	})

	tmpRoot := env.TempRoot()
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, tmpRoot)

	version, err := client.FetchRemoteVersion(source)

	require.NoError(t, err)
	assert.Equal(t, "1.4.0", version.String())

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "checkout directory must be removed after a successful fetch")
}

func TestFetchRemoteVersion_CloneFailureCleansUp(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	tmpRoot := env.TempRoot()
	client := registry.NewClientWithRunner(&testutil.FakeGit{Fail: true}, tmpRoot)

	_, err := client.FetchRemoteVersion("https://example.com/gone")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))

	entries, readErr := os.ReadDir(tmpRoot)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "checkout directory must be removed on clone failure")
}

func TestFetch_MalformedDescriptorCleansUp(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.SetupPackageSource(testutil.PackageFixture{
		Name:    "broken",
		Version: "1.0.0",
		Files:   map[string]string{"patterns/a.md": "# a"},
	})
	require.NoError(t, os.WriteFile(filepath.Join(source, "package.yaml"), []byte("name: broken\nname: twice\n"), 0644))

	tmpRoot := env.TempRoot()
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, tmpRoot)

	_, _, err := client.Fetch(source)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPackageInvalid))

	entries, readErr := os.ReadDir(tmpRoot)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "checkout directory must be removed on parse failure")
}

func TestFetchFile(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.SetupPackageSource(testutil.PackageFixture{
		Name:    "auth-kit",
		Version: "1.0.0",
		Files:   map[string]string{"commands/setup.md": "# setup steps"},
	})

	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())

	data, err := client.FetchFile(source, manifest.CategoryCommands, "setup.md")

	require.NoError(t, err)
	assert.Equal(t, "# setup steps", string(data))
}
