package install_test

import (
	"testing"

	"github.com/stenciltools/stencil/pkg/commands/install"
	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/registry"
	"github.com/stenciltools/stencil/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureSource(env *testutil.TestEnvironment) string {
	return env.SetupPackageSource(testutil.PackageFixture{
		Name:    "auth-kit",
		Version: "1.2.0",
		Files: map[string]string{
			"patterns/jwt-validation.md":   "# jwt validation\n",
			"patterns/api-key-rotation.md": "# api key rotation\n",
			"patterns/tenant-scoping.md":   "# tenant scoping\n",
			"commands/setup-auth.md":       "# setup auth\n",
			"commands/rotate-keys.md":      "# rotate keys\n",
			"designs/token-flow.md":        "# token flow\n",
		},
	})
}

func TestInstall_CopiesFilesAndRecordsPackage(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := fixtureSource(env)
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())

	result, err := install.Install(install.Options{
		Project:   env.Project,
		Client:    client,
		SourceURL: source,
	})

	require.NoError(t, err)
	assert.Equal(t, "auth-kit", result.PackageName)
	assert.Equal(t, 3, result.Counts[manifest.CategoryPatterns])
	assert.Equal(t, 2, result.Counts[manifest.CategoryCommands])
	assert.Equal(t, 1, result.Counts[manifest.CategoryDesigns])
	assert.Equal(t, 6, result.Total())
	assert.False(t, result.Updated)

	assert.Equal(t, "# jwt validation\n", env.ReadProjectFile("patterns/jwt-validation.md"))
	assert.Equal(t, "# setup auth\n", env.ReadProjectFile("commands/setup-auth.md"))

	m, err := env.Project.Store().Load()
	require.NoError(t, err)
	rec, err := m.Get("auth-kit")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", rec.Version.String())
	assert.Equal(t, source, rec.Source)
	assert.Equal(t, 6, rec.FileCount())
	for _, fe := range rec.AllFiles() {
		assert.NotEmpty(t, fe.Hash, "install must record a baseline hash for %s", fe.Name)
		assert.NotEmpty(t, fe.InstalledPath)
	}
}

func TestInstall_ReinstallPreservesInstalledAt(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := fixtureSource(env)
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())
	opts := install.Options{Project: env.Project, Client: client, SourceURL: source}

	_, err := install.Install(opts)
	require.NoError(t, err)

	m, err := env.Project.Store().Load()
	require.NoError(t, err)
	first, err := m.Get("auth-kit")
	require.NoError(t, err)

	env.RewriteSourceVersion(source, "1.3.0")

	result, err := install.Install(opts)
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, "1.3.0", result.Version.String())

	m, err = env.Project.Store().Load()
	require.NoError(t, err)
	rec, err := m.Get("auth-kit")
	require.NoError(t, err)
	assert.Equal(t, "1.3.0", rec.Version.String())
	assert.Equal(t, first.InstalledAt, rec.InstalledAt, "reinstall keeps the original install time")
	assert.False(t, rec.UpdatedAt.Before(rec.InstalledAt))
}

func TestInstall_ConfirmDeclinedCancels(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := fixtureSource(env)
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())

	_, err := install.Install(install.Options{Project: env.Project, Client: client, SourceURL: source})
	require.NoError(t, err)

	_, err = install.Install(install.Options{
		Project:   env.Project,
		Client:    client,
		SourceURL: source,
		Confirm:   func(string) bool { return false },
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))
}

func TestInstall_CloneFailureLeavesNoManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	client := registry.NewClientWithRunner(&testutil.FakeGit{Fail: true}, env.TempRoot())

	_, err := install.Install(install.Options{
		Project:   env.Project,
		Client:    client,
		SourceURL: "https://example.com/unreachable",
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
	assert.False(t, env.Project.Store().Exists(), "a failed install must not create a manifest")
}

func TestInstall_MissingDeclaredFileAborts(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	source := env.SetupPackageSource(testutil.PackageFixture{
		Name:    "broken",
		Version: "1.0.0",
		Files:   map[string]string{"patterns/present.md": "# here\n"},
	})
	// Declare a file the repository does not ship.
	env.RewriteSourceDescriptor(source, `name: broken
version: 1.0.0
contents:
  patterns:
    - name: present.md
    - name: missing.md
`)

	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())
	_, err := install.Install(install.Options{Project: env.Project, Client: client, SourceURL: source})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPackageInvalid))
	assert.False(t, env.Project.Store().Exists(), "manifest must stay untouched when a copy fails")
}
