package remove_test

import (
	"testing"
	"time"

	"github.com/stenciltools/stencil/pkg/commands/install"
	"github.com/stenciltools/stencil/pkg/commands/remove"
	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/modcheck"
	"github.com/stenciltools/stencil/pkg/registry"
	"github.com/stenciltools/stencil/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupInstalled(t *testing.T, env *testutil.TestEnvironment) {
	t.Helper()
	source := env.SetupPackageSource(testutil.PackageFixture{
		Name:    "auth-kit",
		Version: "1.2.0",
		Files: map[string]string{
			"patterns/jwt.md":    "# jwt\n",
			"patterns/tenant.md": "# tenant\n",
			"commands/setup.md":  "# setup\n",
		},
	})
	client := registry.NewClientWithRunner(&testutil.FakeGit{}, env.TempRoot())
	_, err := install.Install(install.Options{Project: env.Project, Client: client, SourceURL: source})
	require.NoError(t, err)
}

func TestRemove_DeletesAllTrackedFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	setupInstalled(t, env)

	result, err := remove.Remove(remove.Options{
		Project:     env.Project,
		PackageName: "auth-kit",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Removed)
	assert.Zero(t, result.Kept)

	for _, rel := range []string{"patterns/jwt.md", "patterns/tenant.md", "commands/setup.md"} {
		assert.False(t, env.ProjectFileExists(rel), "%s must be deleted", rel)
	}

	m, err := env.Project.Store().Load()
	require.NoError(t, err)
	assert.Empty(t, m.Packages())
}

func TestRemove_KeepModifiedKeepsOnlyEditedFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	setupInstalled(t, env)
	env.WriteProjectFile("patterns/jwt.md", "# locally edited\n")

	result, err := remove.Remove(remove.Options{
		Project:      env.Project,
		Detector:     modcheck.NewDetector(env.Project, nil),
		PackageName:  "auth-kit",
		KeepModified: true,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Removed)
	assert.Equal(t, 1, result.Kept)
	assert.Equal(t, []string{"patterns/jwt.md"}, result.KeptFiles)

	assert.True(t, env.ProjectFileExists("patterns/jwt.md"), "the edited file must survive")
	assert.False(t, env.ProjectFileExists("patterns/tenant.md"))
	assert.False(t, env.ProjectFileExists("commands/setup.md"))

	m, err := env.Project.Store().Load()
	require.NoError(t, err)
	assert.Empty(t, m.Packages(), "the record goes away even when files are kept")
}

func TestRemove_KeepModifiedKeepsUnverifiableFiles(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	// A record without baseline hashes and no fetcher to diff against:
	// every verdict is unknown, so nothing may be deleted.
	env.WriteProjectFile("patterns/legacy.md", "# legacy\n")
	m := manifest.New()
	m.Upsert(&manifest.PackageRecord{
		Name:        "legacy-kit",
		Source:      "https://example.com/legacy-kit.git",
		Version:     manifest.SemVer{Major: 1},
		InstalledAt: time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		Contents: map[manifest.Category][]manifest.FileEntry{
			manifest.CategoryPatterns: {
				{Name: "legacy.md", InstalledPath: "patterns/legacy.md"},
			},
		},
	})
	require.NoError(t, env.Project.Store().Save(m))

	result, err := remove.Remove(remove.Options{
		Project:      env.Project,
		Detector:     modcheck.NewDetector(env.Project, nil),
		PackageName:  "legacy-kit",
		KeepModified: true,
	})

	require.NoError(t, err)
	assert.Zero(t, result.Removed)
	assert.Equal(t, 1, result.Kept)
	assert.True(t, env.ProjectFileExists("patterns/legacy.md"))
}

func TestRemove_UnknownPackageIsFatal(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	setupInstalled(t, env)

	_, err := remove.Remove(remove.Options{
		Project:     env.Project,
		PackageName: "no-such-package",
	})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPackageNotFound))
}

func TestRemove_DeclinedConfirmationChangesNothing(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	setupInstalled(t, env)
	before := env.ReadProjectFile(".stencil/manifest.yaml")

	result, err := remove.Remove(remove.Options{
		Project:     env.Project,
		PackageName: "auth-kit",
		Confirm:     func(remove.Plan) bool { return false },
	})

	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.True(t, env.ProjectFileExists("patterns/jwt.md"))
	assert.Equal(t, before, env.ReadProjectFile(".stencil/manifest.yaml"),
		"a cancelled remove leaves the manifest byte-identical")
}

func TestRemove_ConfirmSeesThePlan(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	setupInstalled(t, env)
	env.WriteProjectFile("patterns/jwt.md", "# edited\n")

	var seen remove.Plan
	_, err := remove.Remove(remove.Options{
		Project:      env.Project,
		Detector:     modcheck.NewDetector(env.Project, nil),
		PackageName:  "auth-kit",
		KeepModified: true,
		Confirm: func(p remove.Plan) bool {
			seen = p
			return true
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "auth-kit", seen.PackageName)
	assert.Len(t, seen.Delete, 2)
	assert.Equal(t, []string{"patterns/jwt.md"}, seen.Keep)
}
