// Package testutil provides test environment helpers: an isolated
// project directory, fixture package sources, and a git runner that
// copies fixtures instead of cloning over the network.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/stenciltools/stencil/pkg/yamldoc"
	"github.com/stretchr/testify/require"
)

// TestEnvironment is an isolated project root plus a scratch area for
// fixture package sources.
type TestEnvironment struct {
	T       *testing.T
	Root    string
	Project *project.Project

	sourcesDir string
}

// NewTestEnvironment creates a temp project with the standard layout.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	p, err := project.Open(root)
	require.NoError(t, err)
	require.NoError(t, p.EnsureLayout())

	return &TestEnvironment{
		T:          t,
		Root:       root,
		Project:    p,
		sourcesDir: t.TempDir(),
	}
}

// TempRoot returns a scratch directory for registry clients.
func (e *TestEnvironment) TempRoot() string {
	return e.T.TempDir()
}

// PackageFixture describes a fake package source directory.
type PackageFixture struct {
	Name    string
	Version string
	// Files maps "<category>/<name>" to content.
	Files map[string]string
}

// SetupPackageSource writes a package source directory (descriptor +
// content files) and returns its path, usable as a source URL with
// FakeGit.
func (e *TestEnvironment) SetupPackageSource(fixture PackageFixture) string {
	e.T.Helper()

	dir := filepath.Join(e.sourcesDir, fixture.Name)
	require.NoError(e.T, os.MkdirAll(dir, 0755))

	descriptor := "name: " + fixture.Name + "\nversion: " + fixture.Version + "\ncontents:\n"
	byCategory := map[string][]string{}
	for rel := range fixture.Files {
		category := filepath.Dir(rel)
		byCategory[category] = append(byCategory[category], filepath.Base(rel))
	}
	for _, category := range []string{"patterns", "commands", "designs"} {
		names := byCategory[category]
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		descriptor += "  " + category + ":\n"
		for _, name := range names {
			descriptor += "    - name: " + name + "\n"
		}
	}
	require.NoError(e.T, os.WriteFile(filepath.Join(dir, "package.yaml"), []byte(descriptor), 0644))

	for rel, content := range fixture.Files {
		path := filepath.Join(dir, rel)
		require.NoError(e.T, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(e.T, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

// RewriteSourceVersion bumps the version in a fixture's package.yaml,
// simulating a new release at the source.
func (e *TestEnvironment) RewriteSourceVersion(sourceDir, version string) {
	e.T.Helper()

	path := filepath.Join(sourceDir, "package.yaml")
	data, err := os.ReadFile(path)
	require.NoError(e.T, err)

	doc, err := yamldoc.Parse(data)
	require.NoError(e.T, err)
	require.NoError(e.T, doc.Write("version", version))
	require.NoError(e.T, os.WriteFile(path, doc.Bytes(), 0644))
}

// RewriteSourceDescriptor replaces a fixture's package.yaml wholesale.
func (e *TestEnvironment) RewriteSourceDescriptor(sourceDir, descriptor string) {
	e.T.Helper()
	require.NoError(e.T, os.WriteFile(filepath.Join(sourceDir, "package.yaml"), []byte(descriptor), 0644))
}

// WriteProjectFile writes a file under the project root.
func (e *TestEnvironment) WriteProjectFile(rel, content string) string {
	e.T.Helper()

	path := filepath.Join(e.Root, rel)
	require.NoError(e.T, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.T, os.WriteFile(path, []byte(content), 0644))
	return path
}

// ReadProjectFile reads a file under the project root.
func (e *TestEnvironment) ReadProjectFile(rel string) string {
	e.T.Helper()

	data, err := os.ReadFile(filepath.Join(e.Root, rel))
	require.NoError(e.T, err)
	return string(data)
}

// ProjectFileExists reports whether a path exists under the root.
func (e *TestEnvironment) ProjectFileExists(rel string) bool {
	_, err := os.Stat(filepath.Join(e.Root, rel))
	return err == nil
}

// FakeGit is a GitRunner whose "clone" copies a local source directory.
// When Fail is set every clone errors, simulating a network outage.
type FakeGit struct {
	Fail   bool
	Clones int
}

// CloneShallow implements registry.GitRunner.
func (g *FakeGit) CloneShallow(url, dir string) error {
	g.Clones++
	if g.Fail {
		return errors.Newf(errors.ErrClone, "git clone of %s failed: network unreachable", url)
	}
	return copyTree(url, dir)
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}
