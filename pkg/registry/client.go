// Package registry fetches package sources for update checks and
// installs. Every fetch clones into its own temporary directory and
// removes it on all exit paths, so repeated update checks never leak
// disk space.
package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/yamldoc"
)

// DescriptorName is the file every package repository must carry at
// its root.
const DescriptorName = "package.yaml"

// Descriptor is the parsed package.yaml of a package source.
type Descriptor struct {
	Name    string
	Version manifest.SemVer
	// Files lists declared content file names per category; each file
	// lives at <category>/<name> in the package repository.
	Files map[manifest.Category][]string
}

// FileCount returns the total number of declared files.
func (d *Descriptor) FileCount() int {
	n := 0
	for _, c := range manifest.Categories() {
		n += len(d.Files[c])
	}
	return n
}

// Checkout is a fetched package: its descriptor plus the temporary
// directory holding the shallow clone.
type Checkout struct {
	Descriptor Descriptor
	Dir        string
}

// ContentPath returns the absolute path of a declared file inside the
// checkout.
func (c *Checkout) ContentPath(category manifest.Category, name string) string {
	return filepath.Join(c.Dir, string(category), name)
}

// Client fetches remote package sources through a GitRunner.
type Client struct {
	git     GitRunner
	tmpRoot string
}

// NewClient returns a client that shells out to git and keeps its
// scratch clones under tmpRoot (created on demand).
func NewClient(tmpRoot string) *Client {
	return &Client{git: ExecGit{}, tmpRoot: tmpRoot}
}

// NewClientWithRunner returns a client with a custom git runner.
func NewClientWithRunner(git GitRunner, tmpRoot string) *Client {
	return &Client{git: git, tmpRoot: tmpRoot}
}

// Fetch shallow-clones a package source and parses its descriptor.
// The returned cleanup removes the checkout directory; callers must
// invoke it on every path. On error the directory is already gone.
func (c *Client) Fetch(sourceURL string) (*Checkout, func(), error) {
	log := logging.GetLogger("registry.client")

	if err := os.MkdirAll(c.tmpRoot, 0755); err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create clone scratch dir %s", c.tmpRoot)
	}
	dir, err := os.MkdirTemp(c.tmpRoot, "checkout-*")
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrDirCreate, "cannot create checkout directory")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to remove checkout directory")
		}
	}

	if err := c.git.CloneShallow(sourceURL, dir); err != nil {
		cleanup()
		return nil, nil, errors.Wrapf(err, errors.ErrNetwork, "cannot fetch %s", sourceURL)
	}

	data, err := os.ReadFile(filepath.Join(dir, DescriptorName))
	if err != nil {
		cleanup()
		return nil, nil, errors.Wrapf(err, errors.ErrPackageInvalid, "%s has no %s", sourceURL, DescriptorName)
	}
	desc, err := ParseDescriptor(data)
	if err != nil {
		cleanup()
		return nil, nil, errors.Wrapf(err, errors.ErrPackageInvalid, "%s has a malformed %s", sourceURL, DescriptorName)
	}

	log.Debug().Str("url", sourceURL).Str("package", desc.Name).
		Str("version", desc.Version.String()).Int("files", desc.FileCount()).
		Msg("Fetched package source")
	return &Checkout{Descriptor: *desc, Dir: dir}, cleanup, nil
}

// FetchRemoteVersion returns the version a package source currently
// declares. The clone directory is removed on success, parse failure,
// and clone failure alike.
func (c *Client) FetchRemoteVersion(sourceURL string) (manifest.SemVer, error) {
	checkout, cleanup, err := c.Fetch(sourceURL)
	if err != nil {
		return manifest.SemVer{}, err
	}
	defer cleanup()
	return checkout.Descriptor.Version, nil
}

// FetchFile returns the current content of one declared file from a
// package source. Used by the modification detector when a record has
// no baseline hash.
func (c *Client) FetchFile(sourceURL string, category manifest.Category, name string) ([]byte, error) {
	checkout, cleanup, err := c.Fetch(sourceURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	data, err := os.ReadFile(checkout.ContentPath(category, name))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "%s does not ship %s/%s", sourceURL, category, name)
	}
	return data, nil
}

// ParseDescriptor parses package.yaml bytes with the restricted
// reader. Required fields: name, version, and a contents section with
// at least one declared file.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	doc, err := yamldoc.Parse(data)
	if err != nil {
		return nil, err
	}

	name, ok := doc.Read("name")
	if !ok || name == "" {
		return nil, errors.New(errors.ErrPackageInvalid, "descriptor is missing 'name'")
	}
	rawVersion, ok := doc.Read("version")
	if !ok {
		return nil, errors.New(errors.ErrPackageInvalid, "descriptor is missing 'version'")
	}
	version, err := manifest.ParseVersion(rawVersion)
	if err != nil {
		return nil, err
	}

	desc := &Descriptor{
		Name:    name,
		Version: version,
		Files:   make(map[manifest.Category][]string),
	}
	for _, category := range manifest.Categories() {
		seen := make(map[string]bool)
		for i := 0; ; i++ {
			path := fmt.Sprintf("contents.%s[%d].name", category, i)
			fileName, ok := doc.GetNested(path)
			if !ok {
				break
			}
			if seen[fileName] {
				return nil, errors.Newf(errors.ErrPackageInvalid,
					"descriptor declares %s/%s twice", category, fileName)
			}
			seen[fileName] = true
			desc.Files[category] = append(desc.Files[category], fileName)
		}
	}
	if desc.FileCount() == 0 {
		return nil, errors.New(errors.ErrPackageInvalid, "descriptor declares no content files")
	}
	return desc, nil
}
