package install

import (
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/modcheck"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/stenciltools/stencil/pkg/registry"
)

// Options defines the options for the Install command.
type Options struct {
	// Project is the target project layout.
	Project *project.Project
	// Client fetches the package source.
	Client *registry.Client
	// SourceURL is the package repository to install from.
	SourceURL string
	// Confirm is asked before overwriting an already-installed package.
	// nil means proceed without asking.
	Confirm func(packageName string) bool
}

// Result reports what an install did.
type Result struct {
	PackageName string
	Version     manifest.SemVer
	Updated     bool
	Counts      map[manifest.Category]int
}

// Total returns the number of files installed across categories.
func (r *Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Install clones a package source, copies its declared content files
// into the project's category directories, and records the package in
// the manifest. The manifest is only written after every file copy has
// succeeded, so a failure mid-install leaves the ledger untouched.
func Install(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.install")
	log.Debug().Str("command", "Install").Str("source", opts.SourceURL).Msg("Executing command")

	checkout, cleanup, err := opts.Client.Fetch(opts.SourceURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	desc := checkout.Descriptor

	store := opts.Project.Store()
	m, err := store.LoadOrNew()
	if err != nil {
		return nil, err
	}

	updated := m.Has(desc.Name)
	if updated && opts.Confirm != nil && !opts.Confirm(desc.Name) {
		return nil, errors.Newf(errors.ErrInvalidInput, "install of %q cancelled", desc.Name)
	}

	if err := opts.Project.EnsureLayout(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &manifest.PackageRecord{
		Name:        desc.Name,
		Source:      opts.SourceURL,
		Version:     desc.Version,
		InstalledAt: now,
		UpdatedAt:   now,
		Contents:    make(map[manifest.Category][]manifest.FileEntry),
	}
	if updated {
		if prev, err := m.Get(desc.Name); err == nil {
			rec.InstalledAt = prev.InstalledAt
		}
	}

	result := &Result{
		PackageName: desc.Name,
		Version:     desc.Version,
		Updated:     updated,
		Counts:      make(map[manifest.Category]int),
	}

	for _, category := range manifest.Categories() {
		for _, name := range desc.Files[category] {
			data, err := os.ReadFile(checkout.ContentPath(category, name))
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrPackageInvalid,
					"package declares %s/%s but does not ship it", category, name)
			}
			target := filepath.Join(opts.Project.CategoryDir(category), name)
			if err := os.WriteFile(target, data, 0644); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileCopy, "cannot install %s", target)
			}
			rec.Contents[category] = append(rec.Contents[category], manifest.FileEntry{
				Name:          name,
				InstalledPath: path.Join(opts.Project.CategoryDirName(category), name),
				Hash:          modcheck.HashBytes(data),
			})
			result.Counts[category]++
		}
	}

	m.Upsert(rec)
	if err := store.Save(m); err != nil {
		return nil, err
	}

	log.Info().Str("command", "Install").
		Str("package", desc.Name).
		Str("version", desc.Version.String()).
		Int("files", result.Total()).
		Bool("updated", updated).
		Msg("Command finished")
	return result, nil
}
