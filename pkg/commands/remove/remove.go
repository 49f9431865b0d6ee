package remove

import (
	"os"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/modcheck"
	"github.com/stenciltools/stencil/pkg/project"
)

// Options defines the options for the Remove command.
type Options struct {
	Project *project.Project
	// Detector classifies tracked files when KeepModified is set.
	Detector *modcheck.Detector
	// PackageName is the package to remove.
	PackageName string
	// KeepModified leaves locally modified files on disk. Files whose
	// verdict is unknown (the baseline could not be checked) are also
	// kept: deletion never triggers on an unverified file.
	KeepModified bool
	// Confirm is asked with the plan before anything is deleted. nil
	// means proceed. Declining cancels with no changes at all.
	Confirm func(plan Plan) bool
}

// Plan is what a remove is about to do, surfaced to the confirmation
// prompt.
type Plan struct {
	PackageName string
	Delete      []string
	Keep        []string
}

// Result reports what a remove did.
type Result struct {
	PackageName string
	Removed     int
	Kept        int
	KeptFiles   []string
	Cancelled   bool
}

// Remove deletes a package's tracked files and its manifest record.
// The manifest is saved only after the file pass completes, so an
// interruption leaves the previous ledger intact.
func Remove(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.remove")
	log.Debug().Str("command", "Remove").
		Str("package", opts.PackageName).
		Bool("keepModified", opts.KeepModified).
		Msg("Executing command")

	store := opts.Project.Store()
	m, err := store.Load()
	if err != nil {
		return nil, err
	}
	rec, err := m.Get(opts.PackageName)
	if err != nil {
		return nil, err
	}

	plan := Plan{PackageName: rec.Name}
	for _, category := range manifest.Categories() {
		for _, entry := range rec.Files(category) {
			if opts.KeepModified && opts.Detector != nil &&
				opts.Detector.IsModified(rec, category, entry) != modcheck.Unmodified {
				plan.Keep = append(plan.Keep, entry.InstalledPath)
				continue
			}
			plan.Delete = append(plan.Delete, entry.InstalledPath)
		}
	}

	if opts.Confirm != nil && !opts.Confirm(plan) {
		log.Info().Str("package", rec.Name).Msg("Remove cancelled by user")
		return &Result{PackageName: rec.Name, Cancelled: true}, nil
	}

	result := &Result{
		PackageName: rec.Name,
		Kept:        len(plan.Keep),
		KeptFiles:   plan.Keep,
	}
	for _, installedPath := range plan.Delete {
		path := opts.Project.FilePath(installedPath)
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				// already gone counts as removed
				result.Removed++
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrFileDelete, "cannot delete %s", path)
		}
		result.Removed++
	}

	m.Remove(rec.Name)
	if err := store.Save(m); err != nil {
		return nil, err
	}

	log.Info().Str("command", "Remove").
		Str("package", rec.Name).
		Int("removed", result.Removed).
		Int("kept", result.Kept).
		Msg("Command finished")
	return result, nil
}
