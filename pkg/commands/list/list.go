package list

import (
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/modcheck"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/stenciltools/stencil/pkg/registry"
)

// UpdateState is the result of an outdated check for one package.
type UpdateState string

const (
	UpdateUnknown       UpdateState = "unknown"
	UpdateCurrent       UpdateState = "current"
	UpdateAvailable     UpdateState = "available"
	UpdateAheadOfRemote UpdateState = "ahead"
)

// Options defines the options for the List command.
type Options struct {
	Project *project.Project
	// Client is only consulted when CheckOutdated is set.
	Client *registry.Client
	// Detector is only consulted when CheckModified is set.
	Detector *modcheck.Detector

	CheckOutdated bool
	CheckModified bool
}

// PackageInfo is one package's listing entry.
type PackageInfo struct {
	Name        string
	Source      string
	Version     manifest.SemVer
	InstalledAt string
	UpdatedAt   string
	Counts      map[manifest.Category]int
	Total       int

	// Populated under CheckOutdated.
	RemoteVersion string
	UpdateState   UpdateState

	// Populated under CheckModified.
	ModifiedFiles []string
	UnknownFiles  []string
}

// Result is the List command output.
type Result struct {
	Packages []PackageInfo
}

// List loads the manifest and reports every installed package. The
// outdated and modified checks run per package in isolation: a network
// failure for one package marks only that package unknown and never
// aborts the listing.
func List(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.list")
	log.Debug().Str("command", "List").
		Bool("outdated", opts.CheckOutdated).
		Bool("modified", opts.CheckModified).
		Msg("Executing command")

	m, err := opts.Project.Store().Load()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, name := range m.Packages() {
		rec, err := m.Get(name)
		if err != nil {
			return nil, err
		}

		info := PackageInfo{
			Name:        rec.Name,
			Source:      rec.Source,
			Version:     rec.Version,
			InstalledAt: rec.InstalledAt.Format(manifest.TimeFormat),
			UpdatedAt:   rec.UpdatedAt.Format(manifest.TimeFormat),
			Counts:      make(map[manifest.Category]int),
		}
		for _, c := range manifest.Categories() {
			info.Counts[c] = len(rec.Files(c))
			info.Total += len(rec.Files(c))
		}

		if opts.CheckOutdated {
			info.RemoteVersion, info.UpdateState = checkOutdated(opts.Client, rec)
		}
		if opts.CheckModified {
			info.ModifiedFiles, info.UnknownFiles = checkModified(opts.Detector, rec)
		}

		if opts.CheckOutdated || opts.CheckModified {
			interesting := false
			if opts.CheckOutdated && (info.UpdateState == UpdateAvailable || info.UpdateState == UpdateUnknown) {
				interesting = true
			}
			if opts.CheckModified && (len(info.ModifiedFiles) > 0 || len(info.UnknownFiles) > 0) {
				interesting = true
			}
			if !interesting {
				continue
			}
		}
		result.Packages = append(result.Packages, info)
	}

	log.Info().Str("command", "List").Int("packages", len(result.Packages)).Msg("Command finished")
	return result, nil
}

// checkOutdated fetches the remote version for one package. Failures
// degrade to UpdateUnknown.
func checkOutdated(client *registry.Client, rec *manifest.PackageRecord) (string, UpdateState) {
	log := logging.GetLogger("commands.list")

	if client == nil {
		return "", UpdateUnknown
	}
	remote, err := client.FetchRemoteVersion(rec.Source)
	if err != nil {
		log.Debug().Err(err).Str("package", rec.Name).Msg("Remote version check failed")
		return "", UpdateUnknown
	}
	switch manifest.Compare(rec.Version, remote) {
	case manifest.Older:
		return remote.String(), UpdateAvailable
	case manifest.Newer:
		return remote.String(), UpdateAheadOfRemote
	default:
		return remote.String(), UpdateCurrent
	}
}

// checkModified classifies every tracked file of one package.
func checkModified(detector *modcheck.Detector, rec *manifest.PackageRecord) (modified, unknown []string) {
	if detector == nil {
		return nil, nil
	}
	for _, category := range manifest.Categories() {
		for _, entry := range rec.Files(category) {
			switch detector.IsModified(rec, category, entry) {
			case modcheck.Modified:
				modified = append(modified, entry.InstalledPath)
			case modcheck.Unknown:
				unknown = append(unknown, entry.InstalledPath)
			}
		}
	}
	return modified, unknown
}
