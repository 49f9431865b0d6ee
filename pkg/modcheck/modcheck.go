// Package modcheck decides whether an installed file still matches its
// installation baseline. The baseline is a BLAKE3 hash recorded in the
// manifest at install time; records written before hashes existed fall
// back to fetching the file from the package source and diffing. When
// that fallback cannot reach the source the verdict is Unknown, and
// destructive callers must treat Unknown as not modified.
package modcheck

import (
	"bytes"
	"encoding/hex"
	"os"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/zeebo/blake3"
)

// Verdict is the outcome of a modification check.
type Verdict int

const (
	Unmodified Verdict = iota
	Modified
	Unknown
)

// String returns the verdict name as shown in list output.
func (v Verdict) String() string {
	switch v {
	case Modified:
		return "modified"
	case Unknown:
		return "unknown"
	default:
		return "unmodified"
	}
}

// HashBytes returns the BLAKE3 hex digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the BLAKE3 hex digest of a file's content.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileNotFound, "cannot hash %s", path)
	}
	return HashBytes(data), nil
}

// BaselineFetcher retrieves a file's pristine content from a package
// source. Satisfied by *registry.Client.
type BaselineFetcher interface {
	FetchFile(sourceURL string, category manifest.Category, name string) ([]byte, error)
}

// Detector checks installed files against their baselines.
type Detector struct {
	project *project.Project
	fetcher BaselineFetcher
}

// NewDetector returns a detector for the given project. fetcher may be
// nil, in which case records without a baseline hash always yield
// Unknown.
func NewDetector(p *project.Project, fetcher BaselineFetcher) *Detector {
	return &Detector{project: p, fetcher: fetcher}
}

// IsModified compares an installed file's current content against its
// recorded baseline.
func (d *Detector) IsModified(rec *manifest.PackageRecord, category manifest.Category, entry manifest.FileEntry) Verdict {
	log := logging.GetLogger("modcheck")

	path := d.project.FilePath(entry.InstalledPath)
	current, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// a deleted file no longer matches its baseline
			return Modified
		}
		log.Warn().Err(err).Str("path", path).Msg("Cannot read installed file")
		return Unknown
	}

	if entry.Hash != "" {
		if HashBytes(current) == entry.Hash {
			return Unmodified
		}
		return Modified
	}

	// No recorded baseline (manifest predates hashes): diff against the
	// source's current content.
	if d.fetcher == nil {
		return Unknown
	}
	baseline, err := d.fetcher.FetchFile(rec.Source, category, entry.Name)
	if err != nil {
		log.Debug().Err(err).
			Str("package", rec.Name).
			Str("file", entry.Name).
			Msg("Baseline fetch failed, verdict unknown")
		return Unknown
	}
	if bytes.Equal(current, baseline) {
		return Unmodified
	}
	return Modified
}
