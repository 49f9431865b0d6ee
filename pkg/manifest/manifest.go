// Package manifest is the installed-package ledger: a typed view over
// a restricted-YAML document mapping package names to their source,
// version, timestamps, and per-category file lists. All mutation goes
// through the node tree so unaffected packages keep their exact
// formatting across rewrites.
package manifest

import (
	"time"

	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/yamldoc"
)

// Category is one of the three content kinds a package may install.
type Category string

const (
	CategoryPatterns Category = "patterns"
	CategoryCommands Category = "commands"
	CategoryDesigns  Category = "designs"
)

// Categories returns all categories in their canonical document order.
func Categories() []Category {
	return []Category{CategoryPatterns, CategoryCommands, CategoryDesigns}
}

// TimeFormat is the timestamp layout used throughout the manifest.
const TimeFormat = time.RFC3339

// FileEntry is one tracked installed file within a package category.
type FileEntry struct {
	Name          string
	InstalledPath string
	// Hash is the BLAKE3 hex digest of the file content as installed.
	// Empty for records written by older manifest versions.
	Hash string
}

// PackageRecord is everything the manifest tracks about one installed
// package.
type PackageRecord struct {
	Name        string
	Source      string
	Version     SemVer
	InstalledAt time.Time
	UpdatedAt   time.Time
	Contents    map[Category][]FileEntry
}

// Files returns the record's entries for one category.
func (r *PackageRecord) Files(category Category) []FileEntry {
	return r.Contents[category]
}

// AllFiles returns every tracked entry across categories, in canonical
// category order.
func (r *PackageRecord) AllFiles() []FileEntry {
	var all []FileEntry
	for _, c := range Categories() {
		all = append(all, r.Contents[c]...)
	}
	return all
}

// FileCount returns the total number of tracked files.
func (r *PackageRecord) FileCount() int {
	n := 0
	for _, c := range Categories() {
		n += len(r.Contents[c])
	}
	return n
}

// Manifest is the parsed ledger. The underlying document tree is the
// source of truth; typed records are extracted on demand.
type Manifest struct {
	doc *yamldoc.Document
}

// New returns an empty manifest with a document-level updated_at and
// an empty packages section.
func New() *Manifest {
	doc := yamldoc.NewDocument()
	doc.Root().SetScalar("updated_at", time.Now().UTC().Format(TimeFormat))
	doc.Root().Set("packages", yamldoc.NewMapping())
	return &Manifest{doc: doc}
}

// ParseManifest parses manifest document bytes.
func ParseManifest(data []byte) (*Manifest, error) {
	doc, err := yamldoc.Parse(data)
	if err != nil {
		return nil, err
	}
	return &Manifest{doc: doc}, nil
}

// Bytes serializes the manifest document.
func (m *Manifest) Bytes() []byte {
	return m.doc.Bytes()
}

// packagesSection returns the packages mapping, creating it if the
// document predates the section.
func (m *Manifest) packagesSection() *yamldoc.Mapping {
	if n, ok := m.doc.Root().Get("packages"); ok {
		if mp, ok := n.(*yamldoc.Mapping); ok {
			return mp
		}
	}
	mp := yamldoc.NewMapping()
	m.doc.Root().Set("packages", mp)
	return mp
}

// Packages returns installed package names in document order.
func (m *Manifest) Packages() []string {
	return m.packagesSection().Keys()
}

// Has reports whether a package is recorded.
func (m *Manifest) Has(name string) bool {
	_, ok := m.packagesSection().Get(name)
	return ok
}

// Get extracts the typed record for one package. Missing packages fail
// with ErrPackageNotFound; records whose version does not parse fail
// with ErrVersionInvalid.
func (m *Manifest) Get(name string) (*PackageRecord, error) {
	node, ok := m.packagesSection().Get(name)
	if !ok {
		return nil, errors.Newf(errors.ErrPackageNotFound, "package %q is not installed", name)
	}
	block, ok := node.(*yamldoc.Mapping)
	if !ok {
		return nil, errors.Newf(errors.ErrPackageInvalid, "package %q has a malformed record", name)
	}

	rec := &PackageRecord{
		Name:     name,
		Contents: make(map[Category][]FileEntry),
	}
	rec.Source, _ = block.Scalar("source")

	rawVersion, _ := block.Scalar("package_version")
	version, err := ParseVersion(rawVersion)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPackageInvalid, "package %q", name)
	}
	rec.Version = version

	rec.InstalledAt = parseTime(block, "installed_at")
	rec.UpdatedAt = parseTime(block, "updated_at")

	if contents, ok := block.Get("contents"); ok {
		if cm, ok := contents.(*yamldoc.Mapping); ok {
			for _, category := range Categories() {
				rec.Contents[category] = fileEntries(cm, category)
			}
		}
	}
	return rec, nil
}

// Upsert writes a record into the tree: an existing package's block is
// replaced in place, a new one is appended after the others. The
// installed_at <= updated_at invariant is normalized here.
func (m *Manifest) Upsert(rec *PackageRecord) {
	if rec.UpdatedAt.Before(rec.InstalledAt) {
		rec.UpdatedAt = rec.InstalledAt
	}
	m.packagesSection().Set(rec.Name, recordNode(rec))
}

// Remove deletes a package's entire block. It reports whether the
// package was present.
func (m *Manifest) Remove(name string) bool {
	return m.packagesSection().Delete(name)
}

// ListFiles returns the tracked entries for one package category.
func (m *Manifest) ListFiles(name string, category Category) ([]FileEntry, error) {
	rec, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	return rec.Files(category), nil
}

// touch bumps the document-level updated_at; called by Store.Save.
func (m *Manifest) touch(now time.Time) {
	m.doc.Root().SetScalar("updated_at", now.UTC().Format(TimeFormat))
}

func parseTime(block *yamldoc.Mapping, key string) time.Time {
	raw, ok := block.Scalar(key)
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(TimeFormat, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func fileEntries(contents *yamldoc.Mapping, category Category) []FileEntry {
	node, ok := contents.Get(string(category))
	if !ok {
		return nil
	}
	seq, ok := node.(*yamldoc.Sequence)
	if !ok {
		return nil
	}
	var entries []FileEntry
	for _, item := range seq.Items() {
		im, ok := item.(*yamldoc.Mapping)
		if !ok {
			continue
		}
		var fe FileEntry
		fe.Name, _ = im.Scalar("name")
		fe.InstalledPath, _ = im.Scalar("installed_path")
		fe.Hash, _ = im.Scalar("hash")
		if fe.Name != "" {
			entries = append(entries, fe)
		}
	}
	return entries
}

// recordNode builds the tree block for a record, with categories in
// canonical order and empty categories omitted.
func recordNode(rec *PackageRecord) *yamldoc.Mapping {
	block := yamldoc.NewMapping()
	block.SetScalar("source", rec.Source)
	block.SetScalar("package_version", rec.Version.String())
	block.SetScalar("installed_at", rec.InstalledAt.UTC().Format(TimeFormat))
	block.SetScalar("updated_at", rec.UpdatedAt.UTC().Format(TimeFormat))

	contents := yamldoc.NewMapping()
	for _, category := range Categories() {
		files := rec.Contents[category]
		if len(files) == 0 {
			continue
		}
		seq := yamldoc.NewSequence()
		for _, fe := range files {
			item := yamldoc.NewMapping()
			item.SetScalar("name", fe.Name)
			item.SetScalar("installed_path", fe.InstalledPath)
			if fe.Hash != "" {
				item.SetScalar("hash", fe.Hash)
			}
			seq.Append(item)
		}
		contents.Set(string(category), seq)
	}
	block.Set("contents", contents)
	return block
}
