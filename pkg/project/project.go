// Package project resolves the on-disk layout of a stencil-managed
// project: where the manifest lives and where each content category is
// installed. Commands receive a *Project handle explicitly; nothing in
// the codebase reaches for an ambient global path.
package project

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/manifest"
)

// ConfigFileName is the optional per-project override file.
const ConfigFileName = ".stencil.toml"

// DefaultManifestPath is the manifest location relative to the project
// root when .stencil.toml does not override it.
const DefaultManifestPath = ".stencil/manifest.yaml"

// Config holds the .stencil.toml overrides.
type Config struct {
	ManifestPath string      `toml:"manifest_path"`
	Directories  Directories `toml:"directories"`
}

// Directories overrides the per-category install directories.
type Directories struct {
	Patterns string `toml:"patterns"`
	Commands string `toml:"commands"`
	Designs  string `toml:"designs"`
}

// Project is the resolved layout for one project root.
type Project struct {
	Root string

	manifestPath string
	dirs         map[manifest.Category]string
}

// Open resolves the project at root (the current directory when root
// is empty), applying .stencil.toml overrides if the file exists.
func Open(root string) (*Project, error) {
	log := logging.GetLogger("project")

	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot determine working directory")
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot resolve project root %s", root)
	}

	p := &Project{
		Root:         abs,
		manifestPath: DefaultManifestPath,
		dirs: map[manifest.Category]string{
			manifest.CategoryPatterns: "patterns",
			manifest.CategoryCommands: "commands",
			manifest.CategoryDesigns:  "designs",
		},
	}

	cfgPath := filepath.Join(abs, ConfigFileName)
	data, err := os.ReadFile(cfgPath)
	if err == nil {
		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "malformed %s", ConfigFileName)
		}
		p.apply(cfg)
		log.Debug().Str("path", cfgPath).Msg("Loaded project config")
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", cfgPath)
	}

	return p, nil
}

func (p *Project) apply(cfg Config) {
	if cfg.ManifestPath != "" {
		p.manifestPath = cfg.ManifestPath
	}
	if cfg.Directories.Patterns != "" {
		p.dirs[manifest.CategoryPatterns] = cfg.Directories.Patterns
	}
	if cfg.Directories.Commands != "" {
		p.dirs[manifest.CategoryCommands] = cfg.Directories.Commands
	}
	if cfg.Directories.Designs != "" {
		p.dirs[manifest.CategoryDesigns] = cfg.Directories.Designs
	}
}

// ManifestPath returns the absolute manifest location.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.Root, p.manifestPath)
}

// Store returns the manifest store for this project.
func (p *Project) Store() *manifest.Store {
	return manifest.NewStore(p.ManifestPath())
}

// CategoryDir returns the absolute install directory for a category.
func (p *Project) CategoryDir(category manifest.Category) string {
	return filepath.Join(p.Root, p.dirs[category])
}

// CategoryDirName returns the category directory relative to the root,
// as recorded in manifest installed_path values.
func (p *Project) CategoryDirName(category manifest.Category) string {
	return p.dirs[category]
}

// FilePath returns the absolute path of a tracked file given its
// manifest installed_path.
func (p *Project) FilePath(installedPath string) string {
	if filepath.IsAbs(installedPath) {
		return installedPath
	}
	return filepath.Join(p.Root, installedPath)
}

// EnsureLayout creates the manifest directory and all category
// directories.
func (p *Project) EnsureLayout() error {
	dirs := []string{filepath.Dir(p.ManifestPath())}
	for _, c := range manifest.Categories() {
		dirs = append(dirs, p.CategoryDir(c))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
		}
	}
	return nil
}

// CloneCacheDir returns the scratch directory under the XDG cache home
// used for shallow clones. Callers create per-fetch temp dirs inside
// it and remove them on every exit path.
func CloneCacheDir() string {
	return filepath.Join(xdg.CacheHome, "stencil", "clones")
}
