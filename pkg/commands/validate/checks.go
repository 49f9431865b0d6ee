package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// checkContext carries shared state across the battery: the project
// handle plus a lazily parsed package.json.
type checkContext struct {
	project *project.Project
	opts    Options

	pkgJSON       map[string]interface{}
	pkgJSONErr    error
	pkgJSONParsed bool
}

func newCheckContext(opts Options) *checkContext {
	return &checkContext{project: opts.Project, opts: opts}
}

func (c *checkContext) path(rel string) string {
	return filepath.Join(c.project.Root, rel)
}

func (c *checkContext) exists(rel string) bool {
	_, err := os.Stat(c.path(rel))
	return err == nil
}

// packageJSON parses package.json once and caches the outcome.
func (c *checkContext) packageJSON() (map[string]interface{}, error) {
	if c.pkgJSONParsed {
		return c.pkgJSON, c.pkgJSONErr
	}
	c.pkgJSONParsed = true
	data, err := os.ReadFile(c.path("package.json"))
	if err != nil {
		c.pkgJSONErr = err
		return nil, err
	}
	c.pkgJSONErr = json.Unmarshal(data, &c.pkgJSON)
	return c.pkgJSON, c.pkgJSONErr
}

func (c *checkContext) packageScript(name string) bool {
	pkg, err := c.packageJSON()
	if err != nil {
		return false
	}
	scripts, ok := pkg["scripts"].(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = scripts[name]
	return ok
}

// envValues parses KEY=VALUE lines from .env. Malformed lines are
// returned in bad.
func (c *checkContext) envValues() (values map[string]string, bad []string, err error) {
	data, err := os.ReadFile(c.path(".env"))
	if err != nil {
		return nil, nil, err
	}
	values = map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			bad = append(bad, line)
			continue
		}
		values[line[:eq]] = strings.Trim(line[eq+1:], `"'`)
	}
	return values, bad, nil
}

// check is one battery entry. run returns the outcome; skipped gates
// on flags like --skip-tests.
type check struct {
	id       string
	category string
	minLevel Level
	skipped  func(Options) bool
	run      func(*checkContext) (Status, string)
}

// battery is the full ordered check list. Order is stable: it is the
// order checks are reported in.
var battery = []check{
	// file structure
	{id: "structure/package-json", category: "file structure", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("package.json") {
				return StatusFail, "package.json is missing"
			}
			return StatusPass, "package.json present"
		}},
	{id: "structure/src", category: "file structure", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("src") {
				return StatusFail, "src/ directory is missing"
			}
			return StatusPass, "src/ present"
		}},
	{id: "structure/env-example", category: "file structure", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists(".env.example") {
				return StatusWarn, ".env.example is missing"
			}
			return StatusPass, ".env.example present"
		}},
	{id: "structure/category-dirs", category: "file structure", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			var missing []string
			for _, cat := range manifest.Categories() {
				if _, err := os.Stat(c.project.CategoryDir(cat)); err != nil {
					missing = append(missing, c.project.CategoryDirName(cat))
				}
			}
			if len(missing) > 0 {
				return StatusWarn, "missing content directories: " + strings.Join(missing, ", ")
			}
			return StatusPass, "content directories present"
		}},
	{id: "structure/manifest", category: "file structure", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			store := c.project.Store()
			if !store.Exists() {
				return StatusWarn, "no package manifest (nothing installed yet)"
			}
			if _, err := store.Load(); err != nil {
				return StatusFail, fmt.Sprintf("manifest does not parse: %v", err)
			}
			return StatusPass, "manifest parses"
		}},

	// dependencies
	{id: "deps/package-json-parse", category: "dependencies", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("package.json") {
				return StatusSkip, "no package.json"
			}
			if _, err := c.packageJSON(); err != nil {
				return StatusFail, fmt.Sprintf("package.json does not parse: %v", err)
			}
			return StatusPass, "package.json parses"
		}},
	{id: "deps/declared", category: "dependencies", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			pkg, err := c.packageJSON()
			if err != nil {
				return StatusSkip, "no parseable package.json"
			}
			deps, ok := pkg["dependencies"].(map[string]interface{})
			if !ok || len(deps) == 0 {
				return StatusWarn, "package.json declares no dependencies"
			}
			return StatusPass, fmt.Sprintf("%d dependencies declared", len(deps))
		}},
	{id: "deps/node-modules", category: "dependencies", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("package.json") {
				return StatusSkip, "no package.json"
			}
			if !c.exists("node_modules") {
				return StatusWarn, "node_modules is missing"
			}
			return StatusPass, "node_modules present"
		}},

	// configuration syntax
	{id: "config/tsconfig", category: "configuration", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			data, err := os.ReadFile(c.path("tsconfig.json"))
			if err != nil {
				return StatusWarn, "tsconfig.json is missing"
			}
			var parsed map[string]interface{}
			if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
				return StatusFail, fmt.Sprintf("tsconfig.json does not parse: %v", err)
			}
			return StatusPass, "tsconfig.json parses"
		}},
	{id: "config/yaml-syntax", category: "configuration", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			matches, _ := filepath.Glob(c.path("*.yaml"))
			more, _ := filepath.Glob(c.path("*.yml"))
			matches = append(matches, more...)
			var bad []string
			for _, match := range matches {
				// the stencil manifest has its own check
				if match == c.project.ManifestPath() {
					continue
				}
				data, err := os.ReadFile(match)
				if err != nil {
					continue
				}
				var out interface{}
				if err := yaml.Unmarshal(data, &out); err != nil {
					bad = append(bad, filepath.Base(match))
				}
			}
			if len(bad) > 0 {
				return StatusFail, "invalid YAML: " + strings.Join(bad, ", ")
			}
			return StatusPass, fmt.Sprintf("%d YAML file(s) parse", len(matches))
		}},
	{id: "config/env-format", category: "configuration", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists(".env") {
				return StatusSkip, "no .env"
			}
			_, bad, err := c.envValues()
			if err != nil {
				return StatusFail, fmt.Sprintf("cannot read .env: %v", err)
			}
			if len(bad) > 0 {
				return StatusFail, fmt.Sprintf("%d malformed line(s) in .env", len(bad))
			}
			return StatusPass, ".env format is valid"
		}},

	// environment variables
	{id: "env/file", category: "environment", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists(".env") {
				return StatusWarn, ".env is missing"
			}
			return StatusPass, ".env present"
		}},
	{id: "env/required", category: "environment", minLevel: LevelQuick,
		run: func(c *checkContext) (Status, string) {
			if !c.exists(".env") {
				return StatusSkip, "no .env"
			}
			values, _, err := c.envValues()
			if err != nil {
				return StatusSkip, "cannot read .env"
			}
			var missing []string
			for _, key := range []string{"PORT", "JWT_SECRET"} {
				if values[key] == "" {
					missing = append(missing, key)
				}
			}
			if len(missing) > 0 {
				return StatusFail, "missing or empty: " + strings.Join(missing, ", ")
			}
			return StatusPass, "required variables set"
		}},

	// compilation
	{id: "compile/tsc", category: "compilation", minLevel: LevelStandard,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("tsconfig.json") {
				return StatusSkip, "no tsconfig.json"
			}
			if out, err := c.opts.Runner.Run(c.project.Root, "npx", "tsc", "--noEmit"); err != nil {
				return StatusFail, firstLine(out, "type check failed")
			}
			return StatusPass, "type check clean"
		}},

	// build
	{id: "build/npm", category: "build", minLevel: LevelStandard,
		run: func(c *checkContext) (Status, string) {
			if !c.packageScript("build") {
				return StatusSkip, "no build script"
			}
			if out, err := c.opts.Runner.Run(c.project.Root, "npm", "run", "build"); err != nil {
				return StatusFail, firstLine(out, "build failed")
			}
			return StatusPass, "build succeeded"
		}},

	// tests
	{id: "test/npm", category: "tests", minLevel: LevelStandard,
		skipped: func(o Options) bool { return o.SkipTests },
		run: func(c *checkContext) (Status, string) {
			if !c.packageScript("test") {
				return StatusSkip, "no test script"
			}
			if out, err := c.opts.Runner.Run(c.project.Root, "npm", "test"); err != nil {
				return StatusFail, firstLine(out, "tests failed")
			}
			return StatusPass, "tests passed"
		}},

	// auth configuration
	{id: "auth/jwt-secret", category: "auth", minLevel: LevelFull,
		run: func(c *checkContext) (Status, string) {
			values, _, err := c.envValues()
			if err != nil {
				return StatusSkip, "no .env"
			}
			secret := values["JWT_SECRET"]
			if secret == "" {
				return StatusSkip, "JWT_SECRET not set"
			}
			if len(secret) < 32 {
				return StatusWarn, "JWT_SECRET is shorter than 32 characters"
			}
			return StatusPass, "JWT_SECRET length ok"
		}},
	{id: "auth/providers", category: "auth", minLevel: LevelFull,
		run: func(c *checkContext) (Status, string) {
			if !c.exists("src/auth") {
				return StatusWarn, "src/auth/ is missing"
			}
			return StatusPass, "auth provider directory present"
		}},

	// container configuration
	{id: "docker/dockerfile", category: "container", minLevel: LevelFull,
		skipped: func(o Options) bool { return o.SkipDocker },
		run: func(c *checkContext) (Status, string) {
			data, err := os.ReadFile(c.path("Dockerfile"))
			if err != nil {
				return StatusWarn, "Dockerfile is missing"
			}
			for _, line := range strings.Split(string(data), "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "FROM ") {
					return StatusPass, "Dockerfile has a base image"
				}
			}
			return StatusFail, "Dockerfile has no FROM instruction"
		}},

	// CI configuration
	{id: "ci/config", category: "ci", minLevel: LevelFull,
		run: func(c *checkContext) (Status, string) {
			candidates := []string{"cloudbuild.yaml"}
			workflows, _ := filepath.Glob(c.path(".github/workflows/*.yml"))
			moreWorkflows, _ := filepath.Glob(c.path(".github/workflows/*.yaml"))
			for _, w := range append(workflows, moreWorkflows...) {
				rel, err := filepath.Rel(c.project.Root, w)
				if err == nil {
					candidates = append(candidates, rel)
				}
			}
			found := 0
			for _, rel := range candidates {
				data, err := os.ReadFile(c.path(rel))
				if err != nil {
					continue
				}
				found++
				var out interface{}
				if err := yaml.Unmarshal(data, &out); err != nil {
					return StatusFail, fmt.Sprintf("%s does not parse: %v", rel, err)
				}
			}
			if found == 0 {
				return StatusWarn, "no CI configuration found"
			}
			return StatusPass, fmt.Sprintf("%d CI file(s) parse", found)
		}},
}

// applyFixes performs the safe automatic fixes and reports what it did.
func applyFixes(p *project.Project) []string {
	var fixes []string
	for _, cat := range manifest.Categories() {
		dir := p.CategoryDir(cat)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if os.MkdirAll(dir, 0755) == nil {
				fixes = append(fixes, "created "+p.CategoryDirName(cat)+"/")
			}
		}
	}
	envPath := filepath.Join(p.Root, ".env")
	examplePath := filepath.Join(p.Root, ".env.example")
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		if data, err := os.ReadFile(examplePath); err == nil {
			if os.WriteFile(envPath, data, 0600) == nil {
				fixes = append(fixes, "created .env from .env.example")
			}
		}
	}
	return fixes
}

func firstLine(out []byte, fallback string) string {
	s := strings.TrimSpace(string(out))
	if s == "" {
		return fallback
	}
	if i := strings.IndexByte(s, '\n'); i > 0 {
		s = s[:i]
	}
	return s
}
