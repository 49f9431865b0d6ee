package validate

// suggestions maps failing check IDs to remediation hints printed
// after the summary.
var suggestions = map[string]string{
	"structure/package-json":  "run 'npm init' or restore package.json from your template",
	"structure/src":           "create the src/ directory for application code",
	"structure/env-example":   "add an .env.example documenting required variables",
	"structure/category-dirs": "run 'stencil validate --fix' to create the content directories",
	"structure/manifest":      "restore .stencil/manifest.yaml from version control or reinstall packages",
	"deps/package-json-parse": "fix the JSON syntax in package.json",
	"deps/declared":           "declare your runtime dependencies in package.json",
	"deps/node-modules":       "run 'npm install'",
	"config/tsconfig":         "fix or create tsconfig.json",
	"config/yaml-syntax":      "fix the reported YAML files",
	"config/env-format":       "use KEY=VALUE lines in .env",
	"env/file":                "create .env from .env.example (or run 'stencil validate --fix')",
	"env/required":            "set PORT and JWT_SECRET in .env",
	"compile/tsc":             "fix the reported type errors",
	"build/npm":               "run 'npm run build' locally and fix the reported errors",
	"test/npm":                "run 'npm test' locally and fix the failing tests",
	"auth/jwt-secret":         "use a JWT_SECRET of at least 32 random characters",
	"auth/providers":          "add your auth provider setup under src/auth/",
	"docker/dockerfile":       "add a Dockerfile with a FROM instruction",
	"ci/config":               "add cloudbuild.yaml or a GitHub workflow",
}
