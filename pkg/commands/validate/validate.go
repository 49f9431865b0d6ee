package validate

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/stenciltools/stencil/pkg/logging"
	"github.com/stenciltools/stencil/pkg/project"
)

// Level selects how deep the battery goes. Each level includes the
// previous one.
type Level string

const (
	LevelQuick    Level = "quick"
	LevelStandard Level = "standard"
	LevelFull     Level = "full"
)

// ParseLevel validates a --level flag value.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelQuick, LevelStandard, LevelFull:
		return Level(s), nil
	}
	return "", fmt.Errorf("unknown level %q (want quick, standard or full)", s)
}

// rank orders levels for inclusion checks.
func (l Level) rank() int {
	switch l {
	case LevelStandard:
		return 1
	case LevelFull:
		return 2
	default:
		return 0
	}
}

func (l Level) includes(min Level) bool { return l.rank() >= min.rank() }

// Status is the outcome of one check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// CheckResult is one check's outcome with its message.
type CheckResult struct {
	ID       string
	Category string
	Status   Status
	Message  string
}

// CommandRunner executes a validation subprocess (compiler, build,
// test runner) in a directory. Tests substitute a canned runner.
type CommandRunner interface {
	Run(dir, name string, args ...string) ([]byte, error)
}

// ExecRunner shells out for real.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(dir, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Options defines the options for the Validate command.
type Options struct {
	Project    *project.Project
	Level      Level
	SkipTests  bool
	SkipDocker bool
	// Fix applies the safe automatic fixes (create category dirs,
	// create .env from .env.example) before the battery runs.
	Fix bool
	// Runner defaults to ExecRunner.
	Runner CommandRunner
}

// Result aggregates the whole battery. Individual check failures never
// abort sibling checks; they only move counters.
type Result struct {
	Level   Level
	Checks  []CheckResult
	Passed  int
	Failed  int
	Warned  int
	Skipped int
	Fixes   []string
}

// SuccessPercent is passed checks over all non-skipped checks.
func (r *Result) SuccessPercent() int {
	ran := r.Passed + r.Failed + r.Warned
	if ran == 0 {
		return 100
	}
	return r.Passed * 100 / ran
}

// ExitCode maps the battery outcome to the process exit code: 0 clean,
// 1 any failure, 2 warnings only.
func (r *Result) ExitCode() int {
	if r.Failed > 0 {
		return 1
	}
	if r.Warned > 0 {
		return 2
	}
	return 0
}

// Suggestions returns remediation hints for the checks that failed or
// warned, in battery order.
func (r *Result) Suggestions() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range r.Checks {
		if c.Status != StatusFail && c.Status != StatusWarn {
			continue
		}
		s, ok := suggestions[c.ID]
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Validate runs the ordered battery for the requested level. Every
// check runs regardless of earlier outcomes.
func Validate(opts Options) (*Result, error) {
	log := logging.GetLogger("commands.validate")
	log.Debug().Str("command", "Validate").Str("level", string(opts.Level)).Msg("Executing command")

	if opts.Level == "" {
		opts.Level = LevelQuick
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}

	ctx := newCheckContext(opts)
	result := &Result{Level: opts.Level}

	if opts.Fix {
		result.Fixes = applyFixes(opts.Project)
	}

	for _, chk := range battery {
		var cr CheckResult
		switch {
		case !opts.Level.includes(chk.minLevel):
			cr = CheckResult{ID: chk.id, Category: chk.category, Status: StatusSkip,
				Message: fmt.Sprintf("requires --level %s", chk.minLevel)}
		case chk.skipped != nil && chk.skipped(opts):
			cr = CheckResult{ID: chk.id, Category: chk.category, Status: StatusSkip,
				Message: "skipped by flag"}
		default:
			status, msg := chk.run(ctx)
			cr = CheckResult{ID: chk.id, Category: chk.category, Status: status, Message: msg}
		}

		result.Checks = append(result.Checks, cr)
		switch cr.Status {
		case StatusPass:
			result.Passed++
		case StatusFail:
			result.Failed++
		case StatusWarn:
			result.Warned++
		default:
			result.Skipped++
		}
	}

	log.Info().Str("command", "Validate").
		Int("passed", result.Passed).
		Int("failed", result.Failed).
		Int("warned", result.Warned).
		Int("skipped", result.Skipped).
		Msg("Command finished")
	return result, nil
}

// FormatCheckLine renders one check for terminal output.
func FormatCheckLine(c CheckResult) string {
	return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(c.Status)), c.ID, c.Message)
}
