package main

import (
	"fmt"
	"strings"

	"github.com/stenciltools/stencil/pkg/commands/list"
	"github.com/stenciltools/stencil/pkg/commands/validate"
	"github.com/stenciltools/stencil/pkg/manifest"
	"github.com/stenciltools/stencil/pkg/style"
)

// countSummary renders per-category file counts in a fixed category
// order, e.g. "3 pattern(s), 2 command(s), 1 design(s)".
func countSummary(counts map[manifest.Category]int) string {
	parts := make([]string, 0, len(counts))
	for _, cat := range manifest.Categories() {
		n, ok := counts[cat]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d %s(s)", n, strings.TrimSuffix(string(cat), "s")))
	}
	if len(parts) == 0 {
		return "no files"
	}
	return strings.Join(parts, ", ")
}

func printPackage(p list.PackageInfo, verbose, checkedOutdated, checkedModified bool) {
	line := fmt.Sprintf("%s %s (%s)", style.Bold(p.Name), p.Version.String(), countSummary(p.Counts))
	if checkedOutdated {
		line += "  " + updateNote(p)
	}
	fmt.Println(line)

	if verbose {
		fmt.Printf("  source:    %s\n", style.Dim(p.Source))
		fmt.Printf("  installed: %s\n", style.Dim(p.InstalledAt))
		if p.UpdatedAt != p.InstalledAt {
			fmt.Printf("  updated:   %s\n", style.Dim(p.UpdatedAt))
		}
	}
	if checkedModified {
		for _, f := range p.ModifiedFiles {
			fmt.Printf("  %s %s\n", style.Mark(style.StatusModified), f)
		}
		for _, f := range p.UnknownFiles {
			fmt.Printf("  %s %s (could not verify)\n", style.Mark(style.StatusUnknown), f)
		}
	}
}

func updateNote(p list.PackageInfo) string {
	switch p.UpdateState {
	case list.UpdateAvailable:
		return style.Bold(fmt.Sprintf("update available: %s", p.RemoteVersion))
	case list.UpdateCurrent:
		return style.Dim("up to date")
	case list.UpdateAheadOfRemote:
		return style.Dim(fmt.Sprintf("ahead of remote (%s)", p.RemoteVersion))
	default:
		return style.Dim("update check failed")
	}
}

// printValidation writes the check battery report. Passing and skipped
// checks are only shown under verbose; failures and warnings always are.
func printValidation(r *validate.Result, verbose bool) {
	for _, fixed := range r.Fixes {
		fmt.Printf(MsgValidateFixItem, fixed)
	}
	for _, c := range r.Checks {
		if !verbose && c.Status != validate.StatusFail && c.Status != validate.StatusWarn {
			continue
		}
		fmt.Println(style.Mark(checkStatus(c.Status)) + " " + validate.FormatCheckLine(c))
	}
	fmt.Printf(MsgValidateSummary, r.Passed, r.Failed, r.Warned, r.Skipped, r.SuccessPercent())

	if suggestions := r.Suggestions(); len(suggestions) > 0 {
		fmt.Println(MsgValidateSuggestions)
		for _, s := range suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
}

func checkStatus(s validate.Status) style.Status {
	switch s {
	case validate.StatusPass:
		return style.StatusPass
	case validate.StatusFail:
		return style.StatusFail
	case validate.StatusWarn:
		return style.StatusWarn
	default:
		return style.StatusUnknown
	}
}
