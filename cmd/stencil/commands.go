package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stenciltools/stencil/pkg/commands/install"
	"github.com/stenciltools/stencil/pkg/commands/list"
	"github.com/stenciltools/stencil/pkg/commands/remove"
	"github.com/stenciltools/stencil/pkg/commands/validate"
	"github.com/stenciltools/stencil/pkg/errors"
	"github.com/stenciltools/stencil/pkg/modcheck"
	"github.com/stenciltools/stencil/pkg/project"
	"github.com/stenciltools/stencil/pkg/registry"
	"github.com/stenciltools/stencil/pkg/style"
)

// confirm prints a prompt and reads one line from stdin. Anything but
// y/yes declines.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func newInstallCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "install <repository-url>",
		Short: MsgInstallShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Open("")
			if err != nil {
				return err
			}

			opts := install.Options{
				Project:   proj,
				Client:    registry.NewClient(project.CloneCacheDir()),
				SourceURL: args[0],
			}
			if !assumeYes {
				opts.Confirm = func(name string) bool {
					return confirm(fmt.Sprintf(MsgConfirmReinstall, name))
				}
			}

			result, err := install.Install(opts)
			if err != nil {
				if errors.IsCode(err, errors.ErrInvalidInput) {
					fmt.Print(MsgInstallCancelled)
					return nil
				}
				return err
			}

			format := MsgInstalledFormat
			if result.Updated {
				format = MsgUpdatedFormat
			}
			fmt.Printf(format, style.Bold(result.PackageName), result.Version.String(), countSummary(result.Counts))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, MsgFlagYes)
	return cmd
}

func newListCmd(verbosity *int) *cobra.Command {
	var checkOutdated, checkModified bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Long:  MsgListLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Open("")
			if err != nil {
				return err
			}

			client := registry.NewClient(project.CloneCacheDir())
			result, err := list.List(list.Options{
				Project:       proj,
				Client:        client,
				Detector:      modcheck.NewDetector(proj, client),
				CheckOutdated: checkOutdated,
				CheckModified: checkModified,
			})
			if err != nil {
				return err
			}

			if len(result.Packages) == 0 {
				fmt.Println(MsgNoPackages)
				return nil
			}
			for _, p := range result.Packages {
				printPackage(p, *verbosity > 0, checkOutdated, checkModified)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOutdated, "outdated", false, MsgFlagOutdated)
	cmd.Flags().BoolVar(&checkModified, "modified", false, MsgFlagModified)
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var assumeYes, keepModified bool

	cmd := &cobra.Command{
		Use:   "remove <package-name>",
		Short: MsgRemoveShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := project.Open("")
			if err != nil {
				return err
			}

			client := registry.NewClient(project.CloneCacheDir())
			opts := remove.Options{
				Project:      proj,
				Detector:     modcheck.NewDetector(proj, client),
				PackageName:  args[0],
				KeepModified: keepModified,
			}
			if !assumeYes {
				opts.Confirm = func(plan remove.Plan) bool {
					return confirm(fmt.Sprintf(MsgConfirmRemove, plan.PackageName, len(plan.Delete), len(plan.Keep)))
				}
			}

			result, err := remove.Remove(opts)
			if err != nil {
				return err
			}
			if result.Cancelled {
				fmt.Print(MsgRemoveCancelled)
				return nil
			}

			fmt.Printf(MsgRemovedFormat, style.Bold(result.PackageName), result.Removed, result.Kept)
			for _, kept := range result.KeptFiles {
				fmt.Printf(MsgKeptFileItem, style.Mark(style.StatusKept)+" "+kept)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVar(&keepModified, "keep-modified", false, MsgFlagKeepModified)
	return cmd
}

func newValidateCmd(verbosity *int) *cobra.Command {
	var (
		level      string
		skipTests  bool
		skipDocker bool
		fix        bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: MsgValidateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedLevel, err := validate.ParseLevel(level)
			if err != nil {
				return err
			}
			proj, err := project.Open("")
			if err != nil {
				return err
			}

			result, err := validate.Validate(validate.Options{
				Project:    proj,
				Level:      parsedLevel,
				SkipTests:  skipTests,
				SkipDocker: skipDocker,
				Fix:        fix,
			})
			if err != nil {
				return err
			}

			printValidation(result, *verbosity > 0)
			if code := result.ExitCode(); code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", string(validate.LevelQuick), MsgFlagLevel)
	cmd.Flags().BoolVar(&skipTests, "skip-tests", false, MsgFlagSkipTests)
	cmd.Flags().BoolVar(&skipDocker, "skip-docker", false, MsgFlagSkipDocker)
	cmd.Flags().BoolVar(&fix, "fix", false, MsgFlagFix)
	return cmd
}
