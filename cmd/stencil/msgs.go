package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort = "A package manager for server-bootstrap content bundles"
	MsgRootLong = `stencil installs, tracks and removes content packages (patterns,
commands and designs) used to bootstrap authenticated multi-tenant
servers. Installed packages are recorded in a local manifest so they
can be listed, checked for updates and removed cleanly.`

	MsgInstallShort  = "Install a package from a git repository"
	MsgListShort     = "List installed packages"
	MsgListLong      = "List displays every package recorded in the project manifest, with optional update and modification checks."
	MsgRemoveShort   = "Remove an installed package"
	MsgValidateShort = "Validate the project setup"
	MsgVersionShort  = "Print version information"

	// Status messages
	MsgNoPackages          = "No packages installed."
	MsgInstalledFormat     = "Installed %s %s: %s\n"
	MsgUpdatedFormat       = "Updated %s to %s: %s\n"
	MsgRemovedFormat       = "Removed %s: %d file(s) removed, %d kept\n"
	MsgRemoveCancelled     = "Remove cancelled.\n"
	MsgInstallCancelled    = "Install cancelled.\n"
	MsgKeptFileItem        = "  kept %s\n"
	MsgValidateSummary     = "\n%d passed, %d failed, %d warning(s), %d skipped (%d%% ok)\n"
	MsgValidateSuggestions = "\nSuggestions:"
	MsgValidateFixItem     = "  fixed: %s\n"

	// Prompts
	MsgConfirmReinstall = "Package '%s' is already installed. Reinstall? [y/N] "
	MsgConfirmRemove    = "Remove package '%s' (%d file(s) to delete, %d to keep)? [y/N] "

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagYes          = "Assume yes for all prompts"
	MsgFlagOutdated     = "Check each package's source for a newer version"
	MsgFlagModified     = "Check tracked files for local modifications"
	MsgFlagKeepModified = "Keep locally modified files on disk"
	MsgFlagLevel        = "Validation level: quick, standard or full"
	MsgFlagSkipTests    = "Skip the test-runner check"
	MsgFlagSkipDocker   = "Skip the container configuration check"
	MsgFlagFix          = "Apply safe automatic fixes before validating"
)
