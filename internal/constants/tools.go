package constants

// Tool names.
const (
	// ToolGit is the Git version control system.
	ToolGit = "git"
)

// Version gate thresholds for optional git flags.
const (
	// MinVersionGit is the minimum supported Git version.
	MinVersionGit = "2.7.2"

	// MinVersionFindRenames is the first version where status accepts --find-renames.
	MinVersionFindRenames = "2.18"

	// MinVersionEndOfOptions is the first version where rev-parse accepts --end-of-options.
	MinVersionEndOfOptions = "2.30"
)

// Tool version command arguments.
const (
	// VersionFlagStandard is the standard version flag used by most tools.
	VersionFlagStandard = "--version"
)
