package constants

// MaxGitCliLength is the budget, in bytes, for arguments or stdin batched into one git invocation.
const MaxGitCliLength = 30000

// StashUntrackedSuffix is the revision suffix used to probe the untracked-files
// parent of a stash commit. Some git versions report it as a bad revision.
const StashUntrackedSuffix = "^3"

// SafetyConfigs are prepended as -c pairs to every git invocation.
// quotepath=false keeps non-ASCII file names verbatim, color.ui=false keeps
// output parseable.
//
//nolint:gochecknoglobals // Immutable argument list
var SafetyConfigs = []string{
	"core.quotepath=false",
	"color.ui=false",
}

// WindowsConfigs are prepended on Windows only.
//
//nolint:gochecknoglobals // Immutable argument list
var WindowsConfigs = []string{
	"core.longpaths=true",
}

// SafetyEnv is layered over the inherited environment of every git process.
// It disables interactive credential prompts and pins the message locale so
// stderr stays matchable.
//
//nolint:gochecknoglobals // Immutable environment overrides
var SafetyEnv = map[string]string{
	"GCM_INTERACTIVE":     "NEVER",
	"GCM_PRESERVE_CREDS":  "TRUE",
	"GIT_TERMINAL_PROMPT": "0",
	"LC_ALL":              "C",
}
