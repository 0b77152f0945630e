package errors

import "errors"

// ErrorInfo is the text shown to a person for a failed command.
type ErrorInfo struct {
	Message string
	Action  string // Empty when there is nothing to suggest
}

// userHints is searched in order with errors.Is, so more specific sentinels
// must come before the ones they wrap.
//
//nolint:gochecknoglobals // Immutable lookup table
var userHints = []struct {
	target error
	info   ErrorInfo
}{
	{ErrGitNotFound, ErrorInfo{
		"Git could not be found.",
		"Install git or set git.path in ~/.gitpulse/config.yaml.",
	}},
	{ErrVersionUnknown, ErrorInfo{
		"Git did not report a usable version.",
		"Run `git --version` to confirm the configured git.path works.",
	}},
	{ErrSpawnFailed, ErrorInfo{
		"The git process could not be started.",
		"Check that git.path points to an executable and the working directory exists.",
	}},
	{ErrNotGitRepo, ErrorInfo{
		"The directory is not inside a git repository.",
		"Run the command from a repository or pass --repo.",
	}},
	{ErrUnsupportedEncoding, ErrorInfo{
		"The requested output encoding is not supported.",
		"Use utf8, binary, or a WHATWG encoding label such as latin1.",
	}},
	{ErrInvalidOutputFormat, ErrorInfo{
		"Invalid output format.",
		"Use --output text or --output json.",
	}},
	{ErrConfigInvalidWatch, ErrorInfo{
		"The watch configuration is invalid.",
		"Check watch.repository_debounce and watch.file_system_debounce.",
	}},
	{ErrConfigInvalidGit, ErrorInfo{
		"The git configuration is invalid.",
		"Check git.extra_configs entries use key=value form.",
	}},
}

func lookupHint(err error) ErrorInfo {
	for _, h := range userHints {
		if errors.Is(err, h.target) {
			return h.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a readable message for err, falling back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return lookupHint(err).Message
}

// Actionable is UserMessage plus a suggested fix, which may be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := lookupHint(err)
	return info.Message, info.Action
}
