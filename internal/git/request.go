// Package git runs git commands for gitpulse.
// This file defines the request and output types of the execution engine.
package git

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// ErrorPolicy decides what a caller sees when git exits with a non-zero status.
type ErrorPolicy int

const (
	// ErrorsDefault routes failures through the ErrorClassifier: known benign
	// conditions become empty output, everything else is returned as a *CommandError.
	ErrorsDefault ErrorPolicy = iota

	// ErrorsThrow returns the raw *process.ExitError unchanged.
	ErrorsThrow

	// ErrorsIgnore turns any non-zero exit into empty output.
	ErrorsIgnore
)

// String returns the policy name used in flags and logs.
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorsThrow:
		return "throw"
	case ErrorsIgnore:
		return "ignore"
	case ErrorsDefault:
		return "default"
	default:
		return "default"
	}
}

// ParseErrorPolicy converts a policy name to an ErrorPolicy.
func ParseErrorPolicy(s string) (ErrorPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ErrorsDefault, true
	case "throw":
		return ErrorsThrow, true
	case "ignore":
		return ErrorsIgnore, true
	default:
		return ErrorsDefault, false
	}
}

// Request describes one git invocation.
type Request struct {
	// Dir is the working directory, usually the repository root.
	Dir string

	// Args are the git arguments, starting with the subcommand.
	Args []string

	// Stdin is written to git's standard input when non-nil.
	Stdin []byte

	// Encoding selects output decoding: "utf8" (default), "binary" or a WHATWG label.
	Encoding string

	// Errors is the failure policy.
	Errors ErrorPolicy

	// Env holds extra environment variables for this call.
	Env map[string]string

	// CorrelationKey keeps otherwise identical requests from sharing one process.
	CorrelationKey string

	// ExitCodeOnly returns the exit status instead of output. A non-zero exit
	// is not a failure in this mode.
	ExitCodeOnly bool

	// Configs are extra key=value pairs passed as -c options after the safety configs.
	Configs []string
}

// Key returns the deduplication identity of the request. Requests with equal
// keys issued while one is running share a single git process. Every field is
// tagged and quoted, so argument boundaries survive: "a b" and "a", "b" never
// collide. Stdin takes part through its digest so batched check-ignore calls
// never collapse. Policy, encoding and ExitCodeOnly are left out since each
// waiter derives its own outcome from the shared process result.
func (r Request) Key() string {
	var sb strings.Builder
	field := func(tag, value string) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tag)
		sb.WriteByte('=')
		sb.WriteString(strconv.Quote(value))
	}

	if r.CorrelationKey != "" {
		field("ck", r.CorrelationKey)
	}
	field("dir", r.Dir)
	for _, cfg := range r.Configs {
		field("cfg", cfg)
	}
	for _, arg := range r.Args {
		field("arg", arg)
	}
	if r.Stdin != nil {
		sum := sha256.Sum256(r.Stdin)
		field("stdin", hex.EncodeToString(sum[:]))
	}
	return sb.String()
}

// Output is the result of a successful request. A failure swallowed by policy
// yields an Output whose fields are all empty.
type Output struct {
	// Text is stdout decoded with the requested encoding. Empty for binary requests.
	Text string

	// Bytes is the raw stdout.
	Bytes []byte

	// ExitCode is set for ExitCodeOnly requests.
	ExitCode int
}

// IsEmpty reports whether git produced no output.
func (o *Output) IsEmpty() bool {
	return o == nil || (len(o.Bytes) == 0 && o.Text == "")
}
