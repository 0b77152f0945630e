package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/gitpulse/internal/ctxutil"
	"github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/git"
	"github.com/mrz1836/gitpulse/internal/process"
)

// ExecFlags holds flags specific to the exec command.
type ExecFlags struct {
	// Dir is the working directory for the command.
	Dir string
	// Errors is the error policy: default, throw, or ignore.
	Errors string
	// Encoding is the output encoding.
	Encoding string
	// CorrelationKey keeps otherwise identical commands apart.
	CorrelationKey string
	// ExitCodeOnly reports the exit code instead of output.
	ExitCodeOnly bool
	// Configs are extra -c key=value pairs for this command.
	Configs []string
	// Stdin forwards standard input to git.
	Stdin bool
}

// execResult is the JSON shape of an exec run.
type execResult struct {
	Dir      string   `json:"dir"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exit_code"`
	Text     string   `json:"text,omitempty"`
	Bytes    []byte   `json:"bytes,omitempty"`
}

// AddExecCommand adds the exec command to the root command.
func AddExecCommand(root *cobra.Command, a *app) {
	flags := &ExecFlags{}
	root.AddCommand(newExecCmd(a, flags))
}

func newExecCmd(a *app, flags *ExecFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec [flags] -- <git args>",
		Short: "Run a git command through the execution engine",
		Long: `Run a git command with safety flags, error classification, and
version detection applied.

Error policies:
  default  expected failures (no upstream, no commits yet, ...) print nothing
  throw    every non-zero exit is an error
  ignore   every non-zero exit prints nothing

Examples:
  gitpulse exec -- status --porcelain=v2
  gitpulse exec --errors ignore -- rev-parse --verify HEAD
  gitpulse exec --exit-code -- merge-base --is-ancestor main HEAD
  gitpulse exec --encoding binary -- show HEAD:logo.png > logo.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var stdin io.Reader
			if flags.Stdin {
				stdin = cmd.InOrStdin()
			}
			return runExec(cmd.Context(), a, cmd.OutOrStdout(), stdin, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.Dir, "dir", "C", ".", "working directory")
	cmd.Flags().StringVar(&flags.Errors, "errors", git.ErrorsDefault.String(), "error policy (default|throw|ignore)")
	cmd.Flags().StringVar(&flags.Encoding, "encoding", process.EncodingUTF8, "output encoding (utf8, binary, or an encoding label)")
	cmd.Flags().StringVar(&flags.CorrelationKey, "correlation-key", "", "keep this command apart from identical in-flight commands")
	cmd.Flags().BoolVar(&flags.ExitCodeOnly, "exit-code", false, "print the exit code instead of output")
	cmd.Flags().StringArrayVarP(&flags.Configs, "config", "c", nil, "extra git config as key=value")
	cmd.Flags().BoolVar(&flags.Stdin, "stdin", false, "forward standard input to git")

	return cmd
}

func runExec(ctx context.Context, a *app, w io.Writer, stdin io.Reader, flags *ExecFlags, args []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	policy, ok := git.ParseErrorPolicy(flags.Errors)
	if !ok {
		return errors.NewExitCode2Error(fmt.Errorf("%w: --errors %q must be default, throw, or ignore", errors.ErrInvalidArgument, flags.Errors))
	}
	if err := process.ValidateEncoding(flags.Encoding); err != nil {
		return errors.NewExitCode2Error(err)
	}

	req := git.Request{
		Dir:            flags.Dir,
		Args:           args,
		Encoding:       flags.Encoding,
		Errors:         policy,
		CorrelationKey: flags.CorrelationKey,
		ExitCodeOnly:   flags.ExitCodeOnly,
		Configs:        flags.Configs,
	}
	if stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return errors.Wrap(err, "failed to read standard input")
		}
		req.Stdin = data
	}

	exec := a.executor(GetLogger())
	out, err := exec.Execute(ctx, req)
	if err != nil {
		return err
	}

	if a.flags.Output == OutputJSON {
		res := execResult{Dir: flags.Dir, Args: args, ExitCode: out.ExitCode}
		if process.IsBinary(flags.Encoding) {
			res.Bytes = out.Bytes
		} else {
			res.Text = out.Text
		}
		return encodeJSONIndented(w, res)
	}

	switch {
	case flags.ExitCodeOnly:
		_, err = fmt.Fprintln(w, out.ExitCode)
	case process.IsBinary(flags.Encoding):
		_, err = w.Write(out.Bytes)
	default:
		_, err = io.WriteString(w, out.Text)
	}
	return err
}
