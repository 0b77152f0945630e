// Package git runs git commands for gitpulse.
// This file implements the repository client on top of the Executor.
package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/ctxutil"
	gperrors "github.com/mrz1836/gitpulse/internal/errors"
	"github.com/mrz1836/gitpulse/internal/process"
)

// Client runs read-only queries against one repository.
type Client struct {
	exec *Executor
	dir  string
}

// NewClient creates a client for the repository at dir.
func NewClient(exec *Executor, dir string) (*Client, error) {
	if dir == "" {
		return nil, fmt.Errorf("repository directory cannot be empty: %w", gperrors.ErrEmptyValue)
	}
	return &Client{exec: exec, dir: dir}, nil
}

// Dir returns the repository directory.
func (c *Client) Dir() string {
	return c.dir
}

// Root returns the top-level directory of the working tree.
func (c *Client) Root(ctx context.Context) (string, error) {
	out, err := c.exec.Text(ctx, Request{Dir: c.dir, Args: []string{"rev-parse", "--show-toplevel"}})
	if err != nil {
		return "", fmt.Errorf("failed to find repository root: %w", err)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return "", fmt.Errorf("%s: %w", c.dir, gperrors.ErrNotGitRepo)
	}
	return root, nil
}

// Status returns the current working tree status. Outside a repository the
// status is empty rather than an error.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	args := []string{"status", "--porcelain", "-uall", "--branch"}
	if c.exec.IsAtLeastVersion(ctx, constants.MinVersionFindRenames) {
		args = append(args, "--find-renames")
	}

	output, err := c.exec.Text(ctx, Request{
		Dir:  c.dir,
		Args: args,
		// Status must not take the index lock while the user works in another tool.
		Env: map[string]string{"GIT_OPTIONAL_LOCKS": "0"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	return parseGitStatus(output), nil
}

// CurrentBranch returns the name of the currently checked out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := c.exec.Text(ctx, Request{Dir: c.dir, Args: []string{"rev-parse", "--abbrev-ref", "HEAD"}})
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}

	branch := strings.TrimSpace(output)
	if branch == "HEAD" {
		return "", fmt.Errorf("repository is in detached HEAD state: %w", gperrors.ErrGitOperation)
	}
	return branch, nil
}

// BranchExists checks if a local branch exists.
func (c *Client) BranchExists(ctx context.Context, name string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	code, err := c.exec.ExitCode(ctx, Request{
		Dir:  c.dir,
		Args: []string{"show-ref", "--verify", "--quiet", "refs/heads/" + name},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check branch existence: %w", err)
	}
	return exitCodeBool("show-ref", code)
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (c *Client) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	code, err := c.exec.ExitCode(ctx, Request{
		Dir:  c.dir,
		Args: []string{"merge-base", "--is-ancestor", ancestor, descendant},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check ancestry: %w", err)
	}
	return exitCodeBool("merge-base", code)
}

// exitCodeBool maps the 0/1 convention of predicate commands to a bool.
func exitCodeBool(subcommand string, code int) (bool, error) {
	switch code {
	case 0:
		return true, nil
	case 1:
		return false, nil
	default:
		return false, fmt.Errorf("git %s exited with code %s: %w", subcommand, strconv.Itoa(code), gperrors.ErrGitOperation)
	}
}

// RevParseVerify resolves ref to an object id. ok is false when the ref does
// not exist.
func (c *Client) RevParseVerify(ctx context.Context, ref string) (sha string, ok bool, err error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", false, err
	}

	args := []string{"rev-parse", "--verify"}
	if c.exec.IsAtLeastVersion(ctx, constants.MinVersionEndOfOptions) {
		args = append(args, "--end-of-options")
	}
	args = append(args, ref)

	output, err := c.exec.Text(ctx, Request{Dir: c.dir, Args: args, Errors: ErrorsIgnore})
	if err != nil {
		return "", false, fmt.Errorf("failed to verify %s: %w", ref, err)
	}

	sha = strings.TrimSpace(output)
	return sha, sha != "", nil
}

// Show returns the raw contents of path at ref.
func (c *Client) Show(ctx context.Context, ref, path string) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	out, err := c.exec.Execute(ctx, Request{
		Dir:      c.dir,
		Args:     []string{"show", "--textconv", ref + ":./" + path},
		Encoding: process.EncodingBinary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to show %s:%s: %w", ref, path, err)
	}
	return out.Bytes, nil
}

// CheckIgnore returns the subset of paths that git ignores.
func (c *Client) CheckIgnore(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	output, err := c.exec.Text(ctx, Request{
		Dir:    c.dir,
		Args:   []string{"check-ignore", "-z", "--stdin"},
		Stdin:  []byte(strings.Join(paths, "\x00")),
		Errors: ErrorsIgnore,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check ignored paths: %w", err)
	}

	var ignored []string
	for _, p := range strings.Split(output, "\x00") {
		if p != "" {
			ignored = append(ignored, p)
		}
	}
	return ignored, nil
}

// parseGitStatus parses git status --porcelain --branch output.
func parseGitStatus(output string) *Status {
	status := &Status{
		Staged:     []FileChange{},
		Unstaged:   []FileChange{},
		Untracked:  []string{},
		Conflicted: []string{},
	}

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 2 {
			continue
		}

		// Parse branch line: ## branch...origin/branch [ahead N, behind M]
		if strings.HasPrefix(line, "## ") {
			parseBranchLine(line, status)
			continue
		}

		if len(line) < 4 {
			continue
		}

		// XY PATH or XY ORIG -> PATH (for renames)
		indexStatus := line[0]
		workTreeStatus := line[1]
		path := strings.TrimSpace(line[3:])

		var oldPath string
		if before, after, found := strings.Cut(path, " -> "); found {
			oldPath = before
			path = after
		}

		if indexStatus == '?' && workTreeStatus == '?' {
			status.Untracked = append(status.Untracked, path)
			continue
		}
		if _, ok := unmergedPairs[line[:2]]; ok {
			status.Conflicted = append(status.Conflicted, path)
			continue
		}

		if indexStatus != ' ' && indexStatus != '?' {
			status.Staged = append(status.Staged, FileChange{
				Path:    path,
				Status:  ChangeType(string(indexStatus)),
				OldPath: oldPath,
			})
		}

		if workTreeStatus != ' ' && workTreeStatus != '?' {
			status.Unstaged = append(status.Unstaged, FileChange{
				Path:    path,
				Status:  ChangeType(string(workTreeStatus)),
				OldPath: oldPath,
			})
		}
	}

	return status
}

// parseBranchLine parses the branch line from git status --porcelain --branch.
// Format: ## branch...origin/branch [ahead N, behind M]
func parseBranchLine(line string, status *Status) {
	line = strings.TrimPrefix(line, "## ")
	line = strings.TrimPrefix(line, "No commits yet on ")

	parts := strings.SplitN(line, "...", 2)
	status.Branch = parts[0]

	if len(parts) < 2 {
		return
	}

	remotePart := parts[1]
	bracketStart := strings.Index(remotePart, " [")
	if bracketStart == -1 {
		status.Upstream = remotePart
		return
	}
	status.Upstream = remotePart[:bracketStart]

	// Verify string ends with "]" and has enough length for slice
	if len(remotePart) < bracketStart+4 || remotePart[len(remotePart)-1] != ']' {
		return
	}

	info := remotePart[bracketStart+2 : len(remotePart)-1]
	status.Ahead = parseAheadBehind(info, "ahead ")
	status.Behind = parseAheadBehind(info, "behind ")
}

// parseAheadBehind extracts the count from "ahead N" or "behind N" in the info string.
func parseAheadBehind(info, prefix string) int {
	idx := strings.Index(info, prefix)
	if idx == -1 {
		return 0
	}

	numStr := info[idx+len(prefix):]
	if commaIdx := strings.Index(numStr, ","); commaIdx != -1 {
		numStr = numStr[:commaIdx]
	}

	n, err := strconv.Atoi(strings.TrimSpace(numStr))
	if err != nil {
		return 0
	}
	return n
}
