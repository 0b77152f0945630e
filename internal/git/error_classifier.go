// Package git runs git commands for gitpulse.
// This file contains the failure classification tables.
package git

import (
	"regexp"
	"strings"

	"github.com/mrz1836/gitpulse/internal/constants"
)

// ErrorType represents the category of a git failure that was not benign.
type ErrorType int

const (
	// ErrorTypeUnknown indicates the error could not be classified.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeAuth indicates an authentication error.
	ErrorTypeAuth
	// ErrorTypeNetwork indicates a network connectivity error.
	ErrorTypeNetwork
	// ErrorTypeNotFound indicates a resource not found error.
	ErrorTypeNotFound
	// ErrorTypeNonFastForward indicates a non-fast-forward rejection.
	ErrorTypeNonFastForward
	// ErrorTypeLock indicates another git process holds a repository lock.
	ErrorTypeLock
)

// String returns a human-readable name for the error type.
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeUnknown:
		return "unknown"
	case ErrorTypeAuth:
		return "authentication"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeNonFastForward:
		return "non_fast_forward"
	case ErrorTypeLock:
		return "lock"
	default:
		return "unknown"
	}
}

// PatternMatcher checks if a string contains any of a list of patterns.
// It performs case-insensitive matching on the lowercased input.
type PatternMatcher struct {
	patterns []string
}

// NewPatternMatcher creates a new PatternMatcher with the given patterns.
// All patterns should be lowercase for consistent matching.
func NewPatternMatcher(patterns ...string) *PatternMatcher {
	return &PatternMatcher{patterns: patterns}
}

// MatchesLower checks if an already-lowercased string matches any pattern.
func (m *PatternMatcher) MatchesLower(lower string) bool {
	for _, pattern := range m.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// BenignRule is one entry of the benign failure table.
type BenignRule struct {
	Name    string
	Pattern *regexp.Regexp
}

// defaultBenignRules lists git failures that mean "no data" rather than "error".
// git's stderr wording is not a stable interface; this table is the single
// place that tracks it and is matched in order.
//
//nolint:gochecknoglobals // Package-level immutable table
var defaultBenignRules = []BenignRule{
	{"not_a_repository", regexp.MustCompile(`(?i)Not a git repository`)},
	{"outside_repository", regexp.MustCompile(`(?i)is outside repository`)},
	{"no_path", regexp.MustCompile(`(?i)no such path`)},
	{"no_commits", regexp.MustCompile(`(?i)does not have any commits`)},
	{"path_not_found", regexp.MustCompile(`(?i)Path '.*?' does not exist in`)},
	{"path_not_in_revision", regexp.MustCompile(`(?i)Path '.*?' exists on disk, but not in`)},
	{"head_not_a_branch", regexp.MustCompile(`(?i)HEAD does not point to a branch`)},
	{"no_upstream", regexp.MustCompile(`(?i)no upstream configured for branch '(.*?)'`)},
	{"unknown_revision", regexp.MustCompile(`(?i)ambiguous argument '.*?': unknown revision or path not in the working tree|not stored as a remote-tracking branch`)},
	{"must_run_in_work_tree", regexp.MustCompile(`(?i)this operation must be run in a work tree`)},
	{"patch_with_conflicts", regexp.MustCompile(`(?i)Applied patch to '.*?' with conflicts`)},
	{"no_remote_specified", regexp.MustCompile(`(?i)No remote repository specified\.`)},
	{"remote_connection", regexp.MustCompile(`(?i)Could not read from remote repository`)},
	{"not_a_git_command", regexp.MustCompile(`(?i)'.+' is not a git command`)},
}

// badRevisionPattern captures the revision git refused.
var badRevisionPattern = regexp.MustCompile(`(?i)bad revision '(.*?)'`) //nolint:gochecknoglobals // Compiled once

// Fatal category matchers.
//
//nolint:gochecknoglobals // Package-level immutable pattern matchers for performance
var (
	authPatterns = NewPatternMatcher(
		"authentication failed",
		"could not read username",
		"could not read password",
		"permission denied",
		"invalid username or password",
		"access denied",
		"authentication required",
		"terminal prompts disabled",
	)

	networkPatterns = NewPatternMatcher(
		"could not resolve host",
		"connection refused",
		"network is unreachable",
		"connection timed out",
		"operation timed out",
		"unable to access",
		"no route to host",
		"failed to connect",
		"timeout",
	)

	lockPatterns = NewPatternMatcher(
		"index.lock",
		".lock': file exists",
		"another git process seems to be running",
		"unable to create '",
	)

	nonFastForwardPatterns = NewPatternMatcher(
		"non-fast-forward",
		"failed to push some refs",
		"updates were rejected",
		"fetch first",
		"tip of your current branch is behind",
	)

	notFoundPatterns = NewPatternMatcher(
		"not found",
		"no such",
		"does not exist",
		"not a valid object name",
		"bad revision",
		"no merge base",
	)
)

// Classification is the verdict for one failure message.
type Classification struct {
	// Benign is true when the failure is an expected condition.
	Benign bool

	// Rule names the benign rule that matched.
	Rule string

	// Category is set for fatal failures.
	Category ErrorType
}

// ErrorClassifier decides whether a git failure is benign or fatal.
type ErrorClassifier struct {
	benign         []BenignRule
	auth           *PatternMatcher
	network        *PatternMatcher
	lock           *PatternMatcher
	nonFastForward *PatternMatcher
	notFound       *PatternMatcher
}

// NewErrorClassifier creates a classifier with the standard tables. Extra
// benign rules are appended after the built-in ones.
func NewErrorClassifier(extra ...BenignRule) *ErrorClassifier {
	rules := make([]BenignRule, 0, len(defaultBenignRules)+len(extra))
	rules = append(rules, defaultBenignRules...)
	rules = append(rules, extra...)
	return &ErrorClassifier{
		benign:         rules,
		auth:           authPatterns,
		network:        networkPatterns,
		lock:           lockPatterns,
		nonFastForward: nonFastForwardPatterns,
		notFound:       notFoundPatterns,
	}
}

// defaultClassifier is the package-level classifier using standard tables.
//
//nolint:gochecknoglobals // Singleton classifier for package use
var defaultClassifier = NewErrorClassifier()

// ClassifyError classifies msg with the standard tables.
func ClassifyError(msg string) Classification {
	return defaultClassifier.Classify(msg)
}

// Classify tests msg against the benign table first, then the bad revision
// rule, and finally assigns a fatal category.
func (c *ErrorClassifier) Classify(msg string) Classification {
	if msg != "" {
		for _, rule := range c.benign {
			if rule.Pattern.MatchString(msg) {
				return Classification{Benign: true, Rule: rule.Name}
			}
		}

		// Probing the untracked-files parent of a stash fails on some git versions.
		if m := badRevisionPattern.FindStringSubmatch(msg); m != nil && strings.HasSuffix(m[1], constants.StashUntrackedSuffix) {
			return Classification{Benign: true, Rule: "stash_untracked_revision"}
		}
	}

	return Classification{Category: c.category(strings.ToLower(msg))}
}

// category performs fatal classification on an already-lowercased string.
// Order matters: more specific patterns first.
func (c *ErrorClassifier) category(lower string) ErrorType {
	switch {
	case c.lock.MatchesLower(lower):
		return ErrorTypeLock
	case c.auth.MatchesLower(lower):
		return ErrorTypeAuth
	case c.network.MatchesLower(lower):
		return ErrorTypeNetwork
	case c.nonFastForward.MatchesLower(lower):
		return ErrorTypeNonFastForward
	case c.notFound.MatchesLower(lower):
		return ErrorTypeNotFound
	default:
		return ErrorTypeUnknown
	}
}
