package git

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mrz1836/gitpulse/internal/constants"
	"github.com/mrz1836/gitpulse/internal/ctxutil"
	gperrors "github.com/mrz1836/gitpulse/internal/errors"
)

// maxVersionSegments is the number of version segments compared (major.minor.patch).
const maxVersionSegments = 3

var gitVersionRe = regexp.MustCompile(`git version (\d+\.\d+(?:\.\d+)?)`) //nolint:gochecknoglobals // Compiled once

// Locator resolves the git executable path.
type Locator func() (string, error)

// PathLocator returns a Locator for a configured path. An empty path searches PATH.
func PathLocator(configured string) Locator {
	return func() (string, error) {
		name := configured
		if name == "" {
			name = constants.ToolGit
		}
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, gperrors.ErrGitNotFound)
		}
		return path, nil
	}
}

// versionProbe runs `git --version` with the resolved path.
type versionProbe func(ctx context.Context, path string) (string, error)

type gitLocation struct {
	path    string
	version string
}

// VersionGate caches the git path and version for an Executor. It is
// populated once, by the first caller that needs it, and cleared by Reset.
type VersionGate struct {
	group  singleflight.Group
	locate Locator
	probe  versionProbe
	logger zerolog.Logger

	mu         sync.RWMutex
	cached     *gitLocation
	generation uint64
}

func newVersionGate(locate Locator, probe versionProbe, logger zerolog.Logger) *VersionGate {
	return &VersionGate{locate: locate, probe: probe, logger: logger}
}

// Path returns the resolved git executable path.
func (g *VersionGate) Path(ctx context.Context) (string, error) {
	loc, err := g.resolve(ctx)
	if err != nil {
		return "", err
	}
	return loc.path, nil
}

// Version returns the installed git version, e.g. "2.43.0".
func (g *VersionGate) Version(ctx context.Context) (string, error) {
	loc, err := g.resolve(ctx)
	if err != nil {
		return "", err
	}
	return loc.version, nil
}

// IsAtLeastVersion reports whether the installed git is at least minimum.
// It never fails: when the version cannot be resolved the answer is false, so
// version-gated flags are simply left out.
func (g *VersionGate) IsAtLeastVersion(ctx context.Context, minimum string) bool {
	version, err := g.Version(ctx)
	if err != nil {
		g.logger.Debug().Err(err).Str("minimum", minimum).Msg("git version unavailable, skipping gated feature")
		return false
	}
	return CompareVersions(version, minimum) >= 0
}

// Reset clears the cached path and version. A resolution already running
// when Reset is called does not repopulate the cache.
func (g *VersionGate) Reset() {
	g.mu.Lock()
	g.cached = nil
	g.generation++
	g.mu.Unlock()
	g.group.Forget(constants.ToolGit)
}

func (g *VersionGate) resolve(ctx context.Context) (gitLocation, error) {
	g.mu.RLock()
	cached, gen := g.cached, g.generation
	g.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	ch := g.group.DoChan(constants.ToolGit, func() (any, error) {
		// Shared by every concurrent caller, so one caller's cancellation must not fail the rest.
		loc, err := g.lookup(ctxutil.Detach(ctx))
		if err != nil {
			return nil, err
		}

		g.mu.Lock()
		if g.generation == gen {
			g.cached = &loc
		}
		g.mu.Unlock()

		g.logger.Debug().Str("path", loc.path).Str("version", loc.version).Msg("resolved git")
		return loc, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return gitLocation{}, res.Err
		}
		return res.Val.(gitLocation), nil
	case <-ctx.Done():
		return gitLocation{}, ctx.Err()
	}
}

func (g *VersionGate) lookup(ctx context.Context) (gitLocation, error) {
	path, err := g.locate()
	if err != nil {
		return gitLocation{}, err
	}

	out, err := g.probe(ctx, path)
	if err != nil {
		return gitLocation{}, fmt.Errorf("failed to run %s %s: %w", path, constants.VersionFlagStandard, err)
	}

	version := ParseGitVersion(out)
	if version == "" {
		return gitLocation{}, fmt.Errorf("%q: %w", strings.TrimSpace(out), gperrors.ErrVersionUnknown)
	}
	return gitLocation{path: path, version: version}, nil
}

// ParseGitVersion parses "git version 2.39.3 (Apple Git-145)" → "2.39.3".
func ParseGitVersion(output string) string {
	if matches := gitVersionRe.FindStringSubmatch(output); len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// CompareVersions compares two semantic version strings numerically.
// Returns -1 if current < required, 0 if equal, 1 if current > required.
// Missing segments count as zero, so "2.30" equals "2.30.0".
func CompareVersions(current, required string) int {
	current = strings.TrimPrefix(current, "v")
	required = strings.TrimPrefix(required, "v")

	currentParts := parseVersionParts(current)
	requiredParts := parseVersionParts(required)

	for i := 0; i < maxVersionSegments; i++ {
		if currentParts[i] < requiredParts[i] {
			return -1
		}
		if currentParts[i] > requiredParts[i] {
			return 1
		}
	}

	return 0
}

// parseVersionParts parses a version string into [major, minor, patch].
func parseVersionParts(version string) [maxVersionSegments]int {
	var parts [maxVersionSegments]int
	segments := strings.Split(version, ".")

	for i := 0; i < len(segments) && i < maxVersionSegments; i++ {
		// Extract only numeric portion (handle formats like "2.40.0-rc1")
		numStr := segments[i]
		for j, c := range numStr {
			if c < '0' || c > '9' {
				numStr = numStr[:j]
				break
			}
		}
		if numStr != "" {
			parts[i], _ = strconv.Atoi(numStr)
		}
	}

	return parts
}
