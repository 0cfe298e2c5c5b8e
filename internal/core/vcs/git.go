// Package vcs wraps the git commands used to derive and publish build numbers.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nightconcept/fbuild/internal/core/runner"
)

// ErrNoCommits is returned when the repository has no commit to read.
var ErrNoCommits = errors.New("repository has no commits")

// Git runs git through a Runner. The Runner decides the working directory.
type Git struct {
	Bin    string
	Runner runner.Runner
}

// New returns a Git using bin (defaults to "git").
func New(bin string, r runner.Runner) *Git {
	if bin == "" {
		bin = "git"
	}
	return &Git{Bin: bin, Runner: r}
}

// LastCommitSubject returns the subject of HEAD as printed by `git log -1 --oneline`,
// without the abbreviated hash. Ref decorations and colour are turned off so a
// user's log.decorate or color.ui setting cannot change the subject text.
func (g *Git) LastCommitSubject(ctx context.Context) (string, error) {
	out, err := g.Runner.Output(ctx, g.Bin, "log", "-1", "--oneline", "--no-decorate", "--no-color")
	if err != nil {
		return "", fmt.Errorf("reading last commit: %w", err)
	}
	line := strings.TrimSpace(string(out))
	if line == "" {
		return "", fmt.Errorf("reading last commit: %w", ErrNoCommits)
	}
	line, _, _ = strings.Cut(line, "\n")
	_, subject, _ := strings.Cut(line, " ")
	return subject, nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (g *Git) CommitCount(ctx context.Context) (int, error) {
	out, err := g.Runner.Output(ctx, g.Bin, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, fmt.Errorf("counting commits: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("counting commits: unexpected output %q: %w", strings.TrimSpace(string(out)), err)
	}
	if n < 0 {
		return 0, fmt.Errorf("counting commits: negative count %d", n)
	}
	return n, nil
}

// Commit commits path alone with message.
func (g *Git) Commit(ctx context.Context, message, path string) error {
	if err := g.Runner.Run(ctx, g.Bin, "commit", "-m", message, path); err != nil {
		return fmt.Errorf("committing %s: %w", path, err)
	}
	return nil
}

// Tag creates a lightweight tag at HEAD.
func (g *Git) Tag(ctx context.Context, name string) error {
	if err := g.Runner.Run(ctx, g.Bin, "tag", name); err != nil {
		return fmt.Errorf("tagging %s: %w", name, err)
	}
	return nil
}
