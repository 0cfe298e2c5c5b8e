// Package self implements 'fbuild self update', replacing the running binary
// with the latest GitHub release.
package self

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/fbuild/internal/core/logging"
)

// DefaultRepoSlug is the GitHub repository releases are fetched from.
const DefaultRepoSlug = "nightconcept/fbuild"

// SelfCmd returns the 'self' command group.
func SelfCmd() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the fbuild binary itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update fbuild to the latest release",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip the confirmation prompt",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Only report whether an update is available",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "GitHub release source as `OWNER/REPO`",
						Value: DefaultRepoSlug,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
				Action: updateAction,
			},
		},
	}
}

func updateAction(c *cli.Context) error {
	out := c.App.Writer
	if out == nil {
		out = os.Stdout
	}
	logger := logging.New(c.App.ErrWriter, c.Bool("verbose"))

	current, err := ParseVersion(c.App.Version)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	logger.Debug("current version", "version", current.String())

	repoSlug, err := RepoSlug(c.String("source"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	logger.Debug("release source", "repo", repoSlug)

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating GitHub source: %v", err), 1)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error initializing updater: %v", err), 1)
	}

	latest, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error detecting latest version: %v", err), 1)
	}
	if !found || !latest.GreaterThan(current.String()) {
		_, _ = fmt.Fprintf(out, "fbuild %s is up to date.\n", c.App.Version)
		return nil
	}
	logger.Debug("latest release", "version", latest.Version(), "url", latest.URL, "asset", latest.AssetURL)

	_, _ = fmt.Fprintf(out, "New version available: %s (current: %s)\n", latest.Version(), c.App.Version)
	if c.Bool("check") {
		return nil
	}

	proceed, err := confirm(os.Stdin, out, c.Bool("yes"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if !proceed {
		_, _ = fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error locating executable: %v", err), 1)
	}
	if err := updater.UpdateTo(c.Context, latest, execPath); err != nil {
		return cli.Exit(fmt.Sprintf("Error updating: %v", err), 1)
	}

	_, _ = fmt.Fprintf(out, "Updated fbuild to %s.\n", latest.Version())
	return nil
}

// ParseVersion parses the running binary's version, with or without a "v" prefix.
// Development builds ("dev") cannot be compared and are rejected.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return nil, fmt.Errorf("current version %q is not a release version: %w", s, err)
	}
	return v, nil
}

// RepoSlug validates an OWNER/REPO source, defaulting to DefaultRepoSlug.
func RepoSlug(source string) (string, error) {
	if source == "" {
		return DefaultRepoSlug, nil
	}
	owner, repo, ok := strings.Cut(source, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("invalid --source %q, expected OWNER/REPO", source)
	}
	return source, nil
}

func confirm(in io.Reader, out io.Writer, autoConfirm bool) (bool, error) {
	if autoConfirm {
		return true, nil
	}
	_, _ = fmt.Fprint(out, "Do you want to update? (y/N): ")
	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(input), "y"), nil
}
