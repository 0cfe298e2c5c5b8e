// Package show implements the 'show' command, a read-only report of the version
// the next build would use.
package show

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/fbuild/internal/core/config"
	"github.com/nightconcept/fbuild/internal/core/logging"
	"github.com/nightconcept/fbuild/internal/core/runner"
	"github.com/nightconcept/fbuild/internal/core/vcs"
	"github.com/nightconcept/fbuild/internal/core/version"
)

var newRunner = func(dir string, logger *slog.Logger) runner.Runner {
	return runner.NewExec(dir, logger)
}

// ShowCmd returns the 'show' command.
func ShowCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the manifest version and the version the next build would use",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the fbuild config `FILE`",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Action: func(c *cli.Context) error {
			errWriter := c.App.ErrWriter
			if errWriter == nil {
				errWriter = os.Stderr
			}
			logger := logging.New(errWriter, c.Bool("verbose"))

			cfg, err := config.Load(".", c.String("config"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			resolver := &version.Resolver{
				History:      vcs.New(cfg.Tools.Git, newRunner(cfg.Dir, logger)),
				ManifestPath: cfg.ManifestPath(),
				Marker:       cfg.Marker,
				Logger:       logger,
			}
			res, err := resolver.Plan(c.Context)
			if err != nil {
				return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
			}

			printPlan(c.App.Writer, cfg, res)
			return nil
		},
	}
}

func printPlan(w io.Writer, cfg *config.Config, res *version.Resolution) {
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintf(w, "Manifest:     %s\n", cfg.ManifestPath())
	_, _ = fmt.Fprintf(w, "Version:      %s\n", res.Previous)
	_, _ = fmt.Fprintf(w, "Last commit:  %s\n", res.LastSubject)
	if !res.NeedsCommit {
		_, _ = color.New(color.FgGreen).Fprintf(w, "Next build:   %s (last commit is a version bump)\n", res.Version)
		return
	}
	_, _ = fmt.Fprintf(w, "Commits:      %d\n", res.CommitCount)
	_, _ = color.New(color.FgYellow).Fprintf(w, "Next build:   %s (new build number, tag %s)\n", res.Version, cfg.TagName(res.Version))
}
