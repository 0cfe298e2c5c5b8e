// Package build implements fbuild's default action: resolve the version, publish
// the bump, build the requested target and optionally install it.
package build

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/fbuild/internal/core/config"
	"github.com/nightconcept/fbuild/internal/core/logging"
	"github.com/nightconcept/fbuild/internal/core/release"
	"github.com/nightconcept/fbuild/internal/core/runner"
	"github.com/nightconcept/fbuild/internal/core/toolchain"
	"github.com/nightconcept/fbuild/internal/core/vcs"
)

// newRunner is replaced in tests to record commands instead of executing them.
var newRunner = func(dir string, logger *slog.Logger) runner.Runner {
	return runner.NewExec(dir, logger)
}

// Flags returns the flags of the build action.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Value:   string(toolchain.DefaultTarget),
			Usage:   "Type of build to make (" + strings.Join(toolchain.TargetNames(), ", ") + ")",
		},
		&cli.StringFlag{
			Name:  "install",
			Usage: "Install the build to device `ID` after building",
		},
		&cli.BoolFlag{
			Name:    "no-commit",
			Aliases: []string{"n"},
			Usage:   "Do not commit and tag the updated build number",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to the fbuild config `FILE` (default: ./" + config.FileName + ")",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// BuildCmd returns the explicit "build" command. The same action runs when
// fbuild is invoked without a command.
func BuildCmd() *cli.Command {
	return &cli.Command{
		Name:   "build",
		Usage:  "Bump the build number, tag it and build the app (default command)",
		Flags:  Flags(),
		Action: Action,
	}
}

// Action runs the build pipeline.
func Action(c *cli.Context) error {
	startTime := time.Now()

	target, err := toolchain.ParseTarget(c.String("type"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: invalid value for --type: %v", err), 1)
	}
	bc := release.BuildConfig{
		Target:        target,
		InstallDevice: c.String("install"),
		NoCommit:      c.Bool("no-commit"),
	}

	errWriter := c.App.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	logger := logging.New(errWriter, c.Bool("verbose"))

	cfg, err := config.Load(".", c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	run := newRunner(cfg.Dir, logger)
	pipeline := &release.Pipeline{
		Config:    cfg,
		VCS:       vcs.New(cfg.Tools.Git, run),
		Toolchain: toolchain.New(cfg.Tools.Flutter, run),
		Logger:    logger,
	}

	result, err := pipeline.Run(c.Context, bc)
	if err != nil {
		return exitError(err)
	}

	printSummary(c.App.Writer, bc, result, time.Since(startTime))
	return nil
}

// exitError maps a pipeline failure to the process exit status. A tool that
// exited non-zero has already reported its own failure, so only its status is
// passed on.
func exitError(err error) error {
	var stepErr *release.StepError
	if errors.As(err, &stepErr) && (stepErr.Step == "build" || stepErr.Step == "install") {
		if code, ok := runner.ExitCode(err); ok && code > 0 {
			return cli.Exit("", code)
		}
	}
	return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
}

func printSummary(w io.Writer, bc release.BuildConfig, result *release.Result, elapsed time.Duration) {
	if w == nil {
		w = os.Stdout
	}
	_, _ = fmt.Fprintln(w)
	_, _ = color.New(color.FgWhite, color.Bold).Fprintln(w, "build:")
	_, _ = color.New(color.FgGreen).Fprintf(w, "+ %s v%s\n", bc.Target, result.Version)
	if bc.InstallDevice != "" {
		_, _ = color.New(color.FgGreen).Fprintf(w, "+ installed on %s\n", bc.InstallDevice)
	}
	for _, warning := range result.Warnings {
		_, _ = color.New(color.FgYellow).Fprintf(w, "! %v\n", warning)
	}
	for _, step := range result.Skipped {
		_, _ = color.New(color.FgYellow).Fprintf(w, "- %s skipped\n", step)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Done in %.1fs\n", elapsed.Seconds())
}
