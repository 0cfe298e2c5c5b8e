// Package release runs the build pipeline: resolve version, commit and tag the
// bump, build, install. Each step has an explicit strict flag; a failing strict
// step ends the run, a failing best-effort step is logged and skipped.
package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nightconcept/fbuild/internal/core/config"
	"github.com/nightconcept/fbuild/internal/core/toolchain"
	"github.com/nightconcept/fbuild/internal/core/version"
)

// BuildConfig is the per-run selection made on the command line.
type BuildConfig struct {
	Target toolchain.Target
	// InstallDevice is the device id to install to; empty skips installation.
	InstallDevice string
	// NoCommit skips the commit and tag steps. The manifest is still updated.
	NoCommit bool
}

// VCS is the version-control surface the pipeline needs.
type VCS interface {
	version.History
	Commit(ctx context.Context, message, path string) error
	Tag(ctx context.Context, name string) error
}

// Toolchain builds and installs artifacts.
type Toolchain interface {
	Build(ctx context.Context, target toolchain.Target) error
	Install(ctx context.Context, device string) error
}

// Step is one pipeline stage.
type Step struct {
	Name   string
	Strict bool
	Run    func(ctx context.Context) error
}

// ErrSkipped is returned by a step that chose not to run. Skipped steps are
// neither completed nor warnings.
var ErrSkipped = errors.New("step skipped")

// StepError reports the strict step that ended a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result summarizes a run.
type Result struct {
	Version     string
	NeedsCommit bool
	// Completed lists the steps that ran successfully, in order.
	Completed []string
	// Warnings holds the errors of best-effort steps that failed.
	Warnings []error
	// Skipped lists the steps that returned ErrSkipped.
	Skipped []string
}

// Pipeline wires the collaborators of one project.
type Pipeline struct {
	Config    *config.Config
	VCS       VCS
	Toolchain Toolchain
	Logger    *slog.Logger
}

// Steps returns the steps for bc in execution order. The resolution result is
// shared through res, filled by the first step.
func (p *Pipeline) Steps(bc BuildConfig, res *version.Resolution) []Step {
	logger := p.logger()
	resolver := &version.Resolver{
		History:      p.VCS,
		ManifestPath: p.Config.ManifestPath(),
		Marker:       p.Config.Marker,
		Logger:       logger,
	}

	steps := []Step{{
		Name:   "resolve version",
		Strict: true,
		Run: func(ctx context.Context) error {
			r, err := resolver.Resolve(ctx)
			if err != nil {
				return err
			}
			*res = *r
			logger.Info("Building: v" + res.Version)
			return nil
		},
	}}

	// The tag must point at the bump commit, so it is only created once that
	// commit exists.
	committed := false
	publish := []Step{
		{
			Name: "commit",
			Run: func(ctx context.Context) error {
				if !res.NeedsCommit {
					return nil
				}
				if err := p.VCS.Commit(ctx, p.Config.Marker, p.Config.ManifestPath()); err != nil {
					return err
				}
				committed = true
				return nil
			},
		},
		{
			Name: "tag",
			Run: func(ctx context.Context) error {
				if !res.NeedsCommit {
					return nil
				}
				if !committed {
					return fmt.Errorf("%w: bump commit was not created, %s would tag the previous HEAD",
						ErrSkipped, p.Config.TagName(res.Version))
				}
				return p.VCS.Tag(ctx, p.Config.TagName(res.Version))
			},
		},
	}
	if bc.NoCommit {
		logger.Info("commit and tag disabled")
	} else {
		steps = append(steps, publish...)
	}

	steps = append(steps, Step{
		Name:   "build",
		Strict: true,
		Run: func(ctx context.Context) error {
			logger.Info("Building: "+string(bc.Target), "artifact", bc.Target.Describe())
			if err := p.Toolchain.Build(ctx, bc.Target); err != nil {
				return err
			}
			logger.Info("Building: Done")
			return nil
		},
	})

	if bc.InstallDevice != "" {
		steps = append(steps, Step{
			Name:   "install",
			Strict: true,
			Run: func(ctx context.Context) error {
				logger.Info("Installing", "device", bc.InstallDevice)
				return p.Toolchain.Install(ctx, bc.InstallDevice)
			},
		})
	}
	return steps
}

// Run executes the pipeline for bc.
func (p *Pipeline) Run(ctx context.Context, bc BuildConfig) (*Result, error) {
	logger := p.logger()
	res := &version.Resolution{}
	result := &Result{}

	for _, step := range p.Steps(bc, res) {
		result.Version = res.Version
		result.NeedsCommit = res.NeedsCommit

		if err := ctx.Err(); err != nil {
			return result, &StepError{Step: step.Name, Err: err}
		}
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipped) {
				logger.Warn("step skipped", "step", step.Name, "reason", err)
				result.Skipped = append(result.Skipped, step.Name)
				continue
			}
			if step.Strict {
				return result, &StepError{Step: step.Name, Err: err}
			}
			logger.Warn("step failed, continuing", "step", step.Name, "error", err)
			result.Warnings = append(result.Warnings, &StepError{Step: step.Name, Err: err})
			continue
		}
		result.Completed = append(result.Completed, step.Name)
	}

	result.Version = res.Version
	result.NeedsCommit = res.NeedsCommit
	return result, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
