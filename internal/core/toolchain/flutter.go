// Package toolchain drives the flutter command line for builds and device installs.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nightconcept/fbuild/internal/core/runner"
)

// ErrUnknownTarget is returned by ParseTarget for values outside the supported set.
var ErrUnknownTarget = errors.New("unknown build type")

// Target is a `flutter build` subcommand.
type Target string

const (
	TargetAPK       Target = "apk"       // android package
	TargetIOS       Target = "ios"       // ios app
	TargetAppBundle Target = "appbundle" // android app bundle
	TargetIPA       Target = "ipa"       // ios archive
)

// DefaultTarget is used when no build type is given.
const DefaultTarget = TargetAPK

// Targets lists the supported targets in display order.
func Targets() []Target {
	return []Target{TargetAPK, TargetIOS, TargetAppBundle, TargetIPA}
}

// TargetNames returns the supported targets as strings.
func TargetNames() []string {
	names := make([]string, 0, len(Targets()))
	for _, t := range Targets() {
		names = append(names, string(t))
	}
	return names
}

// ParseTarget validates s as a build target.
func ParseTarget(s string) (Target, error) {
	for _, t := range Targets() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q (choose from %s)", ErrUnknownTarget, s, strings.Join(TargetNames(), ", "))
}

// Describe returns a human-readable name for the artifact a target produces.
func (t Target) Describe() string {
	switch t {
	case TargetAPK:
		return "android package"
	case TargetIOS:
		return "ios app"
	case TargetAppBundle:
		return "app bundle"
	case TargetIPA:
		return "ios archive"
	}
	return string(t)
}

// Flutter runs flutter through a Runner.
type Flutter struct {
	Bin    string
	Runner runner.Runner
}

// New returns a Flutter using bin (defaults to "flutter").
func New(bin string, r runner.Runner) *Flutter {
	if bin == "" {
		bin = "flutter"
	}
	return &Flutter{Bin: bin, Runner: r}
}

// Build runs `flutter build <target>` with output passed through.
func (f *Flutter) Build(ctx context.Context, target Target) error {
	if err := f.Runner.Run(ctx, f.Bin, "build", string(target)); err != nil {
		return fmt.Errorf("building %s: %w", target, err)
	}
	return nil
}

// Install runs `flutter install -d <device>`.
func (f *Flutter) Install(ctx context.Context, device string) error {
	if err := f.Runner.Run(ctx, f.Bin, "install", "-d", device); err != nil {
		return fmt.Errorf("installing to device %s: %w", device, err)
	}
	return nil
}
