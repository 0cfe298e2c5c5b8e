// Package version decides the version string for a build and whether the
// manifest needs a new build number.
//
// A new build number is the total commit count of HEAD. After fbuild commits a
// bump with the marker message, the next run sees that message as the last
// commit subject and keeps the manifest version as is; otherwise every re-run
// would mint a new number and create another commit.
package version

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nightconcept/fbuild/internal/core/manifest"
)

// History is the part of the version-control system the resolver reads.
type History interface {
	LastCommitSubject(ctx context.Context) (string, error)
	CommitCount(ctx context.Context) (int, error)
}

// Resolution is the outcome of resolving the build version.
type Resolution struct {
	// Version is the version to build, e.g. "1.2.0+57".
	Version string
	// Previous is the manifest version before resolution.
	Previous string
	// NeedsCommit is true when a new build number was minted and the manifest
	// has (or, for Plan, would have) been rewritten.
	NeedsCommit bool
	// CommitCount is the history length used for the build number. Zero when
	// the marker short-circuited resolution.
	CommitCount int
	// LastSubject is the subject of the most recent commit.
	LastSubject string
}

// Resolver resolves versions for one manifest.
type Resolver struct {
	History      History
	ManifestPath string
	Marker       string
	Logger       *slog.Logger
}

// Resolve decides the build version and rewrites the manifest when a new build
// number is minted.
func (r *Resolver) Resolve(ctx context.Context) (*Resolution, error) {
	return r.resolve(ctx, true)
}

// Plan performs the same decision as Resolve without touching the manifest.
func (r *Resolver) Plan(ctx context.Context) (*Resolution, error) {
	return r.resolve(ctx, false)
}

func (r *Resolver) resolve(ctx context.Context, write bool) (*Resolution, error) {
	logger := r.logger()

	subject, err := r.History.LastCommitSubject(ctx)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(r.ManifestPath)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Version:     m.Version,
		Previous:    m.Version,
		LastSubject: subject,
	}

	if strings.HasPrefix(subject, r.Marker) {
		logger.Debug("last commit is a version bump, keeping manifest version", "subject", subject, "version", m.Version)
		return res, nil
	}

	rec, err := m.Record()
	if err != nil {
		return nil, err
	}
	if err := rec.ValidateBase(); err != nil {
		logger.Warn("manifest version is not semver", "error", err)
	}

	count, err := r.History.CommitCount(ctx)
	if err != nil {
		return nil, err
	}

	res.Version = rec.WithBuild(count).String()
	res.CommitCount = count
	res.NeedsCommit = true

	if !write {
		return res, nil
	}

	if err := m.SetVersion(res.Version); err != nil {
		return nil, fmt.Errorf("updating build number: %w", err)
	}
	logger.Debug("manifest version updated", "from", res.Previous, "to", res.Version, "path", r.ManifestPath)
	return res, nil
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
