package version_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/fbuild/internal/core/config"
	"github.com/nightconcept/fbuild/internal/core/runner"
	"github.com/nightconcept/fbuild/internal/core/vcs"
	"github.com/nightconcept/fbuild/internal/core/version"
)

// gitRepo creates a repository holding pubspec.yaml with one commit. The git
// identity and config come from the environment so the host config is ignored.
func gitRepo(t *testing.T, pubspec string) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "fbuild test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "fbuild test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pubspec.yaml"), []byte(pubspec), 0644))

	for _, args := range [][]string{
		{"init", "-q"},
		{"add", "pubspec.yaml"},
		{"commit", "-q", "-m", "Initial commit"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}
	return dir
}

func TestResolve_RealGitRoundTrip(t *testing.T) {
	dir := gitRepo(t, "name: demo\nversion: 3.0.0\n")
	ctx := context.Background()

	git := vcs.New("git", runner.NewExec(dir, nil))
	cfg := config.Default(dir)
	r := &version.Resolver{History: git, ManifestPath: cfg.ManifestPath(), Marker: cfg.Marker}

	first, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "3.0.0+1", first.Version)
	assert.True(t, first.NeedsCommit)

	require.NoError(t, git.Commit(ctx, cfg.Marker, "pubspec.yaml"))
	require.NoError(t, git.Tag(ctx, cfg.TagName(first.Version)))

	second, err := r.Resolve(ctx)
	require.NoError(t, err)
	assert.False(t, second.NeedsCommit, "A bump commit must not trigger another bump")
	assert.Equal(t, "3.0.0+1", second.Version)

	count, err := git.CommitCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	out, err := runner.NewExec(dir, nil).Output(ctx, "git", "tag", "--list")
	require.NoError(t, err)
	assert.Equal(t, "v3.0.0+1\n", string(out))
}

func TestResolve_NotARepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}
	t.Setenv("GIT_CEILING_DIRECTORIES", os.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pubspec.yaml"), []byte("version: 1.0.0\n"), 0644))

	r := &version.Resolver{
		History:      vcs.New("git", runner.NewExec(dir, nil)),
		ManifestPath: filepath.Join(dir, "pubspec.yaml"),
		Marker:       config.DefaultMarker,
	}
	_, err := r.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading last commit")
}
