package show

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/fbuild/internal/core/runner"
	"github.com/nightconcept/fbuild/internal/core/runner/runnertest"
)

const testPubspec = "name: demo\nversion: 2.1.0+4\n"

func runShowCommand(t *testing.T, rec *runnertest.Recorder, pubspec string) (string, error) {
	t.Helper()
	tempDir := t.TempDir()
	if pubspec != "" {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "pubspec.yaml"), []byte(pubspec), 0644))
	}

	original := newRunner
	newRunner = func(string, *slog.Logger) runner.Runner { return rec }
	defer func() { newRunner = original }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() {
		require.NoError(t, os.Chdir(originalWd))
	}()

	var stdout bytes.Buffer
	app := &cli.App{
		Commands:       []*cli.Command{ShowCmd()},
		Writer:         &stdout,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	t.Setenv("NO_COLOR", "1")
	err = app.Run([]string{"fbuild", "show"})

	if pubspec != "" {
		after, readErr := os.ReadFile(filepath.Join(tempDir, "pubspec.yaml"))
		require.NoError(t, readErr)
		assert.Equal(t, pubspec, string(after), "show must never modify the manifest")
	}
	return stdout.String(), err
}

func TestShow_NewBuildNumber(t *testing.T) {
	rec := runnertest.New().
		On("git log -1 --oneline --no-decorate --no-color", "a1b2c3d Polish onboarding\n", nil).
		On("git rev-list --count HEAD", "19\n", nil)

	out, err := runShowCommand(t, rec, testPubspec)
	require.NoError(t, err)
	assert.Contains(t, out, "Version:      2.1.0+4")
	assert.Contains(t, out, "Commits:      19")
	assert.Contains(t, out, "Next build:   2.1.0+19 (new build number, tag v2.1.0+19)")
	assert.False(t, rec.Called("git commit"))
	assert.False(t, rec.Called("git tag"))
}

func TestShow_AfterBumpCommit(t *testing.T) {
	rec := runnertest.New().On("git log -1 --oneline --no-decorate --no-color", "a1b2c3d updated build number\n", nil)

	out, err := runShowCommand(t, rec, testPubspec)
	require.NoError(t, err)
	assert.Contains(t, out, "Next build:   2.1.0+4 (last commit is a version bump)")
	assert.False(t, rec.Called("git rev-list"))
}

func TestShow_MissingManifest(t *testing.T) {
	rec := runnertest.New().On("git log -1 --oneline --no-decorate --no-color", "a1b2c3d Polish onboarding\n", nil)

	_, err := runShowCommand(t, rec, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pubspec.yaml")
}
