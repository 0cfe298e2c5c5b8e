package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestApp_CancelledContextStopsBeforeAnyStep(t *testing.T) {
	tempDir := t.TempDir()
	pubspecPath := filepath.Join(tempDir, "pubspec.yaml")
	const pubspec = "name: demo\nversion: 1.0.0+1\n"
	require.NoError(t, os.WriteFile(pubspecPath, []byte(pubspec), 0644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	defer func() {
		require.NoError(t, os.Chdir(originalWd))
	}()

	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	app.ExitErrHandler = func(*cli.Context, error) {}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = app.RunContext(ctx, []string{"fbuild", "--type", "ios"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")

	after, err := os.ReadFile(pubspecPath)
	require.NoError(t, err)
	assert.Equal(t, pubspec, string(after))
}

func TestApp_Commands(t *testing.T) {
	app := newApp()
	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"build", "show", "self"}, names)
	assert.Equal(t, "dev", app.Version)
}
