package self

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()
	v, err := ParseVersion("v1.4.2")
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", v.String())

	v, err = ParseVersion("0.9.0")
	require.NoError(t, err)
	assert.Equal(t, "0.9.0", v.String())

	_, err = ParseVersion("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a release version")
}

func TestRepoSlug(t *testing.T) {
	t.Parallel()
	slug, err := RepoSlug("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRepoSlug, slug)

	slug, err = RepoSlug("someone/fork")
	require.NoError(t, err)
	assert.Equal(t, "someone/fork", slug)

	for _, bad := range []string{"noslash", "/repo", "owner/", "a/b/c"} {
		_, err := RepoSlug(bad)
		assert.Error(t, err, "source %q", bad)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	ok, err := confirm(strings.NewReader("y\n"), &out, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "(y/N)")

	ok, err = confirm(strings.NewReader("\n"), &out, false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = confirm(strings.NewReader("Y"), &out, false)
	require.NoError(t, err)
	assert.True(t, ok, "Input without a trailing newline is accepted")

	ok, err = confirm(strings.NewReader(""), &out, true)
	require.NoError(t, err)
	assert.True(t, ok)
}
