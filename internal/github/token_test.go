package github

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveAuthToken(t *testing.T) {
	t.Run("explicit token wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), " explicit ")
		require.NoError(t, err)
		require.Equal(t, "explicit", tok)
		require.Equal(t, AuthTokenSourceExplicit, src)
	})

	t.Run("env token used", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, "env-token", tok)
		require.Equal(t, AuthTokenSourceEnv, src)
	})

	t.Run("gh token used when env empty", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test uses a shell script gh stub")
		}
		tmp := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tmp, "gh"), []byte("#!/bin/sh\necho gh-token\n"), 0o755))
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", tmp)

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, "gh-token", tok)
		require.Equal(t, AuthTokenSourceGitHubCL, src)
	})

	t.Run("no token anywhere", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "")
		require.NoError(t, err)
		require.Empty(t, tok)
		require.Equal(t, AuthTokenSourceNone, src)
	})
}
