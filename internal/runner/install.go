package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrManifestMissing means the repository has no dependency manifest and
// installation was skipped.
var ErrManifestMissing = errors.New("dependency manifest not found")

// Install installs <repoDir>/<manifest> into env with the environment's
// own pip. Installer output is logged at debug level.
func Install(ctx context.Context, env *Environment, repoDir, manifest string, extraEnv []string) error {
	path := filepath.Join(repoDir, manifest)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, env.Pip(), "install", "-r", path)
	cmd.Dir = repoDir
	cmd.Env = childEnv(env, extraEnv)
	cmd.Stdout = &out
	cmd.Stderr = &out
	killGroupOnCancel(cmd)

	slog.Debug("installing dependencies", "repo", env.RepoID, "manifest", path)
	err := cmd.Run()
	if out.Len() > 0 {
		slog.Debug("pip output", "repo", env.RepoID, "output", out.String())
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := lastLine(out.String()); msg != "" {
			return fmt.Errorf("pip install -r %s: %w (%s)", manifest, err, msg)
		}
		return fmt.Errorf("pip install -r %s: %w", manifest, err)
	}

	slog.Info("dependencies installed", "repo", env.RepoID)
	return nil
}
