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
	"runtime"
)

// Environment is an isolated Python environment owned by one repository.
type Environment struct {
	RepoID string
	Path   string
}

// Python returns the environment's interpreter.
func (e *Environment) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Path, "Scripts", "python.exe")
	}
	return filepath.Join(e.Path, "bin", "python")
}

// Pip returns the environment's package installer.
func (e *Environment) Pip() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Path, "Scripts", "pip.exe")
	}
	return filepath.Join(e.Path, "bin", "pip")
}

// Release removes the environment directory.
func (e *Environment) Release() error {
	if err := os.RemoveAll(e.Path); err != nil {
		return fmt.Errorf("remove environment %s: %w", e.Path, err)
	}
	return nil
}

// Provision creates a fresh environment at <repoDir>/<envDir> with the
// given base interpreter. Any previous environment there is replaced.
func Provision(ctx context.Context, python, repoID, repoDir, envDir string) (*Environment, error) {
	if python == "" {
		python = "python3"
	}
	env := &Environment{RepoID: repoID, Path: filepath.Join(repoDir, envDir)}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, python, "-m", "venv", "--clear", env.Path)
	cmd.Dir = repoDir
	cmd.Env = SanitizedEnv()
	cmd.Stdout = &out
	cmd.Stderr = &out
	killGroupOnCancel(cmd)

	slog.Debug("creating environment", "repo", repoID, "path", env.Path)
	if err := cmd.Run(); err != nil {
		_ = os.RemoveAll(env.Path)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := lastLine(out.String()); msg != "" {
			return nil, fmt.Errorf("%s -m venv %s: %w (%s)", python, env.Path, err, msg)
		}
		return nil, fmt.Errorf("%s -m venv %s: %w", python, env.Path, err)
	}

	if _, err := os.Stat(env.Python()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("environment %s has no interpreter at %s", env.Path, env.Python())
		}
		return nil, fmt.Errorf("stat %s: %w", env.Python(), err)
	}

	slog.Info("environment ready", "repo", repoID, "path", env.Path)
	return env, nil
}
