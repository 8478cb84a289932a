package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Clone fetches url into dest using the git client at gitBin.
// An existing dest is reused as is and reported with cloned=false; no
// freshness check is made.
func Clone(ctx context.Context, gitBin, url, dest string) (cloned bool, err error) {
	if _, err := os.Stat(dest); err == nil {
		slog.Info("directory already exists, skipping clone", "dir", dest)
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", dest, err)
	}

	if gitBin == "" {
		gitBin = "git"
	}

	var stderr bytes.Buffer
	cw := newClassifyWriter(&stderr, fetchFailurePatterns)

	cmd := exec.CommandContext(ctx, gitBin, "clone", "--quiet", "--", url, dest)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	cmd.Stderr = cw
	killGroupOnCancel(cmd)

	slog.Debug("cloning repository", "url", url, "dir", dest)
	if err := cmd.Run(); err != nil {
		// git may leave a partial tree behind; the next run would reuse it
		_ = os.RemoveAll(dest)
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		msg := lastLine(stderr.String())
		if reason := cw.Reason(); reason != "" {
			return false, fmt.Errorf("git clone %s: %s: %w (%s)", url, reason, err, msg)
		}
		if msg != "" {
			return false, fmt.Errorf("git clone %s: %w (%s)", url, err, msg)
		}
		return false, fmt.Errorf("git clone %s: %w", url, err)
	}

	slog.Info("repository cloned", "dir", dest)
	return true, nil
}

// lastLine returns the last non-empty line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
