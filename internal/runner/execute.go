package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// ErrExecTimeout is returned when the entry point exceeded its run time or
// stayed silent longer than the idle timeout.
var ErrExecTimeout = errors.New("execution timed out")

// ExecOptions bounds a single entry-point run.
type ExecOptions struct {
	Timeout     time.Duration // wall clock limit, 0 disables
	IdleTimeout time.Duration // output silence limit, 0 disables
	Env         []string      // extra KEY=VALUE pairs
}

// ExecResult is the captured outcome of one entry-point run.
type ExecResult struct {
	Stdout   string        `json:"-"`
	Stderr   string        `json:"-"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Execute runs the environment's interpreter on entry with repoDir as the
// working directory and captures both output streams in full.
//
// A non-zero exit status is not an error here; callers judge the run by its
// output. Errors are returned when the process cannot start, when a timeout
// fires (ErrExecTimeout) or when ctx is cancelled (ctx.Err()). In the timeout
// and cancellation cases the partial output is still returned.
func Execute(ctx context.Context, env *Environment, repoDir, entry string, opts ExecOptions) (*ExecResult, error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()

	runCtx, idleCancel := context.WithCancel(runCtx)
	defer idleCancel()
	dog := newIdleWatchdog(opts.IdleTimeout, idleCancel)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, env.Python(), entry)
	cmd.Dir = repoDir
	cmd.Env = childEnv(env, opts.Env)
	cmd.Stdout = dog.Wrap(&stdout)
	cmd.Stderr = dog.Wrap(&stderr)
	killGroupOnCancel(cmd)

	slog.Debug("executing entry point", "repo", env.RepoID, "entry", entry)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		dog.Stop()
		return &ExecResult{ExitCode: -1}, fmt.Errorf("start %s %s: %w", env.Python(), entry, err)
	}
	waitErr := cmd.Wait()
	dog.Stop()

	res := &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	switch {
	case ctx.Err() != nil:
		return res, ctx.Err()
	case dog.Idled():
		return res, fmt.Errorf("%w: no output for %s", ErrExecTimeout, opts.IdleTimeout)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return res, fmt.Errorf("%w: exceeded %s", ErrExecTimeout, opts.Timeout)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return res, fmt.Errorf("wait %s: %w", entry, waitErr)
	}

	slog.Debug("entry point finished", "repo", env.RepoID, "exit_code", res.ExitCode,
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}
