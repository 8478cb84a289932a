// Package pipeline evaluates repositories stage by stage and schedules
// many evaluations across a bounded worker pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/benchforge/internal/artifact"
	"github.com/ppiankov/benchforge/internal/leaderboard"
	"github.com/ppiankov/benchforge/internal/repo"
	"github.com/ppiankov/benchforge/internal/runner"
	"github.com/ppiankov/benchforge/internal/score"
)

// ErrRuntimeDiagnostic marks a run whose error stream was not empty.
var ErrRuntimeDiagnostic = errors.New("program wrote to its error stream")

// Config holds everything a single evaluation needs.
type Config struct {
	WorkDir        string
	Git            string // git client, default "git"
	Python         string // base interpreter, default "python3"
	Layout         runner.Layout
	Marker         string
	ExecTimeout    time.Duration
	IdleTimeout    time.Duration
	InstallTimeout time.Duration
	Env            []string        // extra KEY=VALUE for installer and program
	Artifacts      *artifact.Store // optional output log sink
}

// Evaluator runs the per-repository pipeline.
type Evaluator struct {
	cfg Config
}

// NewEvaluator fills defaults and creates the work directory. Failing to
// create it is a batch-level error.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	if cfg.WorkDir == "" {
		return nil, errors.New("work dir is required")
	}
	if cfg.Git == "" {
		cfg.Git = "git"
	}
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if cfg.Marker == "" {
		cfg.Marker = score.DefaultMarker
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Evaluator{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (ev *Evaluator) Config() Config {
	return ev.cfg
}

// evaluation carries one repository through the stages.
type evaluation struct {
	ctx    context.Context
	o      Outcome
	notify func(Outcome)
	env    *runner.Environment
}

func (e *evaluation) enter(stage Stage) {
	e.o.Stage = stage
	e.report()
}

func (e *evaluation) advance(state State) {
	e.o.State = state
	e.report()
}

func (e *evaluation) report() {
	if e.notify != nil {
		e.notify(e.o)
	}
}

// fail ends the pipeline, or records a cancellation when ctx is done.
func (e *evaluation) fail(kind Kind, err error) Outcome {
	if e.ctx.Err() != nil {
		return e.cancel()
	}
	e.o.Err = &StageError{RepoID: e.o.Repo.ID, Stage: e.o.Stage, Kind: kind, Err: err}
	e.o.State = StateFailed
	slog.Warn("stage failed", "repo", e.o.Repo.ID, "stage", e.o.Stage, "kind", kind, "error", err)
	return e.finish()
}

// cancel releases the environment and records the cancellation. No entry
// is produced.
func (e *evaluation) cancel() Outcome {
	if e.env != nil {
		if err := e.env.Release(); err != nil {
			slog.Warn("release environment", "repo", e.o.Repo.ID, "error", err)
		}
	}
	e.o.Entry = nil
	e.o.Err = &StageError{RepoID: e.o.Repo.ID, Stage: e.o.Stage, Kind: KindCancelled, Err: context.Cause(e.ctx)}
	e.o.State = StateCancelled
	slog.Info("evaluation cancelled", "repo", e.o.Repo.ID, "stage", e.o.Stage)
	return e.finish()
}

func (e *evaluation) finish() Outcome {
	e.o.EndedAt = time.Now()
	e.o.Duration = e.o.EndedAt.Sub(e.o.StartedAt)
	e.report()
	return e.o
}

// Evaluate runs every stage for d and returns its outcome. Stage failures
// never escape as errors; they are recorded on the outcome. notify, when
// set, receives a copy of the outcome on each transition.
func (ev *Evaluator) Evaluate(ctx context.Context, d repo.Descriptor, notify func(Outcome)) Outcome {
	cfg := ev.cfg
	e := &evaluation{
		ctx:    ctx,
		notify: notify,
		o:      Outcome{Repo: d, State: StatePending, StartedAt: time.Now()},
	}

	e.enter(StageAcquire)
	if err := runner.Lock(ctx, cfg.WorkDir, d.ID, d.URL); err != nil {
		return e.fail(KindAcquisition, fmt.Errorf("lock %s: %w", d.ID, err))
	}
	defer runner.Unlock(cfg.WorkDir, d.ID)
	// a repository dequeued after cancellation must leave its tree untouched
	if ctx.Err() != nil {
		return e.cancel()
	}

	cloned, err := runner.Clone(ctx, cfg.Git, d.URL, d.Path)
	if err != nil {
		return e.fail(KindAcquisition, err)
	}
	e.o.Cloned = cloned
	if !cloned {
		e.o.Notes = append(e.o.Notes, fmt.Sprintf("Directory %s already exists. Skipping clone.", d.Path))
	}
	e.advance(StateAcquired)

	e.enter(StageReconcile)
	if ctx.Err() != nil {
		return e.cancel()
	}
	rec := runner.Reconcile(d.Path, cfg.Layout)
	if rec.ManifestCreated {
		e.o.Notes = append(e.o.Notes, fmt.Sprintf("Created a default %s file.", cfg.Layout.Manifest))
	}
	if rec.DataDirCreated {
		e.o.Notes = append(e.o.Notes, "Created a data directory.")
	}

	e.enter(StageProvision)
	env, err := runner.Provision(ctx, cfg.Python, d.ID, d.Path, cfg.Layout.EnvDir)
	if err != nil {
		return e.fail(KindProvisioning, err)
	}
	e.env = env
	e.advance(StateProvisioned)

	e.enter(StageInstall)
	installCtx, cancelInstall := ctx, context.CancelFunc(func() {})
	if cfg.InstallTimeout > 0 {
		installCtx, cancelInstall = context.WithTimeout(ctx, cfg.InstallTimeout)
	}
	err = runner.Install(installCtx, env, d.Path, cfg.Layout.Manifest, cfg.Env)
	cancelInstall()
	switch {
	case ctx.Err() != nil:
		return e.cancel()
	case err == nil:
		e.advance(StateInstalled)
	case errors.Is(err, runner.ErrManifestMissing):
		e.o.Notes = append(e.o.Notes, "No "+cfg.Layout.Manifest+" found, skipping installation.")
		e.advance(StateInstallSkipped)
	default:
		// installation is advisory; the program may still run
		w := &StageError{RepoID: d.ID, Stage: StageInstall, Kind: KindInstallation, Err: err}
		e.o.Warnings = append(e.o.Warnings, w)
		slog.Warn("installation failed, continuing", "repo", d.ID, "error", err)
		e.advance(StateInstalled)
	}

	e.enter(StageLocate)
	entry, err := runner.Locate(d.Path, cfg.Layout.EntryPoints)
	if err != nil {
		return e.fail(KindMissingEntryPoint, err)
	}
	e.o.EntryPoint = entry
	e.advance(StateLocated)

	e.enter(StageExecute)
	res, err := runner.Execute(ctx, env, d.Path, entry, runner.ExecOptions{
		Timeout:     cfg.ExecTimeout,
		IdleTimeout: cfg.IdleTimeout,
		Env:         cfg.Env,
	})
	if res != nil {
		ev.capture(&e.o, res)
	}
	switch {
	case ctx.Err() != nil:
		return e.cancel()
	case errors.Is(err, runner.ErrExecTimeout):
		return e.fail(KindExecutionTimeout, err)
	case err != nil:
		return e.fail(KindExecution, err)
	case res.Stderr != "":
		return e.fail(KindRuntimeDiagnostic, fmt.Errorf("%w (exit code %d)", ErrRuntimeDiagnostic, res.ExitCode))
	}
	e.advance(StateExecuted)

	e.enter(StageExtract)
	value, err := score.Extract(res.Stdout, cfg.Marker)
	switch {
	case errors.Is(err, score.ErrMissing):
		e.o.Err = &StageError{RepoID: d.ID, Stage: StageExtract, Kind: KindScoreMissing, Err: err}
		e.o.State = StateUnscored
		slog.Warn("no score in output", "repo", d.ID, "marker", cfg.Marker)
		return e.finish()
	case err != nil:
		return e.fail(KindScoreMalformed, err)
	case ctx.Err() != nil:
		return e.cancel()
	}

	e.o.Entry = &leaderboard.Entry{RepoID: d.ID, Score: value}
	e.o.State = StateScored
	slog.Info("repository scored", "repo", d.ID, "score", value)
	return e.finish()
}

// capture records redacted output on the outcome, echoes it at debug level
// and writes it to the artifact store.
func (ev *Evaluator) capture(o *Outcome, res *runner.ExecResult) {
	o.ExitCode = res.ExitCode

	stdout, n1 := runner.Redact(res.Stdout)
	stderr, n2 := runner.Redact(res.Stderr)
	if n := n1 + n2; n > 0 {
		slog.Warn("secrets redacted from program output", "repo", o.Repo.ID, "count", n)
	}
	o.Stdout, o.Stderr = stdout, stderr

	if stdout != "" {
		slog.Debug("program stdout", "repo", o.Repo.ID, "output", strings.TrimRight(stdout, "\n"))
	}
	if stderr != "" {
		slog.Debug("program stderr", "repo", o.Repo.ID, "output", strings.TrimRight(stderr, "\n"))
	}

	if ev.cfg.Artifacts == nil {
		return
	}
	paths, err := ev.cfg.Artifacts.WriteOutput(o.Repo.ID, stdout, stderr)
	if err != nil {
		slog.Warn("write output artifacts", "repo", o.Repo.ID, "error", err)
	}
	o.Logs = append(o.Logs, paths...)
}
