package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/artifact"
	"github.com/ppiankov/benchforge/internal/config"
	"github.com/ppiankov/benchforge/internal/github"
	"github.com/ppiankov/benchforge/internal/pipeline"
	"github.com/ppiankov/benchforge/internal/repo"
	"github.com/ppiankov/benchforge/internal/reporter"
	"github.com/ppiankov/benchforge/internal/runner"
)

// runOptions are the flags shared by run and watch.
type runOptions struct {
	reposFile      string
	org            string
	workers        int
	workDir        string
	git            string
	python         string
	marker         string
	execTimeout    time.Duration
	idleTimeout    time.Duration
	installTimeout time.Duration
	artifactsDir   string
	compressLogs   bool
	report         string
	dryRun         bool
	tuiMode        string
}

func bindRunFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().StringVar(&o.reposFile, "repos-file", "", "file listing repository URLs (.txt, .yml, .json, .toml)")
	cmd.Flags().StringVar(&o.org, "org", "", "also evaluate the repositories of this GitHub organization")
	cmd.Flags().IntVar(&o.workers, "workers", 4, "max repositories evaluated in parallel (1 = sequential)")
	cmd.Flags().StringVar(&o.workDir, "work-dir", ".", "directory repositories are cloned into")
	cmd.Flags().StringVar(&o.git, "git", "git", "git client")
	cmd.Flags().StringVar(&o.python, "python", "python3", "base Python interpreter used to create environments")
	cmd.Flags().StringVar(&o.marker, "marker", "", "score marker in program output (default \"Accuracy:\")")
	cmd.Flags().DurationVar(&o.execTimeout, "exec-timeout", 30*time.Minute, "per-repository program timeout (0 disables)")
	cmd.Flags().DurationVar(&o.idleTimeout, "idle-timeout", 0, "kill the program after no output for this duration (0 disables)")
	cmd.Flags().DurationVar(&o.installTimeout, "install-timeout", 0, "per-repository dependency install timeout (0 disables)")
	cmd.Flags().StringVar(&o.artifactsDir, "artifacts-dir", "", "write captured program output under this directory")
	cmd.Flags().BoolVar(&o.compressLogs, "compress-logs", false, "zstd-compress captured output")
	cmd.Flags().StringVar(&o.report, "report", "", "write a JSON run report to this path")
	cmd.Flags().StringVar(&o.tuiMode, "tui", "auto", "display mode: full (interactive TUI), minimal (live status), off (no live display), auto (detect TTY)")
}

// applySettings fills options from the config file where the matching flag
// was not given explicitly.
func (o *runOptions) applySettings(cmd *cobra.Command, cfg *config.Settings) {
	changed := cmd.Flags().Changed
	if !changed("workers") && cfg.Workers > 0 {
		o.workers = cfg.Workers
	}
	if !changed("work-dir") && cfg.WorkDir != "" {
		o.workDir = cfg.WorkDir
	}
	if !changed("git") && cfg.Git != "" {
		o.git = cfg.Git
	}
	if !changed("python") && cfg.Python != "" {
		o.python = cfg.Python
	}
	if !changed("marker") && cfg.Marker != "" {
		o.marker = cfg.Marker
	}
	if !changed("exec-timeout") && cfg.ExecTimeout != nil {
		o.execTimeout = *cfg.ExecTimeout
	}
	if !changed("idle-timeout") && cfg.IdleTimeout != nil {
		o.idleTimeout = *cfg.IdleTimeout
	}
	if !changed("install-timeout") && cfg.InstallTimeout != nil {
		o.installTimeout = *cfg.InstallTimeout
	}
	if !changed("artifacts-dir") && cfg.ArtifactsDir != "" {
		o.artifactsDir = cfg.ArtifactsDir
	}
	if !changed("compress-logs") && cfg.CompressLogs {
		o.compressLogs = true
	}
	if !changed("report") && cfg.Report != "" {
		o.report = cfg.Report
	}
	if !changed("org") && cfg.GitHub != nil && cfg.GitHub.Org != "" {
		o.org = cfg.GitHub.Org
	}
}

func newRunCmd() *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run [repository-url...]",
		Short: "Evaluate repositories and print the leaderboard",
		Long: `Evaluate every repository given as an argument, in --repos-file, in the
config file's repositories list or discovered with --org, then print the
leaderboard. Per-repository failures are reported but do not fail the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o.applySettings(cmd, cfg)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case <-sigCh:
					fmt.Fprintln(os.Stderr, "\ninterrupted — stopping running evaluations...")
					cancel()
				case <-ctx.Done():
				}
			}()

			repos, err := resolveRepos(ctx, &o, cfg, args)
			if err != nil {
				return err
			}

			out, diag := cmd.OutOrStdout(), cmd.ErrOrStderr()
			if o.dryRun {
				rep := reporter.NewTextReporter(out, diag, colorEnabled(out))
				rep.PrintHeader(len(repos), o.workers)
				rep.PrintDryRun(repos, o.workDir)
				return nil
			}

			_, err = executeBatch(ctx, cancel, &o, cfg, repos, out, diag)
			return err
		},
	}

	bindRunFlags(cmd, &o)
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "show the evaluation plan without running")

	return cmd
}

// resolveRepos gathers URLs from every source, drops exact duplicates and
// builds descriptors. No repositories at all is a batch-level error.
func resolveRepos(ctx context.Context, o *runOptions, cfg *config.Settings, args []string) ([]repo.Descriptor, error) {
	lists := [][]string{args, cfg.Repositories}

	if o.reposFile != "" {
		urls, err := config.LoadRepoList(o.reposFile)
		if err != nil {
			return nil, err
		}
		lists = append(lists, urls)
	}

	if o.org != "" {
		urls, err := discoverOrg(ctx, o.org, cfg.GitHub)
		if err != nil {
			return nil, err
		}
		lists = append(lists, urls)
	}

	urls, dups := config.MergeURLs(lists...)
	for _, d := range dups {
		slog.Warn("duplicate repository url ignored", "url", d)
	}
	if len(urls) == 0 {
		return nil, errors.New("no repositories to evaluate")
	}

	workDir, err := filepath.Abs(o.workDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	o.workDir = workDir

	repos := make([]repo.Descriptor, 0, len(urls))
	for _, u := range urls {
		d, err := repo.New(u, workDir)
		if err != nil {
			return nil, fmt.Errorf("repository %q: %w", u, err)
		}
		repos = append(repos, d)
	}
	return repos, nil
}

func discoverOrg(ctx context.Context, org string, gh *config.GitHubConfig) ([]string, error) {
	if gh == nil {
		gh = &config.GitHubConfig{}
	}
	provided := gh.Token
	if provided != "" {
		resolved, err := runner.ResolveEnv(map[string]string{"github.token": provided})
		if err != nil {
			return nil, fmt.Errorf("github token: %w", err)
		}
		provided = resolved["github.token"]
	}

	token, source, err := github.ResolveAuthToken(ctx, provided)
	if err != nil {
		return nil, fmt.Errorf("github token: %w", err)
	}
	if source == github.AuthTokenSourceNone {
		slog.Warn("no GitHub token found, using unauthenticated requests")
	} else {
		slog.Debug("using GitHub token", "source", source)
	}

	client, err := github.NewClient(ctx, token)
	if err != nil {
		return nil, err
	}
	urls, err := client.OrgCloneURLs(ctx, org, github.DiscoverOptions{
		IncludeForks: gh.IncludeForks,
		MaxRepos:     gh.MaxRepos,
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", org, err)
	}
	slog.Info("discovered repositories", "org", org, "count", len(urls))
	return urls, nil
}

// executeBatch evaluates repos and prints diagnostics, the leaderboard and
// the summary. Only setup problems are returned as errors.
func executeBatch(ctx context.Context, cancel context.CancelFunc, o *runOptions, cfg *config.Settings, repos []repo.Descriptor, out, diag io.Writer) (*pipeline.Report, error) {
	runID := uuid.NewString()
	start := time.Now()

	extraEnv, err := runner.ResolveEnv(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("resolve env: %w", err)
	}

	var store *artifact.Store
	if o.artifactsDir != "" {
		store, err = artifact.NewStore(o.artifactsDir, runID, o.compressLogs)
		if err != nil {
			return nil, err
		}
	}

	ev, err := pipeline.NewEvaluator(pipeline.Config{
		WorkDir: o.workDir,
		Git:     o.git,
		Python:  o.python,
		Layout: runner.Layout{
			Manifest:        cfg.Manifest,
			DataDir:         cfg.DataDir,
			EnvDir:          cfg.EnvDir,
			EntryPoints:     cfg.EntryPoints,
			DefaultPackages: cfg.DefaultPackages,
		},
		Marker:         o.marker,
		ExecTimeout:    o.execTimeout,
		IdleTimeout:    o.idleTimeout,
		InstallTimeout: o.installTimeout,
		Env:            runner.MapToEnvSlice(extraEnv),
		Artifacts:      store,
	})
	if err != nil {
		return nil, err
	}

	useColor := colorEnabled(out)
	textRep := reporter.NewTextReporter(out, diag, useColor)
	slog.Info("starting run", "run_id", runID, "repos", len(repos), "workers", o.workers, "work_dir", o.workDir)
	textRep.PrintHeader(len(repos), o.workers)

	sched := pipeline.NewScheduler(repos, pipeline.SchedulerConfig{
		Workers: o.workers,
		EvalFn:  ev.Evaluate,
		OnUpdate: func(oc pipeline.Outcome) {
			slog.Debug("repository update", "repo", oc.Repo.ID, "state", oc.State, "stage", oc.Stage)
		},
	})

	// resolve display mode: full TUI, minimal live reporter, or off
	displayMode := o.tuiMode
	if displayMode == "" || displayMode == "auto" {
		if isTerminal() && out == os.Stdout {
			displayMode = "full"
		} else {
			displayMode = "off"
		}
	}

	var live *reporter.LiveReporter
	var tuiProgram *tea.Program
	tuiDone := make(chan struct{})
	switch displayMode {
	case "full":
		tuiProgram = tea.NewProgram(reporter.NewTUIModel(sched.Results, cancel), tea.WithAltScreen())
		go func() {
			defer close(tuiDone)
			if _, err := tuiProgram.Run(); err != nil {
				slog.Warn("TUI error", "error", err)
			}
		}()
	case "minimal":
		close(tuiDone)
		live = reporter.NewLiveReporter(diag, useColor, sched.Results)
		live.Start()
	default:
		// "off" or unrecognized: no live display
		close(tuiDone)
	}

	outcomes, board := sched.Run(ctx)

	if tuiProgram != nil {
		tuiProgram.Quit()
		<-tuiDone
	}
	if live != nil {
		live.Stop()
	}

	textRep.PrintDiagnostics(outcomes)
	textRep.PrintLeaderboard(board)

	report := pipeline.NewReport(runID, ev.Config(), o.workers, start, outcomes, board)
	textRep.PrintSummary(report)

	if o.report != "" {
		if err := reporter.WriteJSONReport(report, o.report); err != nil {
			slog.Warn("failed to write report", "error", err)
		} else {
			fmt.Fprintf(diag, "\nReport: %s\n", o.report)
		}
	}
	if store != nil {
		fmt.Fprintf(diag, "Artifacts: %s\n", store.Dir())
	}

	return report, nil
}

func colorEnabled(w io.Writer) bool {
	return w == os.Stdout && isTerminal() && os.Getenv("NO_COLOR") == ""
}
