package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/benchforge/internal/config"
	"github.com/ppiankov/benchforge/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		o        runOptions
		pollMode bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the evaluation whenever the repository list changes",
		Long: `Evaluate the repositories in --repos-file, then evaluate them again every
time the file changes. Existing clones are reused between runs; each run
gets fresh environments.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.reposFile == "" {
				return errors.New("watch requires --repos-file")
			}
			cfg, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o.applySettings(cmd, cfg)
			// live displays would fight with the output of consecutive runs
			o.tuiMode = "off"

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			out, diag := cmd.OutOrStdout(), cmd.ErrOrStderr()
			w, err := watch.New(watch.Config{
				Path:     o.reposFile,
				PollMode: pollMode,
				Debounce: debounce,
				OnChange: func(ctx context.Context) error {
					repos, err := resolveRepos(ctx, &o, cfg, nil)
					if err != nil {
						return err
					}
					runCtx, cancel := context.WithCancel(ctx)
					defer cancel()
					_, err = executeBatch(runCtx, cancel, &o, cfg, repos, out, diag)
					return err
				},
			})
			if err != nil {
				return err
			}
			return w.Run(ctx)
		},
	}

	bindRunFlags(cmd, &o)
	cmd.Flags().BoolVar(&pollMode, "poll", false, "poll the file instead of using filesystem notifications")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "wait this long after the last change before re-running")

	return cmd
}
