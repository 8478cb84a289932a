package pipeline

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/benchforge/internal/leaderboard"
	"github.com/ppiankov/benchforge/internal/repo"
)

// EvalFn evaluates one repository. Evaluator.Evaluate satisfies it.
type EvalFn func(ctx context.Context, d repo.Descriptor, notify func(Outcome)) Outcome

// SchedulerConfig holds scheduler parameters.
type SchedulerConfig struct {
	Workers  int
	EvalFn   EvalFn
	OnUpdate func(o Outcome) // called on every state change
}

// Scheduler evaluates a batch of repositories on a bounded worker pool.
// Scored entries reach the leaderboard through a channel with a single
// consumer, so the board has exactly one writer.
type Scheduler struct {
	cfg      SchedulerConfig
	repos    []repo.Descriptor
	outcomes *xsync.MapOf[int, Outcome]
}

// NewScheduler prepares a batch. Outcomes are keyed by input position so
// repositories that share an ID stay distinct.
func NewScheduler(repos []repo.Descriptor, cfg SchedulerConfig) *Scheduler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	s := &Scheduler{
		cfg:      cfg,
		repos:    repos,
		outcomes: xsync.NewMapOf[int, Outcome](),
	}
	for i, d := range repos {
		s.outcomes.Store(i, Outcome{Repo: d, State: StatePending})
	}
	return s
}

// Run evaluates every repository and returns the outcomes in input order
// together with the filled leaderboard. Per-repository failures are part of
// the outcomes; Run itself does not fail. Repositories not yet started when
// ctx is cancelled are recorded as cancelled without running.
func (s *Scheduler) Run(ctx context.Context) ([]Outcome, *leaderboard.Board) {
	board := leaderboard.New()
	entries := make(chan leaderboard.Entry, len(s.repos))
	collected := make(chan struct{})
	go func() {
		board.Collect(context.Background(), entries)
		close(collected)
	}()

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for i, d := range s.repos {
		if ctx.Err() != nil {
			s.update(i, skipped(ctx, d))
			continue
		}
		g.Go(func() error {
			o := s.cfg.EvalFn(ctx, d, func(u Outcome) { s.update(i, u) })
			if o.State == StateScored && o.Entry != nil {
				entries <- *o.Entry
			}
			s.update(i, o)
			return nil
		})
	}

	_ = g.Wait()
	close(entries)
	<-collected

	return s.Results(), board
}

// Results returns a snapshot of all outcomes in input order.
func (s *Scheduler) Results() []Outcome {
	out := make([]Outcome, len(s.repos))
	s.outcomes.Range(func(i int, o Outcome) bool {
		out[i] = o
		return true
	})
	return out
}

func (s *Scheduler) update(i int, o Outcome) {
	s.outcomes.Store(i, o)
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate(o)
	}
}

func skipped(ctx context.Context, d repo.Descriptor) Outcome {
	now := time.Now()
	return Outcome{
		Repo:      d,
		State:     StateCancelled,
		Stage:     StageAcquire,
		Err:       &StageError{RepoID: d.ID, Stage: StageAcquire, Kind: KindCancelled, Err: context.Cause(ctx)},
		StartedAt: now,
		EndedAt:   now,
	}
}
