package pipeline

import (
	"time"

	"github.com/ppiankov/benchforge/internal/leaderboard"
)

// NewReport summarizes a finished batch.
func NewReport(runID string, cfg Config, workers int, started time.Time, outcomes []Outcome, board *leaderboard.Board) *Report {
	r := &Report{
		RunID:         runID,
		Timestamp:     started,
		WorkDir:       cfg.WorkDir,
		Workers:       workers,
		Marker:        cfg.Marker,
		Total:         len(outcomes),
		Leaderboard:   board.Ranking(),
		Repos:         make([]RepoReport, 0, len(outcomes)),
		TotalDuration: time.Since(started),
	}

	for _, o := range outcomes {
		switch o.State {
		case StateScored:
			r.Scored++
		case StateUnscored:
			r.Unscored++
		case StateCancelled:
			r.Cancelled++
		default:
			r.Failed++
		}

		rr := RepoReport{Outcome: o, Error: issueOf(o.Err)}
		if o.Entry != nil {
			v := o.Entry.Score
			rr.Score = &v
		}
		for _, w := range o.Warnings {
			rr.Warnings = append(rr.Warnings, *issueOf(w))
		}
		r.Repos = append(r.Repos, rr)
	}
	return r
}
