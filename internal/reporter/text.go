package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/ppiankov/benchforge/internal/leaderboard"
	"github.com/ppiankov/benchforge/internal/pipeline"
	"github.com/ppiankov/benchforge/internal/repo"
)

// TextReporter writes human-readable output. The leaderboard and summary go
// to w; per-repository diagnostics go to diag.
type TextReporter struct {
	w    io.Writer
	diag io.Writer

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	dim    *color.Color
	bold   *color.Color
}

// NewTextReporter creates a text reporter.
// If w or diag is nil, they default to os.Stdout and os.Stderr.
// color enables ANSI codes.
func NewTextReporter(w, diag io.Writer, useColor bool) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	if diag == nil {
		diag = os.Stderr
	}
	r := &TextReporter{
		w:      w,
		diag:   diag,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
		dim:    color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.green, r.red, r.yellow, r.cyan, r.dim, r.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// PrintHeader writes the initial banner.
func (r *TextReporter) PrintHeader(totalRepos, workers int) {
	fmt.Fprintf(r.diag, "benchforge — %d repositories, %d workers\n\n", totalRepos, workers)
}

// PrintDiagnostics writes the diagnostics of every outcome in order.
func (r *TextReporter) PrintDiagnostics(outcomes []pipeline.Outcome) {
	for _, o := range outcomes {
		r.PrintDiagnostic(o)
	}
}

// PrintDiagnostic writes the notes, warnings and failure of one repository.
func (r *TextReporter) PrintDiagnostic(o pipeline.Outcome) {
	id := o.Repo.ID
	for _, n := range o.Notes {
		fmt.Fprintln(r.diag, n)
	}
	for _, w := range o.Warnings {
		fmt.Fprintln(r.diag, r.yellow.Sprintf("%s: %s warning: %v", id, w.Stage, w.Err))
	}
	if o.Err == nil {
		return
	}

	switch o.Err.Kind {
	case pipeline.KindRuntimeDiagnostic:
		fmt.Fprintln(r.diag, r.red.Sprintf("Error in %s: %s", id, strings.TrimRight(o.Stderr, "\n")))
	case pipeline.KindScoreMissing:
		fmt.Fprintln(r.diag, r.yellow.Sprintf("Failed to evaluate %s", id))
	case pipeline.KindCancelled:
		fmt.Fprintln(r.diag, r.dim.Sprintf("%s: cancelled during %s", id, o.Err.Stage))
	default:
		fmt.Fprintln(r.diag, r.red.Sprintf("%s: %s failed (%s): %v", id, o.Err.Stage, o.Err.Kind, o.Err.Err))
	}
}

// PrintLeaderboard writes the ranking. Without color the output is
// identical to leaderboard.Board.Render.
func (r *TextReporter) PrintLeaderboard(board *leaderboard.Board) {
	fmt.Fprintln(r.w, "\n"+r.bold.Sprint("Leaderboard:"))
	for _, e := range board.Ranking() {
		line := leaderboard.FormatLine(e)
		if e.Rank == 1 {
			line = r.green.Sprint(line)
		}
		fmt.Fprintln(r.w, line)
	}
}

// PrintSummary writes the final summary line.
func (r *TextReporter) PrintSummary(report *pipeline.Report) {
	fmt.Fprintf(r.diag, "\n%s\n", r.cyan.Sprint("--- Summary ---"))
	fmt.Fprintf(r.diag, "Total: %d  ", report.Total)
	fmt.Fprintf(r.diag, "%s  ", r.green.Sprintf("Scored: %d", report.Scored))
	fmt.Fprintf(r.diag, "%s  ", r.yellow.Sprintf("Unscored: %d", report.Unscored))
	fmt.Fprintf(r.diag, "%s  ", r.red.Sprintf("Failed: %d", report.Failed))
	if report.Cancelled > 0 {
		fmt.Fprintf(r.diag, "%s  ", r.dim.Sprintf("Cancelled: %d", report.Cancelled))
	}
	fmt.Fprintf(r.diag, "Duration: %s\n", report.TotalDuration.Truncate(time.Second))
}

// PrintDryRun writes the evaluation plan without running anything.
func (r *TextReporter) PrintDryRun(repos []repo.Descriptor, workDir string) {
	fmt.Fprintf(r.w, "Evaluation plan (dry-run), work dir %s:\n\n", workDir)
	for i, d := range repos {
		fmt.Fprintf(r.w, "  %d. %s\n", i+1, d.ID)
		fmt.Fprintf(r.w, "     url:  %s\n", d.URL)
		fmt.Fprintf(r.w, "     path: %s\n", d.Path)
	}
}
