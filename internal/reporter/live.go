package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/ppiankov/benchforge/internal/pipeline"
)

const maxRepoLines = 20

// LiveReporter redraws a compact status block in place while a batch runs.
// It is the non-interactive alternative to the TUI.
type LiveReporter struct {
	w          io.Writer
	getResults func() []pipeline.Outcome
	stop       chan struct{}
	done       chan struct{}
	lastLines  int
	frame      int
	mu         sync.Mutex

	green, red, yellow, cyan, dim *color.Color
}

// NewLiveReporter creates a live reporter that polls outcomes via getResults.
func NewLiveReporter(w io.Writer, useColor bool, getResults func() []pipeline.Outcome) *LiveReporter {
	lr := &LiveReporter{
		w:          w,
		getResults: getResults,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		green:      color.New(color.FgGreen),
		red:        color.New(color.FgRed),
		yellow:     color.New(color.FgYellow),
		cyan:       color.New(color.FgCyan),
		dim:        color.New(color.Faint),
	}
	for _, c := range []*color.Color{lr.green, lr.red, lr.yellow, lr.cyan, lr.dim} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return lr
}

// Start begins the periodic refresh loop.
func (lr *LiveReporter) Start() {
	go lr.loop()
}

// Stop halts the refresh loop and clears the live display.
func (lr *LiveReporter) Stop() {
	close(lr.stop)
	<-lr.done
	lr.clearLastFrame()
}

func (lr *LiveReporter) loop() {
	defer close(lr.done)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-lr.stop:
			return
		case <-ticker.C:
			lr.render()
		}
	}
}

func (lr *LiveReporter) clearLastFrame() {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
		for i := 0; i < lr.lastLines; i++ {
			fmt.Fprintf(lr.w, "\033[K\n")
		}
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
	}
}

func (lr *LiveReporter) render() {
	lr.mu.Lock()
	defer lr.mu.Unlock()

	lines := lr.buildLines(lr.getResults())

	// move cursor up to overwrite previous frame
	if lr.lastLines > 0 {
		fmt.Fprintf(lr.w, "\033[%dA", lr.lastLines)
	}
	for _, line := range lines {
		fmt.Fprintf(lr.w, "\033[K%s\n", line)
	}

	lr.lastLines = len(lines)
	lr.frame++
}

// Render produces the display lines for a snapshot.
// Exported for testing.
func (lr *LiveReporter) Render(results []pipeline.Outcome) []string {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.buildLines(results)
}

func (lr *LiveReporter) buildLines(results []pipeline.Outcome) []string {
	var failed, running, finished, queued []pipeline.Outcome
	for _, o := range results {
		switch {
		case o.State == pipeline.StateFailed || o.State == pipeline.StateCancelled:
			failed = append(failed, o)
		case o.State == pipeline.StateScored || o.State == pipeline.StateUnscored:
			finished = append(finished, o)
		case o.State == pipeline.StatePending:
			queued = append(queued, o)
		default:
			running = append(running, o)
		}
	}

	// most recently finished first
	sort.SliceStable(finished, func(i, j int) bool {
		return finished[i].EndedAt.After(finished[j].EndedAt)
	})

	spinner := spinnerChars[lr.frame%len(spinnerChars)]

	lines := []string{fmt.Sprintf("benchforge — %d repositories", len(results)), ""}
	shown := 0
	add := func(line string) bool {
		if shown >= maxRepoLines {
			return false
		}
		lines = append(lines, line)
		shown++
		return true
	}

	for _, o := range failed {
		msg := ""
		if o.Err != nil {
			msg = o.Err.Err.Error()
			if len(msg) > 120 {
				msg = msg[:120] + "..."
			}
		}
		label := "FAILED"
		if o.State == pipeline.StateCancelled {
			label = "cancelled"
		}
		if !add(lr.red.Sprintf("  ✗ %-12s %-30s %s", label, o.Repo.ID, msg)) {
			break
		}
	}
	for _, o := range running {
		elapsed := time.Duration(0)
		if !o.StartedAt.IsZero() {
			elapsed = time.Since(o.StartedAt).Truncate(time.Second)
		}
		if !add(lr.cyan.Sprintf("  %s %-12s %-30s %s", spinner, o.Stage, o.Repo.ID, elapsed)) {
			break
		}
	}
	shownFinished := 0
	for _, o := range finished {
		line := lr.yellow.Sprintf("  ? %-12s %-30s no score", "unscored", o.Repo.ID)
		if o.State == pipeline.StateScored && o.Entry != nil {
			line = lr.green.Sprintf("  ✓ %-12s %-30s %.2f", "scored", o.Repo.ID, o.Entry.Score)
		}
		if !add(line) {
			break
		}
		shownFinished++
	}
	if remaining := len(finished) - shownFinished; remaining > 0 {
		lines = append(lines, lr.dim.Sprintf("  ... %d more finished", remaining))
	}
	if len(queued) > 0 {
		lines = append(lines, lr.dim.Sprintf("  ─ %-12s %d repositories", "queued", len(queued)))
	}

	c := tally(results)
	var parts []string
	if c.scored > 0 {
		parts = append(parts, lr.green.Sprintf("%d scored", c.scored))
	}
	if c.running > 0 {
		parts = append(parts, lr.cyan.Sprintf("%d running", c.running))
	}
	if c.unscored > 0 {
		parts = append(parts, lr.yellow.Sprintf("%d unscored", c.unscored))
	}
	if c.failed > 0 {
		parts = append(parts, lr.red.Sprintf("%d failed", c.failed))
	}
	if c.queued > 0 {
		parts = append(parts, lr.dim.Sprintf("%d queued", c.queued))
	}
	lines = append(lines, "", "  progress: "+strings.Join(parts, ", "))
	return lines
}
