package reporter

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/benchforge/internal/pipeline"
)

var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// TUI styles
var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")) // cyan
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pauseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

type tickMsg time.Time

// TUIModel is the Bubbletea model for the live per-repository view.
type TUIModel struct {
	getResults func() []pipeline.Outcome
	cancelRun  func() // called on 'q' to cancel the run context

	results      []pipeline.Outcome
	scrollOffset int
	paused       bool
	frame        int
	width        int
	height       int
	done         bool
}

// NewTUIModel creates a new TUI model. getResults returns a snapshot of all
// outcomes, typically pipeline.Scheduler.Results.
func NewTUIModel(getResults func() []pipeline.Outcome, cancelRun func()) TUIModel {
	return TUIModel{
		getResults: getResults,
		cancelRun:  cancelRun,
		results:    getResults(),
	}
}

// Init implements tea.Model.
func (m TUIModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelRun != nil {
				m.cancelRun()
			}
			m.done = true
			return m, tea.Quit

		case "p", " ":
			m.paused = !m.paused

		case "j", "down":
			m.scrollDown(1)

		case "k", "up":
			m.scrollUp(1)

		case "g", "home":
			m.scrollOffset = 0

		case "G", "end":
			m.scrollOffset = m.maxScroll()

		case "pgdown":
			m.scrollDown(m.visibleRows())

		case "pgup":
			m.scrollUp(m.visibleRows())
		}

	case tickMsg:
		if !m.paused {
			m.results = m.getResults()
		}
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m *TUIModel) scrollDown(n int) {
	m.scrollOffset += n
	if max := m.maxScroll(); m.scrollOffset > max {
		m.scrollOffset = max
	}
}

func (m *TUIModel) scrollUp(n int) {
	m.scrollOffset -= n
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m TUIModel) visibleRows() int {
	// header(1) + progress(1) + help(1) + 2 scroll hints
	avail := m.height - 5
	if avail < 3 {
		return 3
	}
	return avail
}

func (m TUIModel) maxScroll() int {
	total := len(m.results)
	vis := m.visibleRows()
	if total <= vis {
		return 0
	}
	return total - vis
}

// counts tallies outcomes by display group.
type counts struct {
	scored, unscored, running, failed, queued int
}

func tally(results []pipeline.Outcome) counts {
	var c counts
	for _, o := range results {
		switch {
		case o.State == pipeline.StateScored:
			c.scored++
		case o.State == pipeline.StateUnscored:
			c.unscored++
		case o.State == pipeline.StateFailed || o.State == pipeline.StateCancelled:
			c.failed++
		case o.State == pipeline.StatePending:
			c.queued++
		default:
			c.running++
		}
	}
	return c
}

// View implements tea.Model.
func (m TUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	header := fmt.Sprintf("benchforge — %d repositories", len(m.results))
	if m.paused {
		header += "  " + pauseStyle.Render("⏸ PAUSED")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	b.WriteString(progressLine(tally(m.results)))
	b.WriteString("\n")

	lines := m.buildLines()

	vis := m.visibleRows()
	start := m.scrollOffset
	if start > len(lines) {
		start = len(lines)
	}
	end := start + vis
	if end > len(lines) {
		end = len(lines)
	}

	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more above", start)))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	if end < len(lines) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more below", len(lines)-end)))
		b.WriteString("\n")
	}

	// pad to fill screen
	used := 2 + (end - start) + 1
	if start > 0 {
		used++
	}
	if end < len(lines) {
		used++
	}
	for i := used; i < m.height-1; i++ {
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("  ↑↓/jk: scroll  g/G: top/bottom  p: pause  q: quit"))

	return b.String()
}

// buildLines orders rows failed → running → scored → unscored → queued,
// keeping input order within each group.
func (m TUIModel) buildLines() []string {
	var failed, running, scored, unscored, queued []string
	spinner := spinnerChars[m.frame%len(spinnerChars)]

	for _, o := range m.results {
		switch {
		case o.State == pipeline.StateFailed || o.State == pipeline.StateCancelled:
			failed = append(failed, fmtFailed(o))
		case o.State == pipeline.StateScored:
			scored = append(scored, fmtScored(o))
		case o.State == pipeline.StateUnscored:
			unscored = append(unscored, fmtUnscored(o))
		case o.State == pipeline.StatePending:
			queued = append(queued, dimStyle.Render(fmt.Sprintf("  ─ %-12s %-30s", "queued", o.Repo.ID)))
		default:
			running = append(running, fmtRunning(o, spinner))
		}
	}

	lines := make([]string, 0, len(m.results))
	lines = append(lines, failed...)
	lines = append(lines, running...)
	lines = append(lines, scored...)
	lines = append(lines, unscored...)
	lines = append(lines, queued...)
	return lines
}

func fmtFailed(o pipeline.Outcome) string {
	icon, label := "✗", "failed"
	if o.State == pipeline.StateCancelled {
		icon, label = "⊘", "cancelled"
	}
	msg := ""
	if o.Err != nil {
		msg = fmt.Sprintf("%s: %s", o.Err.Stage, o.Err.Kind)
	}
	return failedStyle.Render(fmt.Sprintf("  %s %-12s %-30s %s", icon, label, o.Repo.ID, msg))
}

func fmtRunning(o pipeline.Outcome, spinner string) string {
	elapsed := time.Duration(0)
	if !o.StartedAt.IsZero() {
		elapsed = time.Since(o.StartedAt).Truncate(time.Second)
	}
	return runStyle.Render(fmt.Sprintf("  %s %-12s %-30s %s", spinner, o.Stage, o.Repo.ID, elapsed))
}

func fmtScored(o pipeline.Outcome) string {
	score := ""
	if o.Entry != nil {
		score = fmt.Sprintf("%.2f", o.Entry.Score)
	}
	suffix := ""
	if len(o.Warnings) > 0 {
		suffix = warnStyle.Render(fmt.Sprintf("  (%d warning(s))", len(o.Warnings)))
	}
	return doneStyle.Render(fmt.Sprintf("  ✓ %-12s %-30s %-8s %s", "scored", o.Repo.ID, score, o.Duration.Truncate(time.Second))) + suffix
}

func fmtUnscored(o pipeline.Outcome) string {
	return warnStyle.Render(fmt.Sprintf("  ? %-12s %-30s no score", "unscored", o.Repo.ID))
}

func progressLine(c counts) string {
	var parts []string
	if c.scored > 0 {
		parts = append(parts, doneStyle.Render(fmt.Sprintf("%d scored", c.scored)))
	}
	if c.running > 0 {
		parts = append(parts, runStyle.Render(fmt.Sprintf("%d running", c.running)))
	}
	if c.unscored > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d unscored", c.unscored)))
	}
	if c.failed > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", c.failed)))
	}
	if c.queued > 0 {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d queued", c.queued)))
	}
	return fmt.Sprintf("  %s", strings.Join(parts, "  "))
}
