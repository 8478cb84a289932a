// Package leaderboard collects repository scores and ranks them.
package leaderboard

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// Entry is a single scored repository.
type Entry struct {
	RepoID string  `json:"repo"`
	Score  float64 `json:"score"`
}

// Ranked is an entry with its 1-based position in the ranking.
type Ranked struct {
	Rank int `json:"rank"`
	Entry
}

// Board accumulates entries in arrival order.
// A Board is owned by a single goroutine; concurrent producers hand entries
// to it through Collect.
type Board struct {
	entries []Entry
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// Add appends an entry.
func (b *Board) Add(e Entry) {
	b.entries = append(b.entries, e)
}

// Collect drains in until it is closed or ctx is done, appending each entry.
// It is the only writer of the board while it runs.
func (b *Board) Collect(ctx context.Context, in <-chan Entry) {
	for {
		select {
		case e, ok := <-in:
			if !ok {
				return
			}
			b.Add(e)
		case <-ctx.Done():
			return
		}
	}
}

// Len returns the number of collected entries.
func (b *Board) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the entries in arrival order.
func (b *Board) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Ranking returns a new slice sorted by score, highest first. Entries with
// equal scores keep their arrival order. The board itself is not reordered.
func (b *Board) Ranking() []Ranked {
	sorted := b.Entries()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	out := make([]Ranked, len(sorted))
	for i, e := range sorted {
		out[i] = Ranked{Rank: i + 1, Entry: e}
	}
	return out
}

// FormatLine renders one ranking line: "<rank>. <repo>: <score>".
func FormatLine(r Ranked) string {
	return fmt.Sprintf("%d. %s: %.2f", r.Rank, r.RepoID, r.Score)
}

// Render writes the plain-text ranking under a "Leaderboard:" header.
func (b *Board) Render(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "\nLeaderboard:"); err != nil {
		return err
	}
	for _, r := range b.Ranking() {
		if _, err := fmt.Fprintln(w, FormatLine(r)); err != nil {
			return err
		}
	}
	return nil
}
