package leaderboard

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRanking_Descending(t *testing.T) {
	b := New()
	b.Add(Entry{RepoID: "a", Score: 0.5})
	b.Add(Entry{RepoID: "b", Score: 0.9})
	b.Add(Entry{RepoID: "c", Score: 0.7})

	got := b.Ranking()
	require.Len(t, got, 3)
	require.Equal(t, []string{"b", "c", "a"}, ids(got))
	require.Equal(t, 1, got[0].Rank)
	require.Equal(t, 3, got[2].Rank)
}

func TestRanking_StableTies(t *testing.T) {
	b := New()
	b.Add(Entry{RepoID: "first", Score: 0.8})
	b.Add(Entry{RepoID: "low", Score: 0.1})
	b.Add(Entry{RepoID: "second", Score: 0.8})
	b.Add(Entry{RepoID: "third", Score: 0.8})

	require.Equal(t, []string{"first", "second", "third", "low"}, ids(b.Ranking()))
}

func TestRanking_DoesNotReorderSource(t *testing.T) {
	b := New()
	b.Add(Entry{RepoID: "a", Score: 0.1})
	b.Add(Entry{RepoID: "b", Score: 0.2})

	_ = b.Ranking()

	entries := b.Entries()
	require.Equal(t, "a", entries[0].RepoID)
	require.Equal(t, "b", entries[1].RepoID)
}

func TestRanking_NonIncreasingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := New()
	arrival := make(map[string]int)
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("r%03d", i)
		arrival[id] = i
		// coarse scores force plenty of ties
		b.Add(Entry{RepoID: id, Score: float64(rng.Intn(10)) / 10})
	}

	ranked := b.Ranking()
	require.Len(t, ranked, 200)
	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		require.GreaterOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			require.Less(t, arrival[prev.RepoID], arrival[cur.RepoID])
		}
	}
}

func TestRender(t *testing.T) {
	b := New()
	b.Add(Entry{RepoID: "karateclub", Score: 0.61})
	b.Add(Entry{RepoID: "repo", Score: 0.8731})

	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf))

	out := buf.String()
	require.Contains(t, out, "Leaderboard:")
	require.Contains(t, out, "1. repo: 0.87\n")
	require.Contains(t, out, "2. karateclub: 0.61\n")
	require.Less(t, strings.Index(out, "1. repo"), strings.Index(out, "2. karateclub"))
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf))
	require.Equal(t, "\nLeaderboard:\n", buf.String())
}

func TestCollect(t *testing.T) {
	in := make(chan Entry)
	b := New()
	done := make(chan struct{})
	go func() {
		b.Collect(context.Background(), in)
		close(done)
	}()

	in <- Entry{RepoID: "x", Score: 1}
	in <- Entry{RepoID: "y", Score: 2}
	close(in)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after channel close")
	}
	require.Equal(t, 2, b.Len())
	require.Equal(t, "x", b.Entries()[0].RepoID)
}

func TestCollect_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan Entry)
	done := make(chan struct{})
	go func() {
		New().Collect(ctx, in)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after cancel")
	}
}

func ids(rs []Ranked) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.RepoID
	}
	return out
}
