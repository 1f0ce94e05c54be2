package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"threes/board"
)

// Only Right changes this board: the right column is empty and nothing merges.
var onlyRight = board.Board{
	{3, 6, 3, 0},
	{6, 3, 6, 0},
	{3, 6, 3, 0},
	{6, 3, 6, 0},
}

var midGame = board.Board{
	{1, 2, 0, 3},
	{6, 0, 3, 3},
	{0, 12, 12, 2},
	{48, 1, 0, 24},
}

func TestEnumerate(t *testing.T) {
	t.Run("depth one is the four directions", func(t *testing.T) {
		require.Equal(t, []Path{{board.Right}, {board.Left}, {board.Down}, {board.Up}}, Enumerate(1))
	})

	t.Run("full cartesian power in lexicographic order", func(t *testing.T) {
		paths := Enumerate(3)
		require.Len(t, paths, 64)
		require.Equal(t, Path{board.Right, board.Right, board.Right}, paths[0])
		require.Equal(t, Path{board.Right, board.Right, board.Left}, paths[1])
		require.Equal(t, Path{board.Left, board.Right, board.Right}, paths[16])
		require.Equal(t, Path{board.Up, board.Up, board.Up}, paths[63])
	})

	t.Run("paths are distinct", func(t *testing.T) {
		seen := map[[4]board.Direction]bool{}
		for _, p := range Enumerate(4) {
			key := [4]board.Direction(p)
			require.False(t, seen[key], "Duplicate path %v", p)
			seen[key] = true
		}
	})

	t.Run("first path of each direction", func(t *testing.T) {
		paths := Enumerate(2)
		for i, idx := range firsts(paths) {
			require.Equal(t, board.Directions[i], paths[idx][0])
		}
	})

	t.Run("panics on non-positive depth", func(t *testing.T) {
		require.Panics(t, func() { Enumerate(0) })
	})
}

func TestScorePath(t *testing.T) {
	var seen []int
	s := New(WithEvaluator(func(b board.Board, currMax int) int {
		seen = append(seen, currMax)
		return b.Count(0)
	}))
	b := board.Board{{0, 0, 1, 2}}
	rng := rand.New(rand.NewSource(1))

	got := s.scorePath(b, Path{board.Right, board.Right}, 3, b.Max(), rng)

	require.Equal(t, 14.0, got, "Merge frees a cell and the placed card fills one")
	require.Equal(t, []int{2, 2}, seen, "Every step should be scored against the pre-path maximum")
	require.Equal(t, board.Board{{0, 0, 1, 2}}, b, "Scoring should not modify the board")
}

func TestBestMove(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the only legal move whatever its score", func(t *testing.T) {
		hatesRight := func(b board.Board, _ int) int {
			for r := 0; r < board.Size; r++ {
				if b[r][0] == 0 {
					return -1000
				}
			}
			return 1000
		}
		s := New(WithDepth(1), WithSeed(1), WithEvaluator(hatesRight), WithMetrics())

		got, metric, err := s.BestMove(ctx, onlyRight, 3)
		require.NoError(t, err)
		require.Equal(t, board.Right, got)
		require.Equal(t, 3, metric.Rejected, "Every better path starts with a no-op move")
		require.Equal(t, 4, metric.Scored)
	})

	t.Run("deeper search still returns the only legal move", func(t *testing.T) {
		s := New(WithDepth(3), WithSeed(2))
		got, _, err := s.BestMove(ctx, onlyRight, 1)
		require.NoError(t, err)
		require.Equal(t, board.Right, got)
	})

	t.Run("takes the merge that sets a new record", func(t *testing.T) {
		b := board.Board{{0, 0, 384, 384}}
		for depth := 1; depth <= 2; depth++ {
			s := New(WithDepth(depth), WithSeed(3))
			got, _, err := s.BestMove(ctx, b, 3)
			require.NoError(t, err)
			require.Equal(t, board.Right, got, "depth %d", depth)
		}
	})

	t.Run("mean keeps fractional differences", func(t *testing.T) {
		// Right,Right totals 10 and Left,Left totals 11. Truncated means would tie
		// at 5 and leave Right first in enumeration order.
		byColumn := [board.Size]int{6, 5, 0, 5}
		sixColumn := func(b board.Board, _ int) int {
			for r := range b {
				for c, v := range b[r] {
					if v == 6 {
						return byColumn[c]
					}
				}
			}
			return 0
		}
		s := New(WithDepth(2), WithSeed(7), WithEvaluator(sixColumn))

		got, _, err := s.BestMove(ctx, board.Board{{0, 0, 6, 0}}, 1)
		require.NoError(t, err)
		require.Equal(t, board.Left, got)
	})

	t.Run("result does not depend on the number of goroutines", func(t *testing.T) {
		sequential := New(WithDepth(3), WithSeed(4), WithGoroutines(1))
		parallel := New(WithDepth(3), WithSeed(4), WithGoroutines(16))

		want, _, err := sequential.BestMove(ctx, midGame, 2)
		require.NoError(t, err)
		got, _, err := parallel.BestMove(ctx, midGame, 2)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("scores every path without a budget", func(t *testing.T) {
		s := New(WithDepth(3), WithSeed(5), WithMetrics())
		_, metric, err := s.BestMove(ctx, midGame, 1)
		require.NoError(t, err)
		require.Equal(t, 64, metric.Paths)
		require.Equal(t, 64, metric.Scored)
		require.False(t, metric.BudgetExceeded)
	})

	t.Run("exhausted budget still yields a legal move", func(t *testing.T) {
		s := New(WithDepth(6), WithSeed(6), WithDuration(time.Nanosecond), WithMetrics())
		got, metric, err := s.BestMove(ctx, midGame, 1)
		require.NoError(t, err)
		require.True(t, midGame.CanMove(got))
		require.GreaterOrEqual(t, metric.Scored, 4)
		require.Equal(t, metric.Scored < metric.Paths, metric.BudgetExceeded)
	})

	t.Run("fails fast on a terminal board", func(t *testing.T) {
		terminal := board.Board{
			{3, 6, 3, 6},
			{6, 3, 6, 3},
			{3, 6, 3, 6},
			{6, 3, 6, 3},
		}
		_, _, err := New(WithDepth(2)).BestMove(ctx, terminal, 1)
		require.ErrorIs(t, err, ErrNoLegalMove)
	})

	t.Run("fails fast when nothing can move", func(t *testing.T) {
		_, _, err := New(WithDepth(1)).BestMove(ctx, board.Board{}, 1)
		require.ErrorIs(t, err, ErrNoLegalMove)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := New(WithDepth(2)).BestMove(cancelled, midGame, 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestOptions(t *testing.T) {
	s := New(WithDepth(0), WithGoroutines(-1), WithDuration(-time.Second), WithEvaluator(nil))
	require.Equal(t, DefaultDepth, s.Depth(), "Invalid options should keep defaults")
	require.Positive(t, s.goroutines)
	require.Zero(t, s.duration)
	require.NotNil(t, s.evaluate)
}
