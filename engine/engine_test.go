package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"threes/board"
	"threes/experiments/metrics"
	"threes/gamemaster"
	"threes/searcher"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newSearcher(seed uint64) *searcher.Searcher {
	return searcher.New(searcher.WithDepth(2), searcher.WithGoroutines(2), searcher.WithSeed(seed), searcher.WithMetrics())
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("plays the requested number of games", func(t *testing.T) {
		e := New(gamemaster.NewLocal(newRand(1)), newSearcher(1), WithGames(3))

		summary, err := e.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, summary.Games)
		require.GreaterOrEqual(t, summary.Best, summary.Average)
		require.Positive(t, summary.Average)

		total := 0
		for tile, n := range summary.Distribution {
			require.True(t, board.IsRank(tile))
			total += n
		}
		require.Equal(t, 3, total)
	})

	t.Run("plays through a mirrored backend", func(t *testing.T) {
		e := New(gamemaster.NewMirrored(upsideDown{gamemaster.NewLocal(newRand(2))}), newSearcher(2))
		summary, err := e.Run(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Games)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		e := New(gamemaster.NewLocal(newRand(3)), newSearcher(3))
		_, err := e.Run(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRunGame(t *testing.T) {
	ctx := context.Background()

	t.Run("records every move", func(t *testing.T) {
		local := gamemaster.NewLocal(newRand(4))
		e := New(local, newSearcher(4))

		gameMetric, moveMetrics, err := e.RunGame(ctx)
		require.NoError(t, err)
		require.Len(t, moveMetrics, gameMetric.Moves)
		for i, mm := range moveMetrics {
			require.Equal(t, i+1, mm.Step)
			_, err := board.ParseDirection(mm.Direction)
			require.NoError(t, err)
			require.Equal(t, 16, mm.Paths)
		}

		state, err := local.State(ctx)
		require.NoError(t, err)
		require.Equal(t, gamemaster.Lost, state)
		require.Equal(t, local.Score(), gameMetric.Score)
		require.False(t, gameMetric.EndTime.Before(gameMetric.StartTime))
	})

	t.Run("move limit ends the game", func(t *testing.T) {
		e := New(gamemaster.NewLocal(newRand(5)), newSearcher(5), WithMaxMoves(5))
		gameMetric, moveMetrics, err := e.RunGame(ctx)
		require.NoError(t, err)
		require.Equal(t, 5, gameMetric.Moves)
		require.Len(t, moveMetrics, 5)
		require.Positive(t, gameMetric.Score)
	})

	t.Run("menu is restarted", func(t *testing.T) {
		local := gamemaster.NewLocal(newRand(6))
		local.Quit()
		e := New(local, newSearcher(6), WithMaxMoves(3))

		gameMetric, _, err := e.RunGame(ctx)
		require.NoError(t, err)
		require.Equal(t, 3, gameMetric.Moves)
	})

	t.Run("lost game is restarted before playing", func(t *testing.T) {
		local := gamemaster.NewLocal(newRand(7))
		e := New(local, newSearcher(7), WithMaxMoves(1000))
		_, _, err := e.RunGame(ctx)
		require.NoError(t, err)

		gameMetric, _, err := e.RunGame(ctx)
		require.NoError(t, err)
		require.Positive(t, gameMetric.Moves)
	})

	t.Run("searcher errors are returned", func(t *testing.T) {
		boom := errors.New("boom")
		e := New(gamemaster.NewLocal(newRand(8)), failingSearcher{boom})
		_, _, err := e.RunGame(ctx)
		require.ErrorIs(t, err, boom)
	})

	t.Run("no legal move ends the game", func(t *testing.T) {
		e := New(gamemaster.NewLocal(newRand(9)), failingSearcher{searcher.ErrNoLegalMove})
		gameMetric, _, err := e.RunGame(ctx)
		require.NoError(t, err)
		require.Zero(t, gameMetric.Moves)
	})
}

type failingSearcher struct {
	err error
}

func (s failingSearcher) BestMove(context.Context, board.Board, int) (board.Direction, metrics.SearchMetric, error) {
	return 0, metrics.SearchMetric{}, s.err
}

// upsideDown reports its session's board flipped vertically.
type upsideDown struct {
	*gamemaster.Local
}

func (u upsideDown) Board(ctx context.Context) (board.Board, error) {
	b, err := u.Local.Board(ctx)
	return b.MirrorVertical(), err
}
