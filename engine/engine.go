package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"threes/board"
	"threes/experiments/metrics"
	"threes/gamemaster"
	"threes/searcher"
)

// MaxMoves caps a single game in case the backend never reports it lost.
const MaxMoves = 10000

// Searcher picks the move to play on a board given the card that comes next.
type Searcher interface {
	BestMove(ctx context.Context, b board.Board, nextTile int) (board.Direction, metrics.SearchMetric, error)
}

type Option func(e *Engine)

func WithGames(games int) Option {
	return func(e *Engine) {
		if games > 0 {
			e.games = games
		}
	}
}

func WithMaxMoves(moves int) Option {
	return func(e *Engine) {
		if moves > 0 {
			e.maxMoves = moves
		}
	}
}

// Engine plays games on a backend with moves chosen by a searcher.
type Engine struct {
	backend  gamemaster.Backend
	searcher Searcher
	games    int
	maxMoves int
}

func New(backend gamemaster.Backend, s Searcher, options ...Option) *Engine {
	e := &Engine{
		backend:  backend,
		searcher: s,
		games:    1,
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run plays the configured number of games and summarizes them.
func (e *Engine) Run(ctx context.Context) (metrics.Summary, error) {
	begin := time.Now()
	games := make([]metrics.GameMetric, 0, e.games)
	for i := 0; i < e.games; i++ {
		log.Info().Msgf("starting game %d of %d...", i+1, e.games)
		gameMetric, _, err := e.RunGame(ctx)
		if err != nil {
			return metrics.Summarize(games, time.Since(begin)), fmt.Errorf("game %d: %w", i+1, err)
		}
		games = append(games, gameMetric)
		log.Info().
			Int("game", i+1).
			Int("score", gameMetric.Score).
			Int("max", gameMetric.MaxTile).
			Int("moves", gameMetric.Moves).
			Dur("duration", gameMetric.Duration).
			Msg("game over")
	}
	return metrics.Summarize(games, time.Since(begin)), nil
}

// RunGame plays one game to the end. A backend that is not in a game is
// restarted first.
func (e *Engine) RunGame(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	state, err := e.backend.State(ctx)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	if state != gamemaster.Playing {
		if err := e.backend.Restart(ctx); err != nil {
			return metrics.GameMetric{}, nil, fmt.Errorf("failed to restart: %w", err)
		}
	}

	gameMetric := metrics.GameMetric{StartTime: time.Now()}
	var moveMetrics []metrics.MoveMetric
	for {
		state, err := e.backend.State(ctx)
		if err != nil {
			return gameMetric, moveMetrics, err
		}

		switch state {
		case gamemaster.Menu:
			log.Warn().Int("moves", gameMetric.Moves).Msg("backend left the game, restarting")
			if err := e.backend.Restart(ctx); err != nil {
				return gameMetric, moveMetrics, fmt.Errorf("failed to restart: %w", err)
			}
			gameMetric = metrics.GameMetric{StartTime: time.Now()}
			moveMetrics = nil
			continue
		case gamemaster.Lost:
			return e.finish(ctx, gameMetric, moveMetrics)
		}

		if gameMetric.Moves >= e.maxMoves {
			log.Warn().Int("moves", gameMetric.Moves).Msg("move limit reached")
			return e.finish(ctx, gameMetric, moveMetrics)
		}

		b, err := e.backend.Board(ctx)
		if err != nil {
			return gameMetric, moveMetrics, err
		}
		next, err := e.backend.NextTile(ctx)
		if err != nil {
			return gameMetric, moveMetrics, err
		}

		d, searchMetric, err := e.searcher.BestMove(ctx, b, next)
		if errors.Is(err, searcher.ErrNoLegalMove) {
			return e.finish(ctx, gameMetric, moveMetrics)
		}
		if err != nil {
			return gameMetric, moveMetrics, err
		}
		if err := e.backend.MakeMove(ctx, d); err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("failed to play %s: %w", d, err)
		}

		gameMetric.Moves++
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         gameMetric.Moves,
			Direction:    d.String(),
			SearchMetric: searchMetric,
		})
	}
}

func (e *Engine) finish(ctx context.Context, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric) (metrics.GameMetric, []metrics.MoveMetric, error) {
	b, err := e.backend.Board(ctx)
	if err != nil {
		return gameMetric, moveMetrics, err
	}
	gameMetric.Score = board.FinalScore(b)
	gameMetric.MaxTile = b.Max()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	return gameMetric, moveMetrics, nil
}
