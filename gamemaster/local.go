package gamemaster

import (
	"context"
	"sync"

	"golang.org/x/exp/rand"

	"threes/board"
	"threes/game"
)

// Local is an in-process Backend over a game.Game. It is safe for concurrent
// use.
type Local struct {
	mu    sync.Mutex
	game  *game.Game
	rng   *rand.Rand
	start board.Board
}

func NewLocal(rng *rand.Rand) *Local {
	return NewLocalWithBoard(board.Board{}, rng)
}

// NewLocalWithBoard starts every session of l on b. An empty b starts each
// session on a generated board.
func NewLocalWithBoard(b board.Board, rng *rand.Rand) *Local {
	return &Local{
		game:  game.NewWithBoard(b, rng),
		rng:   rng,
		start: b,
	}
}

func (l *Local) Board(ctx context.Context) (board.Board, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.Board(), ctx.Err()
}

func (l *Local) NextTile(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.NextTile(), ctx.Err()
}

func (l *Local) MakeMove(ctx context.Context, d board.Direction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.Play(d)
}

func (l *Local) State(ctx context.Context) (State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case !l.game.Running():
		return Menu, ctx.Err()
	case l.game.IsOver():
		return Lost, ctx.Err()
	}
	return Playing, ctx.Err()
}

func (l *Local) Restart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.game = game.NewWithBoard(l.start, l.rng)
	return nil
}

// Quit leaves the current session for the menu.
func (l *Local) Quit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.game.Stop()
}

// Score is the final score of the current session's board.
func (l *Local) Score() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.game.Score()
}
