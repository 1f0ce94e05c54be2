package game

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"

	"threes/board"
	"threes/deck"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over - no moves allowed")
)

// Game holds the state of one session: the board, the deck and the card to be
// placed after the next move. Game is not safe for concurrent use; searches
// work on the board value returned by Board.
type Game struct {
	board   board.Board
	deck    *deck.Deck
	next    int
	rng     *rand.Rand
	running bool
	moves   int
}

// New starts a game on a freshly generated board.
func New(rng *rand.Rand) *Game {
	return NewWithBoard(board.Board{}, rng)
}

// NewWithBoard starts a game on b. An empty b is replaced by a generated
// starting board.
func NewWithBoard(b board.Board, rng *rand.Rand) *Game {
	if b == (board.Board{}) {
		b = board.Generate(rng)
	}
	g := &Game{
		board:   b,
		deck:    deck.New(rng),
		rng:     rng,
		running: true,
	}
	g.next = g.deck.Draw()
	return g
}

// Play shifts the board in d, places the pending card on the edge the move
// left behind and draws the next one. A move that changes nothing is
// rejected with ErrIllegalMove and leaves the deck untouched.
func (g *Game) Play(d board.Direction) error {
	if g.IsOver() {
		return ErrGameOver
	}
	shifted := g.board.Move(d)
	if shifted.Equal(g.board) {
		return fmt.Errorf("%w: cannot move %s", ErrIllegalMove, d)
	}
	g.board = shifted.PlaceCard(d, g.next, g.rng)
	g.next = g.deck.Draw()
	g.moves++
	return nil
}

func (g *Game) Board() board.Board {
	return g.board
}

func (g *Game) NextTile() int {
	return g.next
}

func (g *Game) Deck() *deck.Deck {
	return g.deck
}

func (g *Game) Moves() int {
	return g.moves
}

func (g *Game) Running() bool {
	return g.running
}

// Stop ends the session without scoring it.
func (g *Game) Stop() {
	g.running = false
}

// IsOver reports whether the session was stopped or no move is left.
func (g *Game) IsOver() bool {
	return !g.running || g.board.IsTerminal()
}

func (g *Game) Score() int {
	return board.FinalScore(g.board)
}

// Max returns the highest tile on the board.
func (g *Game) Max() int {
	return g.board.Max()
}
