package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"threes/board"
	"threes/game"
)

const prompt = "Enter a move (up, down, left, right) or 'quit' to quit:"

// Console lets a person play a game one typed move per line.
type Console struct {
	game *game.Game
	in   *bufio.Scanner
	out  io.Writer
}

func NewConsole(g *game.Game, in io.Reader, out io.Writer) *Console {
	return &Console{
		game: g,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run plays until the board is full, the player quits or the input ends.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprint(c.out, c.game.Board())
	for !c.game.IsOver() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "NEXT TILE IS: %d\n", c.game.NextTile())
		fmt.Fprintln(c.out, prompt)

		if !c.in.Scan() {
			c.game.Stop()
			return c.in.Err()
		}
		input := strings.ToLower(strings.TrimSpace(c.in.Text()))
		if input == "quit" {
			c.game.Stop()
			log.Debug().Int("moves", c.game.Moves()).Msg("player quit")
			return nil
		}
		c.play(input)

		if c.game.IsOver() {
			fmt.Fprintln(c.out, "GAME OVER.")
			fmt.Fprintf(c.out, "Final score: %d\n", c.game.Score())
		}
		fmt.Fprint(c.out, c.game.Board())
	}
	return nil
}

func (c *Console) play(input string) {
	d, err := board.ParseDirection(input)
	if err != nil {
		fmt.Fprintf(c.out, "ERROR: %s is not a valid move.\n", input)
		return
	}
	err = c.game.Play(d)
	switch {
	case errors.Is(err, game.ErrIllegalMove):
		fmt.Fprintln(c.out, "Can't move that direction!")
	case err != nil:
		log.Warn().Err(err).Msg("move rejected")
	}
}
