package deck

import (
	"slices"
	"sync"

	"golang.org/x/exp/rand"
)

// Starting is the twelve-card deck a game opens with.
var Starting = []int{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}

// Refill replaces the deck whenever it runs out.
var Refill = []int{1, 1, 2, 2, 3, 3, 6, 6, 12, 12, 24, 24}

// Deck is a multiset of card ranks. Draws are safe for concurrent use.
type Deck struct {
	mu    sync.Mutex
	cards []int
	rng   *rand.Rand
}

func New(rng *rand.Rand) *Deck {
	return &Deck{
		cards: slices.Clone(Starting),
		rng:   rng,
	}
}

// Draw removes and returns a uniformly random card, refilling the deck first
// if it is empty.
func (d *Deck) Draw() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.cards) == 0 {
		d.cards = slices.Clone(Refill)
	}
	i := d.rng.Intn(len(d.cards))
	card := d.cards[i]
	d.cards = slices.Delete(d.cards, i, i+1)
	return card
}

func (d *Deck) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

// Remaining returns a copy of the cards left in the deck.
func (d *Deck) Remaining() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.cards)
}
