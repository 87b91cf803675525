package deck

import rand "math/rand/v2"

// New returns the 52 canonical cards in a fixed order.
func New() []Card {
	cards := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Shuffle returns a new uniformly random permutation of cards using
// Fisher-Yates. The input slice is not mutated.
func Shuffle(rng *rand.Rand, cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Deck is a shuffled deck with a deal cursor. It is a plain value so that
// a game snapshot captures the exact remaining cards.
type Deck struct {
	Cards  []Card `json:"cards"`
	Cursor int    `json:"cursor"`
}

// NewShuffled creates a freshly shuffled 52-card deck.
func NewShuffled(rng *rand.Rand) Deck {
	return Deck{Cards: Shuffle(rng, New())}
}

// Deal returns the next n cards and advances the cursor. Dealing past the
// end returns fewer cards rather than erroring; callers control total draws
// against the 52-card bound.
func (d *Deck) Deal(n int) []Card {
	remaining := len(d.Cards) - d.Cursor
	if n > remaining {
		n = remaining
	}
	if n <= 0 {
		return nil
	}
	cards := d.Cards[d.Cursor : d.Cursor+n]
	d.Cursor += n
	return cards
}

// Burn discards the next card before a street is dealt.
func (d *Deck) Burn() {
	d.Deal(1)
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.Cards) - d.Cursor
}
