package entities

import (
	"errors"
	"math/rand"
	"time"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// ErrEmptyDeck is returned when drawing from a deck with no cards left
var ErrEmptyDeck = errors.New("deck is empty")

// RandomSource supplies the random indices used to shuffle a deck.
// *rand.Rand satisfies it.
type RandomSource interface {
	// Intn returns a uniformly distributed int in [0, n)
	Intn(n int) int
}

// NewRandomSource returns a RandomSource seeded from the current time
func NewRandomSource() RandomSource {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewSeededSource returns a deterministic RandomSource
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// Deck is the ordered sequence of cards not yet dealt. The top of the
// deck is the end of Cards.
type Deck struct {
	Cards []Card
}

// NewDeck creates a new deck of 52 cards, one of each rank and suit, in canonical order
func NewDeck() *Deck {
	d := &Deck{}
	d.Reset()
	return d
}

// Reset repopulates the deck with all 52 cards in canonical order
func (d *Deck) Reset() {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	d.Cards = cards
}

// Shuffle permutes the deck with Fisher–Yates using src
func (d *Deck) Shuffle(src RandomSource) {
	for i := len(d.Cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.Cards) == 0 {
		return Card{}, ErrEmptyDeck
	}
	top := len(d.Cards) - 1
	card := d.Cards[top]
	d.Cards = d.Cards[:top]
	return card, nil
}

// Remaining returns the number of cards left
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// Clone returns an independent copy of the deck
func (d *Deck) Clone() *Deck {
	cards := make([]Card, len(d.Cards))
	copy(cards, d.Cards)
	return &Deck{Cards: cards}
}
