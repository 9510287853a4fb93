// Package decktest provides deterministic random sources for rigging deals in tests.
package decktest

import (
	"fmt"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// Stacked is an entities.RandomSource that steers a Fisher–Yates shuffle of a
// freshly reset deck so that the given cards are drawn first, in order.
// The remaining cards keep their canonical relative order. After a full
// shuffle the source rewinds, so every shuffle produces the same deck.
type Stacked struct {
	choices []int
	next    int
}

var _ entities.RandomSource = (*Stacked)(nil)

// NewStacked builds a source whose shuffle leaves top[0] as the first card drawn,
// top[1] as the second, and so on. It panics on duplicate or invalid cards.
func NewStacked(top ...entities.Card) *Stacked {
	seen := make(map[entities.Card]bool, len(top))
	for _, c := range top {
		if !c.IsValid() {
			panic(fmt.Sprintf("decktest: invalid card %v", c))
		}
		if seen[c] {
			panic(fmt.Sprintf("decktest: duplicate card %v", c))
		}
		seen[c] = true
	}

	start := entities.NewDeck().Cards

	// Draw takes from the end, so the first card to deal goes last.
	target := make([]entities.Card, 0, len(start))
	for _, c := range start {
		if !seen[c] {
			target = append(target, c)
		}
	}
	for i := len(top) - 1; i >= 0; i-- {
		target = append(target, top[i])
	}

	cur := make([]entities.Card, len(start))
	copy(cur, start)
	pos := make(map[entities.Card]int, len(cur))
	for i, c := range cur {
		pos[c] = i
	}

	choices := make([]int, 0, len(cur)-1)
	for i := len(cur) - 1; i > 0; i-- {
		j := pos[target[i]]
		choices = append(choices, j)
		cur[i], cur[j] = cur[j], cur[i]
		pos[cur[i]] = i
		pos[cur[j]] = j
	}

	return &Stacked{choices: choices}
}

// Intn returns the next precomputed swap index
func (s *Stacked) Intn(n int) int {
	if s.next >= len(s.choices) {
		s.next = 0
	}
	j := s.choices[s.next]
	s.next++
	if j >= n {
		panic(fmt.Sprintf("decktest: Intn(%d) called out of sequence", n))
	}
	return j
}

// Identity is a RandomSource that leaves the deck in canonical order
type Identity struct{}

// Intn always picks the current index, so no card moves
func (Identity) Intn(n int) int {
	return n - 1
}

// C is shorthand for building a card in tests, e.g. decktest.C("10", "♠")
func C(rank entities.Rank, suit entities.Suit) entities.Card {
	return entities.NewCard(rank, suit)
}
