package blackjack

import (
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// Hand represents the cards held by the player or the dealer, in the order received
type Hand struct {
	Cards []entities.Card
}

// NewHand creates a new empty hand
func NewHand() *Hand {
	return &Hand{
		Cards: make([]entities.Card, 0, 4),
	}
}

// AddCard adds a card to the hand
func (h *Hand) AddCard(card entities.Card) {
	h.Cards = append(h.Cards, card)
}

// Value returns the best possible score for the hand
func (h *Hand) Value() int {
	return GetBestScore(h.Cards)
}

// IsSoft reports whether an ace is still counted as 11
func (h *Hand) IsSoft() bool {
	return IsSoft(h.Cards)
}

// IsBust reports whether the hand is over 21
func (h *Hand) IsBust() bool {
	return IsBust(h.Cards)
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	return len(h.Cards)
}

// Clone returns an independent copy of the hand
func (h *Hand) Clone() *Hand {
	cards := make([]entities.Card, len(h.Cards), cap(h.Cards))
	copy(cards, h.Cards)
	return &Hand{Cards: cards}
}
