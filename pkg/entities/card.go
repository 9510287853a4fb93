package entities

// Suit represents a card suit

type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Suits lists the suits in canonical deck order
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank represents a card rank

type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Ranks lists the ranks in canonical deck order
var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// Card represents a playing card. Cards are compared by value.

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// NewCard creates a new card

func NewCard(rank Rank, suit Suit) Card {
	return Card{
		Rank: rank,
		Suit: suit,
	}
}

// String returns the rank followed by the suit, e.g. "10♠"

func (c Card) String() string {
	return string(c.Rank) + string(c.Suit)
}

// IsValid reports whether the card is one of the 52 standard cards
func (c Card) IsValid() bool {
	return c.Rank.IsValid() && c.Suit.IsValid()
}

// IsValid reports whether r is a standard rank
func (r Rank) IsValid() bool {
	for _, rank := range Ranks {
		if r == rank {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a standard suit
func (s Suit) IsValid() bool {
	for _, suit := range Suits {
		if s == suit {
			return true
		}
	}
	return false
}

// IsRed reports whether the suit is hearts or diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}
