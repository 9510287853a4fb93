package entities

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeckTestSuite struct {
	suite.Suite
}

func TestDeckSuite(t *testing.T) {
	suite.Run(t, new(DeckTestSuite))
}

// sequenceSource returns the queued indices in order
type sequenceSource struct {
	values []int
	calls  []int
}

func (s *sequenceSource) Intn(n int) int {
	s.calls = append(s.calls, n)
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func (s *DeckTestSuite) TestCardString() {
	testCases := []struct {
		name     string
		card     Card
		expected string
	}{
		{"ace of hearts", NewCard(Ace, Hearts), "A♥"},
		{"ten of diamonds", NewCard(Ten, Diamonds), "10♦"},
		{"king of clubs", NewCard(King, Clubs), "K♣"},
		{"queen of spades", NewCard(Queen, Spades), "Q♠"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, tc.card.String())
		})
	}
}

func (s *DeckTestSuite) TestCardValidity() {
	s.True(NewCard(Ten, Spades).IsValid())
	s.False(Card{Rank: "1", Suit: Spades}.IsValid())
	s.False(Card{Rank: Ten, Suit: "X"}.IsValid())
	s.False(Card{}.IsValid())
	s.True(Hearts.IsRed())
	s.False(Clubs.IsRed())
}

func (s *DeckTestSuite) TestResetCanonicalOrder() {
	deck := NewDeck()

	s.Len(deck.Cards, DeckSize)
	s.Equal(NewCard(Two, Spades), deck.Cards[0], "Canonical order starts with the 2 of the first suit")
	s.Equal(NewCard(Ace, Clubs), deck.Cards[DeckSize-1], "Canonical order ends with the ace of the last suit")

	seen := make(map[Card]int)
	for _, card := range deck.Cards {
		seen[card]++
	}
	s.Len(seen, DeckSize, "Every card should be distinct")
	for card, count := range seen {
		s.Equal(1, count, "Card %v should appear exactly once", card)
	}
}

func (s *DeckTestSuite) TestResetRestoresFullDeck() {
	deck := NewDeck()
	for i := 0; i < 10; i++ {
		_, err := deck.Draw()
		s.Require().NoError(err)
	}
	s.Equal(42, deck.Remaining())

	deck.Reset()

	s.Equal(NewDeck().Cards, deck.Cards)
}

func (s *DeckTestSuite) TestShuffleIsFisherYates() {
	deck := &Deck{Cards: []Card{
		NewCard(Two, Spades),
		NewCard(Three, Spades),
		NewCard(Four, Spades),
	}}
	src := &sequenceSource{values: []int{0, 0}}

	deck.Shuffle(src)

	// i=2 swaps with 0, then i=1 swaps with 0
	s.Equal([]int{3, 2}, src.calls, "Intn should be asked for [0, i] from the last index down to 1")
	s.Equal([]Card{
		NewCard(Three, Spades),
		NewCard(Four, Spades),
		NewCard(Two, Spades),
	}, deck.Cards)
}

func (s *DeckTestSuite) TestShuffleKeepsEveryCard() {
	deck := NewDeck()
	deck.Shuffle(NewSeededSource(42))

	s.Len(deck.Cards, DeckSize)
	s.NotEqual(NewDeck().Cards, deck.Cards, "Seeded shuffle should move cards")
	s.ElementsMatch(NewDeck().Cards, deck.Cards, "Shuffle must not lose or duplicate cards")
}

func (s *DeckTestSuite) TestShuffleDeterministicForSeed() {
	a := NewDeck()
	b := NewDeck()

	a.Shuffle(NewSeededSource(7))
	b.Shuffle(NewSeededSource(7))

	s.Equal(a.Cards, b.Cards)
}

func (s *DeckTestSuite) TestDrawTakesFromTop() {
	deck := NewDeck()
	top := deck.Cards[len(deck.Cards)-1]

	card, err := deck.Draw()

	s.NoError(err)
	s.Equal(top, card)
	s.Equal(DeckSize-1, deck.Remaining())
	s.NotContains(deck.Cards, card)
}

func (s *DeckTestSuite) TestDrawEmptyDeck() {
	deck := &Deck{}

	card, err := deck.Draw()

	s.ErrorIs(err, ErrEmptyDeck)
	s.Equal(Card{}, card)
}

func (s *DeckTestSuite) TestDrawAll() {
	deck := NewDeck()
	drawn := make(map[Card]bool)

	for i := 0; i < DeckSize; i++ {
		card, err := deck.Draw()
		s.Require().NoError(err)
		s.False(drawn[card], "Card %v drawn twice", card)
		drawn[card] = true
	}

	_, err := deck.Draw()
	s.ErrorIs(err, ErrEmptyDeck)
}

func (s *DeckTestSuite) TestClone() {
	deck := NewDeck()
	clone := deck.Clone()

	_, err := clone.Draw()
	s.Require().NoError(err)

	s.Equal(DeckSize, deck.Remaining(), "Drawing from a clone must not affect the original")
	s.Equal(DeckSize-1, clone.Remaining())
}
