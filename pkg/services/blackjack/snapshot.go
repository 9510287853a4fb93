package blackjack

import (
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// CardView is a card as seen from outside the table. A hidden card carries
// no rank or suit.
type CardView struct {
	Rank   entities.Rank `json:"rank,omitempty"`
	Suit   entities.Suit `json:"suit,omitempty"`
	Hidden bool          `json:"hidden,omitempty"`
}

// String renders the card, or a placeholder for the hole card
func (v CardView) String() string {
	if v.Hidden {
		return "🂠"
	}
	return string(v.Rank) + string(v.Suit)
}

// Snapshot is the external view of a round. While RoundOver is false the
// dealer's hole card and its share of DealerScore are withheld.
type Snapshot struct {
	RoundID     string          `json:"roundId,omitempty"`
	Phase       Phase           `json:"phase"`
	PlayerHand  []CardView      `json:"playerHand"`
	DealerHand  []CardView      `json:"dealerHand"`
	PlayerScore int             `json:"playerScore"`
	DealerScore int             `json:"dealerScore"`
	Balance     int64           `json:"balance"`
	CurrentBet  int64           `json:"currentBet"`
	RoundOver   bool            `json:"roundOver"`
	Result      entities.Result `json:"result,omitempty"`
	Message     string          `json:"message"`
}

// Snapshot builds the external view of the round
func (r *Round) Snapshot() *Snapshot {
	snap := &Snapshot{
		RoundID:     r.id,
		Phase:       r.phase,
		PlayerHand:  viewCards(r.player.Cards),
		PlayerScore: r.player.Value(),
		Balance:     r.balance,
		CurrentBet:  r.bet,
		RoundOver:   r.phase == PhaseFinished,
	}

	switch r.phase {
	case PhaseFinished:
		snap.DealerHand = viewCards(r.dealer.Cards)
		snap.DealerScore = r.dealer.Value()
		if r.outcome != nil {
			snap.Result = r.outcome.Result
			snap.Message = r.outcome.Message
		}
	case PhaseInProgress:
		snap.DealerHand = redactDealer(r.dealer.Cards)
		if len(r.dealer.Cards) > 0 {
			snap.DealerScore = GetBestScore(r.dealer.Cards[:1])
		}
	default:
		snap.DealerHand = []CardView{}
	}

	return snap
}

func viewCards(cards []entities.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = CardView{Rank: c.Rank, Suit: c.Suit}
	}
	return views
}

// redactDealer shows the up card and one placeholder for everything after it
func redactDealer(cards []entities.Card) []CardView {
	if len(cards) == 0 {
		return []CardView{}
	}
	views := []CardView{{Rank: cards[0].Rank, Suit: cards[0].Suit}}
	if len(cards) > 1 {
		views = append(views, CardView{Hidden: true})
	}
	return views
}
