package blackjack

import (
	"strconv"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

const (
	BlackjackScore       = 21 // Best possible hand total
	DealerStandThreshold = 17 // Dealer draws below this total, soft or hard
	DefaultBet           = 10 // Bet used when a round is started without one
	StartingBalance      = 1000

	aceHigh   = 11
	aceDemote = 10
)

// Outcome messages
const (
	MessagePlayerBusts = "player busts, dealer wins"
	MessageDealerBusts = "dealer busts, player wins"
	MessagePlayerWins  = "player wins"
	MessageDealerWins  = "dealer wins"
	MessagePush        = "push"
)

// GetCardValue returns the base value of a card, counting an ace as 11
func GetCardValue(card entities.Card) int {
	switch card.Rank {
	case entities.Ace:
		return aceHigh
	case entities.Jack, entities.Queen, entities.King:
		return 10
	default:
		val, _ := strconv.Atoi(string(card.Rank))
		return val
	}
}

func IsAce(card entities.Card) bool {
	return card.Rank == entities.Ace
}

// scoreHand counts every ace as 11, then demotes aces to 1 one at a time
// while the total is over 21. It returns the total and how many aces are
// still counted high.
func scoreHand(cards []entities.Card) (total int, softAces int) {
	for _, card := range cards {
		total += GetCardValue(card)
		if IsAce(card) {
			softAces++
		}
	}

	for total > BlackjackScore && softAces > 0 {
		total -= aceDemote
		softAces--
	}

	return total, softAces
}

// GetBestScore returns the best total for the cards. The result may exceed 21.
func GetBestScore(cards []entities.Card) int {
	total, _ := scoreHand(cards)
	return total
}

// IsSoft reports whether the best total still counts an ace as 11
func IsSoft(cards []entities.Card) bool {
	_, softAces := scoreHand(cards)
	return softAces > 0
}

// IsBust checks if a hand exceeds 21
func IsBust(cards []entities.Card) bool {
	return GetBestScore(cards) > BlackjackScore
}

// IsNatural reports a two-card 21
func IsNatural(cards []entities.Card) bool {
	return len(cards) == 2 && GetBestScore(cards) == BlackjackScore
}

// DealerShouldHit applies the house rule: draw below 17, stand on any 17
func DealerShouldHit(cards []entities.Card) bool {
	return GetBestScore(cards) < DealerStandThreshold
}

// Outcome is the resolution of a finished round
type Outcome struct {
	Result       entities.Result
	Delta        int64 // Balance change: +bet, -bet or 0
	Message      string
	PlayerScore  int
	DealerScore  int
	PlayerBusted bool
	DealerBusted bool
	Natural      bool
}

// ResolveOutcome decides the round from the final scores. The first matching
// rule wins: player bust, dealer bust, higher score, push.
func ResolveOutcome(playerScore, dealerScore int, bet int64) Outcome {
	o := Outcome{
		PlayerScore:  playerScore,
		DealerScore:  dealerScore,
		PlayerBusted: playerScore > BlackjackScore,
		DealerBusted: dealerScore > BlackjackScore,
	}

	switch {
	case o.PlayerBusted:
		o.Result, o.Delta, o.Message = entities.ResultLose, -bet, MessagePlayerBusts
	case o.DealerBusted:
		o.Result, o.Delta, o.Message = entities.ResultWin, bet, MessageDealerBusts
	case playerScore > dealerScore:
		o.Result, o.Delta, o.Message = entities.ResultWin, bet, MessagePlayerWins
	case dealerScore > playerScore:
		o.Result, o.Delta, o.Message = entities.ResultLose, -bet, MessageDealerWins
	default:
		o.Result, o.Delta, o.Message = entities.ResultPush, 0, MessagePush
	}

	return o
}
