package entities

import "time"

// GameType identifies the game a result belongs to
type GameType string

const GameTypeBlackjack GameType = "blackjack"

// Result represents the outcome of a round from the player's side
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLose Result = "LOSE"
	ResultPush Result = "PUSH"
)

// String returns the string representation of the result
func (r Result) String() string {
	return string(r)
}

// IsWin returns true if this result represents a win
func (r Result) IsWin() bool {
	return r == ResultWin
}

// RoundResult records one finished round for one player
type RoundResult struct {
	RoundID      string    `json:"round_id"`
	PlayerID     string    `json:"player_id"`
	GameType     GameType  `json:"game_type"`
	Bet          int64     `json:"bet"`
	Result       Result    `json:"result"`
	Message      string    `json:"message"`
	PlayerScore  int       `json:"player_score"`
	DealerScore  int       `json:"dealer_score"`
	PlayerCards  []Card    `json:"player_cards"`
	DealerCards  []Card    `json:"dealer_cards"`
	Delta        int64     `json:"delta"`
	BalanceAfter int64     `json:"balance_after"`
	Natural      bool      `json:"natural"`
	PlayerBusted bool      `json:"player_busted"`
	DealerBusted bool      `json:"dealer_busted"`
	CompletedAt  time.Time `json:"completed_at"`
}
