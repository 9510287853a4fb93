package entities

import "time"

// PlayerStatistics represents aggregated statistics for a player in a specific game type
type PlayerStatistics struct {
	PlayerID      string    `json:"player_id"`
	GameType      GameType  `json:"game_type"`
	GamesPlayed   int       `json:"games_played"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Pushes        int       `json:"pushes"`
	Naturals      int       `json:"naturals"`
	Busts         int       `json:"busts"`
	TotalBet      int64     `json:"total_bet"`
	TotalWinnings int64     `json:"total_winnings"`
	TotalLosses   int64     `json:"total_losses"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Add folds a finished round into the statistics
func (s *PlayerStatistics) Add(r *RoundResult) {
	s.GamesPlayed++
	switch r.Result {
	case ResultWin:
		s.Wins++
	case ResultLose:
		s.Losses++
	case ResultPush:
		s.Pushes++
	}
	if r.Natural {
		s.Naturals++
	}
	if r.PlayerBusted {
		s.Busts++
	}
	s.TotalBet += r.Bet
	if r.Delta > 0 {
		s.TotalWinnings += r.Delta
	} else {
		s.TotalLosses -= r.Delta
	}
	if r.CompletedAt.After(s.LastUpdated) {
		s.LastUpdated = r.CompletedAt
	}
}

// NetProfit calculates the player's net profit
func (s *PlayerStatistics) NetProfit() int64 {
	return s.TotalWinnings - s.TotalLosses
}

// WinRate calculates the player's win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100.0
}
