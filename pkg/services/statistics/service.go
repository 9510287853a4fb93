package statistics

import (
	"context"
	"fmt"

	"github.com/fadedpez/blackjacktable/pkg/entities"
	"github.com/fadedpez/blackjacktable/pkg/repositories/game"
)

// DefaultRecentRounds is how many rounds a summary lists when no limit is given
const DefaultRecentRounds = 5

// Service provides methods for retrieving and processing player statistics
type Service struct {
	repository game.Repository
}

// NewService creates a new statistics service
func NewService(repository game.Repository) *Service {
	return &Service{
		repository: repository,
	}
}

// PlayerSummary is a player's record with derived rates and latest rounds
type PlayerSummary struct {
	*entities.PlayerStatistics
	WinRate    float64                 `json:"win_rate"`
	NetProfit  int64                   `json:"net_profit"`
	ProfitRate float64                 `json:"profit_rate"`
	Recent     []*entities.RoundResult `json:"recent"`
}

// GetPlayerSummary loads the statistics and the latest rounds of a player
func (s *Service) GetPlayerSummary(ctx context.Context, playerID string, recent int) (*PlayerSummary, error) {
	if recent < 1 {
		recent = DefaultRecentRounds
	}

	stats, err := s.repository.GetPlayerStatistics(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("error loading statistics: %w", err)
	}

	rounds, err := s.repository.GetPlayerResults(ctx, playerID, recent)
	if err != nil {
		return nil, fmt.Errorf("error loading recent rounds: %w", err)
	}

	summary := &PlayerSummary{
		PlayerStatistics: stats,
		WinRate:          stats.WinRate(),
		NetProfit:        stats.NetProfit(),
		Recent:           rounds,
	}
	if stats.TotalBet > 0 {
		summary.ProfitRate = float64(summary.NetProfit) / float64(stats.TotalBet)
	}

	return summary, nil
}
