package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

var (
	ErrInvalidResult  = errors.New("invalid round result")
	ErrDuplicateRound = errors.New("round already recorded")
)

// Repository stores the history of finished rounds
type Repository interface {
	// SaveRoundResult records a finished round. A round ID can only be saved once.
	SaveRoundResult(ctx context.Context, result *entities.RoundResult) error

	// GetPlayerResults returns a player's rounds, newest first
	GetPlayerResults(ctx context.Context, playerID string, limit int) ([]*entities.RoundResult, error)

	// GetRecentResults returns the latest rounds across all players
	GetRecentResults(ctx context.Context, limit int) ([]*entities.RoundResult, error)

	// GetPlayerStatistics aggregates every round a player has finished
	GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error)

	// Close closes any resources used by the repository
	Close() error
}

// validateResult checks the fields every implementation keys on
func validateResult(result *entities.RoundResult) error {
	switch {
	case result == nil:
		return fmt.Errorf("%w: nil result", ErrInvalidResult)
	case result.RoundID == "":
		return fmt.Errorf("%w: missing round id", ErrInvalidResult)
	case result.PlayerID == "":
		return fmt.Errorf("%w: missing player id", ErrInvalidResult)
	case result.CompletedAt.IsZero():
		return fmt.Errorf("%w: missing completion time", ErrInvalidResult)
	}
	return nil
}

func emptyStatistics(playerID string) *entities.PlayerStatistics {
	return &entities.PlayerStatistics{
		PlayerID: playerID,
		GameType: entities.GameTypeBlackjack,
	}
}
