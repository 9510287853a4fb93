package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// All results in the order they were saved
	results []*entities.RoundResult
	// Map of playerID to indices into results
	playerResults map[string][]int
	// Round IDs already recorded
	rounds map[string]bool
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		playerResults: make(map[string][]int),
		rounds:        make(map[string]bool),
	}
}

// SaveRoundResult stores a round result and indexes it by player
func (r *MemoryRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if err := validateResult(result); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rounds[result.RoundID] {
		return fmt.Errorf("%w: %s", ErrDuplicateRound, result.RoundID)
	}

	r.rounds[result.RoundID] = true
	r.results = append(r.results, copyResult(result))
	r.playerResults[result.PlayerID] = append(r.playerResults[result.PlayerID], len(r.results)-1)
	return nil
}

// GetPlayerResults retrieves a player's results, newest first
func (r *MemoryRepository) GetPlayerResults(ctx context.Context, playerID string, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indices := r.playerResults[playerID]
	out := make([]*entities.RoundResult, 0)
	for i := len(indices) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyResult(r.results[indices[i]]))
	}
	return out, nil
}

// GetRecentResults retrieves the latest results across all players
func (r *MemoryRepository) GetRecentResults(ctx context.Context, limit int) ([]*entities.RoundResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.RoundResult, 0)
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, copyResult(r.results[i]))
	}
	return out, nil
}

// GetPlayerStatistics folds every stored round of the player
func (r *MemoryRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := emptyStatistics(playerID)
	for _, i := range r.playerResults[playerID] {
		stats.Add(r.results[i])
	}
	return stats, nil
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

func copyResult(result *entities.RoundResult) *entities.RoundResult {
	c := *result
	c.PlayerCards = append([]entities.Card(nil), result.PlayerCards...)
	c.DealerCards = append([]entities.Card(nil), result.DealerCards...)
	return &c
}
