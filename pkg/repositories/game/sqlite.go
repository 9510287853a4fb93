package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// SQLiteRepository implements Repository on the shared SQLite database.
// The round_results table comes from pkg/db/migrations.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wraps an open, migrated database
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectRoundColumns = `
	SELECT round_id, player_id, game_type, bet, result, message,
		player_score, dealer_score, player_cards, dealer_cards,
		delta, balance_after, is_natural, player_busted, dealer_busted, completed_at
	FROM round_results`

// SaveRoundResult inserts a finished round
func (r *SQLiteRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if err := validateResult(result); err != nil {
		return err
	}

	playerCards, err := json.Marshal(result.PlayerCards)
	if err != nil {
		return fmt.Errorf("error marshaling player cards: %w", err)
	}
	dealerCards, err := json.Marshal(result.DealerCards)
	if err != nil {
		return fmt.Errorf("error marshaling dealer cards: %w", err)
	}

	gameType := result.GameType
	if gameType == "" {
		gameType = entities.GameTypeBlackjack
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO round_results (
			round_id, player_id, game_type, bet, result, message,
			player_score, dealer_score, player_cards, dealer_cards,
			delta, balance_after, is_natural, player_busted, dealer_busted, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RoundID, result.PlayerID, gameType, result.Bet, result.Result, result.Message,
		result.PlayerScore, result.DealerScore, string(playerCards), string(dealerCards),
		result.Delta, result.BalanceAfter, result.Natural, result.PlayerBusted, result.DealerBusted,
		result.CompletedAt.UTC(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %s", ErrDuplicateRound, result.RoundID)
		}
		return fmt.Errorf("error saving round result: %w", err)
	}

	return nil
}

// GetPlayerResults retrieves a player's results, newest first
func (r *SQLiteRepository) GetPlayerResults(ctx context.Context, playerID string, limit int) ([]*entities.RoundResult, error) {
	return r.query(ctx, selectRoundColumns+`
		WHERE player_id = ?
		ORDER BY completed_at DESC, rowid DESC
		LIMIT ?`, playerID, limit)
}

// GetRecentResults retrieves the latest results across all players
func (r *SQLiteRepository) GetRecentResults(ctx context.Context, limit int) ([]*entities.RoundResult, error) {
	return r.query(ctx, selectRoundColumns+`
		ORDER BY completed_at DESC, rowid DESC
		LIMIT ?`, limit)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entities.RoundResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying round results: %w", err)
	}
	defer rows.Close()

	results := make([]*entities.RoundResult, 0)
	for rows.Next() {
		var result entities.RoundResult
		var playerCards, dealerCards string

		err := rows.Scan(
			&result.RoundID, &result.PlayerID, &result.GameType, &result.Bet, &result.Result, &result.Message,
			&result.PlayerScore, &result.DealerScore, &playerCards, &dealerCards,
			&result.Delta, &result.BalanceAfter, &result.Natural, &result.PlayerBusted, &result.DealerBusted,
			&result.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning round result: %w", err)
		}

		if err := json.Unmarshal([]byte(playerCards), &result.PlayerCards); err != nil {
			return nil, fmt.Errorf("error unmarshaling player cards: %w", err)
		}
		if err := json.Unmarshal([]byte(dealerCards), &result.DealerCards); err != nil {
			return nil, fmt.Errorf("error unmarshaling dealer cards: %w", err)
		}

		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round results: %w", err)
	}

	return results, nil
}

// GetPlayerStatistics aggregates a player's rounds in SQL
func (r *SQLiteRepository) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	stats := emptyStatistics(playerID)

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN result = 'WIN' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'LOSE' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN result = 'PUSH' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(is_natural), 0),
			COALESCE(SUM(player_busted), 0),
			COALESCE(SUM(bet), 0),
			COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0)
		FROM round_results
		WHERE player_id = ?`, playerID,
	).Scan(
		&stats.GamesPlayed, &stats.Wins, &stats.Losses, &stats.Pushes,
		&stats.Naturals, &stats.Busts, &stats.TotalBet, &stats.TotalWinnings, &stats.TotalLosses,
	)
	if err != nil {
		return nil, fmt.Errorf("error aggregating statistics: %w", err)
	}

	if stats.GamesPlayed == 0 {
		return stats, nil
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT completed_at FROM round_results
		WHERE player_id = ?
		ORDER BY completed_at DESC
		LIMIT 1`, playerID,
	).Scan(&stats.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("error reading last round time: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
