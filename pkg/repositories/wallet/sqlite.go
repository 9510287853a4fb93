package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// SQLiteRepository implements Repository on the shared SQLite database.
// The schema comes from pkg/db/migrations.
type SQLiteRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository wraps an open, migrated database
func NewSQLiteRepository(db *sql.DB, logger *logging.Logger) *SQLiteRepository {
	if logger == nil {
		logger = logging.Default
	}
	return &SQLiteRepository{db: db, logger: logger}
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// GetWallet retrieves a wallet by user ID
func (r *SQLiteRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	query := `SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`

	var wallet entities.Wallet
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	return &wallet, nil
}

// SaveWallet creates or updates a wallet
func (r *SQLiteRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	if err := saveWallet(ctx, r.db, wallet); err != nil {
		r.logger.Error("Error saving wallet for user %s: %v", wallet.UserID, err)
		return err
	}
	return nil
}

// SaveWalletWithTransaction stores the wallet and the transaction in one
// database transaction
func (r *SQLiteRepository) SaveWalletWithTransaction(ctx context.Context, wallet *entities.Wallet, transaction *entities.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := saveWallet(ctx, tx, wallet); err != nil {
		tx.Rollback()
		return err
	}

	if err := addTransaction(ctx, tx, transaction); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing wallet update: %w", err)
	}

	r.logger.Debug("Saved wallet for user %s: balance=%d after %s %d",
		wallet.UserID, wallet.Balance, transaction.Type, transaction.Amount)
	return nil
}

func saveWallet(ctx context.Context, db execer, wallet *entities.Wallet) error {
	if wallet.LastUpdated.IsZero() {
		wallet.LastUpdated = time.Now()
	}

	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			balance = excluded.balance,
			updated_at = excluded.updated_at
	`

	_, err := db.ExecContext(ctx, query, wallet.UserID, wallet.Balance, wallet.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("error saving wallet: %w", err)
	}
	return nil
}

func addTransaction(ctx context.Context, db execer, transaction *entities.Transaction) error {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}

	query := `
		INSERT INTO transactions (
			id, user_id, amount, type, reference_id, description, timestamp, balance_after
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		transaction.ID,
		transaction.UserID,
		transaction.Amount,
		transaction.Type,
		transaction.ReferenceID,
		transaction.Description,
		transaction.Timestamp.UTC(),
		transaction.BalanceAfter,
	)
	if err != nil {
		return fmt.Errorf("error adding transaction: %w", err)
	}

	return nil
}

// GetTransactions retrieves recent transactions for a user
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`
	return r.queryTransactions(ctx, query, userID, limit)
}

// GetTransactionsByType retrieves transactions of a specific type
func (r *SQLiteRepository) GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ? AND type = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?
	`
	return r.queryTransactions(ctx, query, userID, transactionType, limit)
}

// GetTransactionByReference finds the transaction recorded for a round
func (r *SQLiteRepository) GetTransactionByReference(ctx context.Context, userID, referenceID string) (*entities.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, reference_id, description, timestamp, balance_after
		FROM transactions
		WHERE user_id = ? AND reference_id = ? AND reference_id != ''
		LIMIT 1
	`
	transactions, err := r.queryTransactions(ctx, query, userID, referenceID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ErrTransactionNotFound
	}
	return transactions[0], nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...interface{}) ([]*entities.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*entities.Transaction, 0)
	for rows.Next() {
		var tx entities.Transaction
		var referenceID, description sql.NullString

		err := rows.Scan(
			&tx.ID,
			&tx.UserID,
			&tx.Amount,
			&tx.Type,
			&referenceID,
			&description,
			&tx.Timestamp,
			&tx.BalanceAfter,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning transaction row: %w", err)
		}

		tx.ReferenceID = referenceID.String
		tx.Description = description.String
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	return transactions, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
