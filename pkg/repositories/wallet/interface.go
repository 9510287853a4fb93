package wallet

import (
	"context"
	"errors"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Repository defines the interface for wallet data operations
type Repository interface {
	// GetWallet retrieves a wallet by user ID
	GetWallet(ctx context.Context, userID string) (*entities.Wallet, error)

	// SaveWallet creates or updates a wallet
	SaveWallet(ctx context.Context, wallet *entities.Wallet) error

	// SaveWalletWithTransaction stores the wallet and records the transaction
	// that produced it, both or neither
	SaveWalletWithTransaction(ctx context.Context, wallet *entities.Wallet, transaction *entities.Transaction) error

	// GetTransactions retrieves recent transactions for a user, newest first
	GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// GetTransactionsByType retrieves recent transactions of a specific type, newest first
	GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error)

	// GetTransactionByReference returns the user's transaction recorded for
	// referenceID, or ErrTransactionNotFound
	GetTransactionByReference(ctx context.Context, userID, referenceID string) (*entities.Transaction, error)

	// Close releases any resources used by the repository
	Close() error
}
