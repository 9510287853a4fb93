package wallet

import (
	"context"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_wallet_service

// WalletService is the bankroll store the table settles rounds against
type WalletService interface {
	// GetOrCreateWallet returns the player's wallet, creating it with the
	// starting balance on first use. The bool reports whether it was created.
	GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error)

	// Settle applies a finished round's balance change and records it
	Settle(ctx context.Context, userID string, delta int64, roundID string) (*entities.Wallet, error)

	// GetRecentTransactions lists the newest transactions first
	GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error)

	// GetRecentTransactionsByType lists the newest transactions of one type first
	GetRecentTransactionsByType(ctx context.Context, userID string, txType entities.TransactionType, limit int) ([]*entities.Transaction, error)
}
