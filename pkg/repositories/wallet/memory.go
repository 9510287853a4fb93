package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fadedpez/blackjacktable/pkg/entities"
)

// MemoryRepository implements Repository using in-memory storage
type MemoryRepository struct {
	wallets      map[string]*entities.Wallet
	transactions map[string][]*entities.Transaction
	mu           sync.RWMutex
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory wallet repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		wallets:      make(map[string]*entities.Wallet),
		transactions: make(map[string][]*entities.Transaction),
	}
}

// GetWallet retrieves a wallet by user ID
func (r *MemoryRepository) GetWallet(ctx context.Context, userID string) (*entities.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallet, exists := r.wallets[userID]
	if !exists {
		return nil, ErrWalletNotFound
	}

	// Return a copy to prevent concurrent modification
	walletCopy := *wallet
	return &walletCopy, nil
}

// SaveWallet creates or updates a wallet
func (r *MemoryRepository) SaveWallet(ctx context.Context, wallet *entities.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saveWallet(wallet)
	return nil
}

// SaveWalletWithTransaction stores the wallet and appends the transaction
func (r *MemoryRepository) SaveWalletWithTransaction(ctx context.Context, wallet *entities.Wallet, transaction *entities.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saveWallet(wallet)
	r.addTransaction(transaction)
	return nil
}

func (r *MemoryRepository) saveWallet(wallet *entities.Wallet) {
	if wallet.LastUpdated.IsZero() {
		wallet.LastUpdated = time.Now()
	}
	walletCopy := *wallet
	r.wallets[wallet.UserID] = &walletCopy
}

func (r *MemoryRepository) addTransaction(transaction *entities.Transaction) {
	if transaction.ID == "" {
		transaction.ID = uuid.New().String()
	}
	if transaction.Timestamp.IsZero() {
		transaction.Timestamp = time.Now()
	}

	txCopy := *transaction
	r.transactions[transaction.UserID] = append(r.transactions[transaction.UserID], &txCopy)
}

// GetTransactions retrieves recent transactions for a user
func (r *MemoryRepository) GetTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	return r.recent(userID, limit, func(*entities.Transaction) bool { return true }), nil
}

// GetTransactionsByType retrieves transactions of a specific type
func (r *MemoryRepository) GetTransactionsByType(ctx context.Context, userID string, transactionType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	return r.recent(userID, limit, func(tx *entities.Transaction) bool {
		return tx.Type == transactionType
	}), nil
}

// GetTransactionByReference finds the transaction recorded for a round
func (r *MemoryRepository) GetTransactionByReference(ctx context.Context, userID, referenceID string) (*entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions[userID] {
		if referenceID != "" && tx.ReferenceID == referenceID {
			txCopy := *tx
			return &txCopy, nil
		}
	}
	return nil, ErrTransactionNotFound
}

// recent walks the log backwards so the newest transactions come first
func (r *MemoryRepository) recent(userID string, limit int, keep func(*entities.Transaction) bool) []*entities.Transaction {
	if limit <= 0 {
		return []*entities.Transaction{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	transactions := r.transactions[userID]
	result := make([]*entities.Transaction, 0, min(limit, len(transactions)))
	for i := len(transactions) - 1; i >= 0 && len(result) < limit; i-- {
		if keep(transactions[i]) {
			txCopy := *transactions[i]
			result = append(result, &txCopy)
		}
	}

	return result
}

// Close is a no-op for the memory repository
func (r *MemoryRepository) Close() error {
	return nil
}
