package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/fadedpez/blackjacktable/internal/logging"
	"github.com/fadedpez/blackjacktable/pkg/entities"
	walletRepo "github.com/fadedpez/blackjacktable/pkg/repositories/wallet"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount must be positive")
)

// DefaultStartingBalance is credited to a wallet when it is first created
const DefaultStartingBalance int64 = 1000

// Service handles wallet business logic
type Service struct {
	repo            walletRepo.Repository
	startingBalance int64
	clock           quartz.Clock
	logger          *logging.Logger
}

var _ WalletService = (*Service)(nil)

// Option configures a Service
type Option func(*Service)

// WithStartingBalance sets the balance of newly created wallets
func WithStartingBalance(balance int64) Option {
	return func(s *Service) {
		s.startingBalance = balance
	}
}

// WithClock sets the clock used to timestamp wallets and transactions
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLogger sets the service logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new wallet service
func NewService(repo walletRepo.Repository, opts ...Option) *Service {
	s := &Service{
		repo:            repo,
		startingBalance: DefaultStartingBalance,
		clock:           quartz.NewReal(),
		logger:          logging.Default,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreateWallet retrieves a wallet or creates a new one if it doesn't exist
func (s *Service) GetOrCreateWallet(ctx context.Context, userID string) (*entities.Wallet, bool, error) {
	wallet, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return wallet, false, nil
	}

	if !errors.Is(err, walletRepo.ErrWalletNotFound) {
		return nil, false, err
	}

	newWallet := &entities.Wallet{
		UserID:      userID,
		Balance:     s.startingBalance,
		LastUpdated: s.clock.Now(),
	}

	if err := s.repo.SaveWallet(ctx, newWallet); err != nil {
		return nil, false, err
	}

	s.logger.Info("Created wallet for user %s with balance %d", userID, newWallet.Balance)
	return newWallet, true, nil
}

// GetBalance returns the current balance for a user
func (s *Service) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, _, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// AddFunds credits a user's wallet outside of play
func (s *Service) AddFunds(ctx context.Context, userID string, amount int64, description string) (*entities.Wallet, error) {
	if amount <= 0 {
		return nil, ErrNegativeAmount
	}
	return s.apply(ctx, userID, amount, entities.TransactionTypeDeposit, "", description)
}

// Settle applies the delta of a finished round. A positive delta is a payout,
// a negative one a loss and zero a push; every settlement is recorded. A round
// that already has a transaction is not applied again.
func (s *Service) Settle(ctx context.Context, userID string, delta int64, roundID string) (*entities.Wallet, error) {
	if roundID != "" {
		_, err := s.repo.GetTransactionByReference(ctx, userID, roundID)
		switch {
		case err == nil:
			s.logger.Warn("Round %s is already settled for user %s", roundID, userID)
			wallet, _, err := s.GetOrCreateWallet(ctx, userID)
			return wallet, err
		case !errors.Is(err, walletRepo.ErrTransactionNotFound):
			return nil, fmt.Errorf("error checking settlement of round %s: %w", roundID, err)
		}
	}

	txType := entities.TransactionTypePush
	switch {
	case delta > 0:
		txType = entities.TransactionTypePayout
	case delta < 0:
		txType = entities.TransactionTypeLoss
	}

	description := fmt.Sprintf("Blackjack round %s", roundID)
	return s.apply(ctx, userID, delta, txType, roundID, description)
}

func (s *Service) apply(ctx context.Context, userID string, amount int64, txType entities.TransactionType, referenceID, description string) (*entities.Wallet, error) {
	wallet, _, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting wallet: %w", err)
	}

	if wallet.Balance+amount < 0 {
		return nil, fmt.Errorf("%w: balance %d cannot cover %d", ErrInsufficientFunds, wallet.Balance, -amount)
	}

	now := s.clock.Now()
	wallet.Balance += amount
	wallet.LastUpdated = now

	transaction := &entities.Transaction{
		ID:           uuid.New().String(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		ReferenceID:  referenceID,
		Description:  description,
		Timestamp:    now,
		BalanceAfter: wallet.Balance,
	}

	if err := s.repo.SaveWalletWithTransaction(ctx, wallet, transaction); err != nil {
		s.logger.Error("Error saving %s for user %s: %v", txType, userID, err)
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user":    userID,
		"type":    txType,
		"amount":  amount,
		"balance": wallet.Balance,
	}).Debug("wallet updated")

	return wallet, nil
}

// GetRecentTransactions retrieves recent transactions for a user
func (s *Service) GetRecentTransactions(ctx context.Context, userID string, limit int) ([]*entities.Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, limit)
}

// GetRecentTransactionsByType retrieves recent transactions of one type for a user
func (s *Service) GetRecentTransactionsByType(ctx context.Context, userID string, txType entities.TransactionType, limit int) ([]*entities.Transaction, error) {
	return s.repo.GetTransactionsByType(ctx, userID, txType, limit)
}
