package entities

import (
	"strings"
	"time"
)

// Wallet represents a player's chip balance
type Wallet struct {
	UserID      string    // Player ID
	Balance     int64     // Current balance in chips
	LastUpdated time.Time // When the wallet was last updated
}

// TransactionType represents the type of wallet transaction
type TransactionType string

const (
	TransactionTypeDeposit TransactionType = "DEPOSIT"
	TransactionTypePayout  TransactionType = "PAYOUT"
	TransactionTypeLoss    TransactionType = "LOSS"
	TransactionTypePush    TransactionType = "PUSH"
)

// ParseTransactionType matches a transaction type name, ignoring case
func ParseTransactionType(name string) (TransactionType, bool) {
	t := TransactionType(strings.ToUpper(strings.TrimSpace(name)))
	switch t {
	case TransactionTypeDeposit, TransactionTypePayout, TransactionTypeLoss, TransactionTypePush:
		return t, true
	}
	return "", false
}

// Transaction represents a single wallet transaction
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Amount       int64           `json:"amount"` // positive for additions, negative for subtractions
	Type         TransactionType `json:"type"`
	ReferenceID  string          `json:"reference_id,omitempty"` // round ID for settlements
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter int64           `json:"balance_after"`
}
