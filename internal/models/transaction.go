package models

import "time"

// Transaction types
const (
	TransactionTypePurchase = "PURCHASE"
	TransactionTypeSpend    = "SPEND"
)

// Transaction statuses. A transaction starts pending and ends in exactly
// one terminal state; success and failed rows are never mutated again.
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// PointsTransaction is an append-only ledger entry against a wallet.
// Amount is signed: positive for credits, negative for debits. The
// balance snapshots are populated only when the row flips to success,
// and BalanceAfter - BalanceBefore always equals Amount.
type PointsTransaction struct {
	ID            uint   `gorm:"primarykey"`
	WalletID      uint   `gorm:"index;not null"`
	Amount        int    `gorm:"not null"`
	Type          string `gorm:"not null"`
	Reference     string `gorm:"uniqueIndex;not null"`
	Status        string `gorm:"not null;default:'pending'"`
	BalanceBefore int
	BalanceAfter  int
	Note          string
	Metadata      JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
