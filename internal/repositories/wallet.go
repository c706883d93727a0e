package repositories

import (
	"errors"

	"fundmatch/internal/models"

	"gorm.io/gorm"
)

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrDuplicateTransaction = errors.New("duplicate transaction reference")
	ErrTransactionNotFound  = errors.New("transaction not found")
)

// WalletRepository defines the data access contract for points wallets
// and their append-only transaction ledger.
type WalletRepository interface {
	// Create creates a wallet for a user. Fails on a second wallet for
	// the same user.
	Create(wallet *models.PointsWallet) error

	// GetByUserID retrieves a user's wallet.
	GetByUserID(userID uint) (*models.PointsWallet, error)

	// ApplyDelta atomically shifts the wallet balance by delta and
	// returns the updated wallet. For negative deltas the update is
	// guarded by "balance >= -delta" so the balance can never go
	// negative; a failed guard returns ErrInsufficientBalance.
	ApplyDelta(walletID uint, delta int) (*models.PointsWallet, error)

	// CreateTransaction appends a ledger row. A reused reference
	// returns ErrDuplicateTransaction.
	CreateTransaction(tx *models.PointsTransaction) error

	// FinalizeTransaction flips a pending row to its terminal status,
	// recording the balance snapshots on success.
	FinalizeTransaction(txID uint, status string, balanceBefore, balanceAfter int) error

	// GetTransactionByReference looks up a ledger row by its unique
	// correlation reference.
	GetTransactionByReference(reference string) (*models.PointsTransaction, error)

	// GetTransactionHistory lists a wallet's ledger rows, newest first.
	GetTransactionHistory(walletID uint, limit, offset int) ([]models.PointsTransaction, error)

	// ExecuteInTransaction runs fn inside one database transaction. The
	// repository passed to fn is bound to that transaction.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}
