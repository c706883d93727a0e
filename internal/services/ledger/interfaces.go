package ledger

import (
	"context"

	"fundmatch/internal/models"

	"gorm.io/gorm"
)

// Service defines the points ledger interface.
type Service interface {
	// Wallet management
	CreateWallet(ctx context.Context, userID uint) (*models.PointsWallet, error)
	GetWallet(ctx context.Context, userID uint) (*models.PointsWallet, error)

	// GetBalance returns 0 for users without a wallet; absence is not
	// an error on the read path.
	GetBalance(ctx context.Context, userID uint) (int, error)

	// Core ledger operations
	Credit(ctx context.Context, userID uint, amount int, reference, note string) (*OperationResult, error)
	Debit(ctx context.Context, userID uint, amount int, reference, note string) (*OperationResult, error)

	// In-transaction variants for engines that combine the point charge
	// with their own domain writes in one atomic unit. They never touch
	// the wallet cache: the engine calls InvalidateWallet once its
	// transaction has committed.
	DebitInTx(tx *gorm.DB, userID uint, amount int, reference, note string) (*OperationResult, error)
	CreditInTx(tx *gorm.DB, userID uint, amount int, reference, note string) (*OperationResult, error)

	// InvalidateWallet drops the cached wallet entry for a user.
	InvalidateWallet(ctx context.Context, userID uint)

	// History
	GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error)
}
