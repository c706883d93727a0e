package repositories

import (
	"errors"
	"fmt"
	"time"

	"fundmatch/internal/models"

	"gorm.io/gorm"
)

func (r *walletRepository) Create(wallet *models.PointsWallet) error {
	if err := r.db.Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.PointsWallet, error) {
	var wallet models.PointsWallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// ApplyDelta is the single authoritative balance mutation. The guarded
// conditional update makes concurrent debits race-safe without a row
// lock: only one of two competing debits can satisfy "balance >= ?".
func (r *walletRepository) ApplyDelta(walletID uint, delta int) (*models.PointsWallet, error) {
	query := r.db.Model(&models.PointsWallet{}).Where("id = ?", walletID)
	if delta < 0 {
		query = query.Where("balance >= ?", -delta)
	}

	result := query.Updates(map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", delta),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Either the wallet is gone or the guard rejected the debit.
		var wallet models.PointsWallet
		if err := r.db.First(&wallet, walletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWalletNotFound
			}
			return nil, fmt.Errorf("failed to get wallet: %w", err)
		}
		return &wallet, ErrInsufficientBalance
	}

	var wallet models.PointsWallet
	if err := r.db.First(&wallet, walletID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) CreateTransaction(tx *models.PointsTransaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) FinalizeTransaction(txID uint, status string, balanceBefore, balanceAfter int) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == models.TransactionStatusSuccess {
		updates["balance_before"] = balanceBefore
		updates["balance_after"] = balanceAfter
	}

	result := r.db.Model(&models.PointsTransaction{}).
		Where("id = ? AND status = ?", txID, models.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to finalize transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *walletRepository) GetTransactionByReference(reference string) (*models.PointsTransaction, error) {
	var tx models.PointsTransaction
	if err := r.db.Where("reference = ?", reference).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *walletRepository) GetTransactionHistory(walletID uint, limit, offset int) ([]models.PointsTransaction, error) {
	var history []models.PointsTransaction
	err := r.db.Where("wallet_id = ?", walletID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&walletRepository{db: tx})
	})
}
