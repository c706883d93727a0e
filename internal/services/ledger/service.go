package ledger

import (
	"context"
	"errors"
	"fmt"

	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/repositories/cache"

	"gorm.io/gorm"
)

type service struct {
	repo    repositories.WalletRepository
	cache   *cache.CacheService
	metrics MetricsCollector
}

// NewService creates a new points ledger service. Cache may be nil in
// tests; metrics defaults to a no-op collector.
func NewService(repo repositories.WalletRepository, cacheService *cache.CacheService, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		cache:   cacheService,
		metrics: metrics,
	}
}

func (s *service) CreateWallet(ctx context.Context, userID uint) (*models.PointsWallet, error) {
	wallet := &models.PointsWallet{UserID: userID, Balance: 0}
	if err := s.repo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	if s.cache != nil {
		s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.PointsWallet, error) {
	if s.cache != nil {
		if wallet, ok := s.cache.GetWallet(ctx, userID); ok {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetBalance(ctx context.Context, userID uint) (int, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrWalletNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return wallet.Balance, nil
}

func (s *service) Credit(ctx context.Context, userID uint, amount int, reference, note string) (*OperationResult, error) {
	if amount <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}

	var result *OperationResult
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		var err error
		result, err = apply(tx, userID, amount, models.TransactionTypePurchase, reference, note)
		return err
	})
	if err != nil {
		s.metrics.RecordError("credit", errType(err))
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordTransaction(models.TransactionTypePurchase, amount)
	return result, nil
}

func (s *service) Debit(ctx context.Context, userID uint, amount int, reference, note string) (*OperationResult, error) {
	if amount <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}

	var result *OperationResult
	err := s.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		var err error
		result, err = apply(tx, userID, -amount, models.TransactionTypeSpend, reference, note)
		return err
	})
	if err != nil {
		s.metrics.RecordError("debit", errType(err))
		return nil, err
	}

	s.invalidate(ctx, userID)
	s.metrics.RecordTransaction(models.TransactionTypeSpend, -amount)
	return result, nil
}

// DebitInTx charges points inside the caller's transaction. The caller
// owns commit/rollback; an error here must abort the caller's unit.
// The cache is left alone: invalidating before the commit would let a
// concurrent reader re-cache the pre-debit balance and serve it for
// the full TTL, so the caller invalidates after its unit commits.
func (s *service) DebitInTx(tx *gorm.DB, userID uint, amount int, reference, note string) (*OperationResult, error) {
	if amount <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}
	result, err := apply(repositories.NewWalletRepository(tx), userID, -amount, models.TransactionTypeSpend, reference, note)
	if err != nil {
		s.metrics.RecordError("debit", errType(err))
		return nil, err
	}
	return result, nil
}

func (s *service) CreditInTx(tx *gorm.DB, userID uint, amount int, reference, note string) (*OperationResult, error) {
	if amount <= 0 {
		return nil, domainerrors.ErrInvalidAmount
	}
	result, err := apply(repositories.NewWalletRepository(tx), userID, amount, models.TransactionTypePurchase, reference, note)
	if err != nil {
		s.metrics.RecordError("credit", errType(err))
		return nil, err
	}
	return result, nil
}

// InvalidateWallet drops the cached wallet entry for a user. Engines
// using the InTx variants call this once their transaction has
// committed.
func (s *service) InvalidateWallet(ctx context.Context, userID uint) {
	s.invalidate(ctx, userID)
}

func (s *service) GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.PointsTransaction, error) {
	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetTransactionHistory(wallet.ID, limit, offset)
}

// apply performs one signed ledger operation against a repository that
// is already bound to the enclosing database transaction. The sequence
// is: pending ledger row, guarded balance shift, flip to success with
// snapshots. Any error rolls the whole unit back.
func apply(repo repositories.WalletRepository, userID uint, amount int, txType, reference, note string) (*OperationResult, error) {
	if amount == 0 {
		return nil, domainerrors.ErrInvalidAmount
	}

	wallet, err := repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	entry := &models.PointsTransaction{
		WalletID:  wallet.ID,
		Amount:    amount,
		Type:      txType,
		Reference: reference,
		Status:    models.TransactionStatusPending,
		Note:      note,
	}
	if err := repo.CreateTransaction(entry); err != nil {
		if errors.Is(err, repositories.ErrDuplicateTransaction) {
			return nil, domainerrors.ErrDuplicateReference
		}
		return nil, err
	}

	// The guarded update is the authoritative balance check: an earlier
	// advisory read may have raced another spend.
	updated, err := repo.ApplyDelta(wallet.ID, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientBalance) {
			return nil, domainerrors.InsufficientBalance(updated.Balance, -amount)
		}
		return nil, err
	}

	before := updated.Balance - amount
	if err := repo.FinalizeTransaction(entry.ID, models.TransactionStatusSuccess, before, updated.Balance); err != nil {
		return nil, err
	}

	return &OperationResult{
		TransactionID: entry.ID,
		NewBalance:    updated.Balance,
	}, nil
}

func (s *service) invalidate(ctx context.Context, userID uint) {
	if s.cache != nil {
		s.cache.InvalidateWallet(ctx, userID)
	}
}

func errType(err error) string {
	var derr *domainerrors.DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return "internal"
}
