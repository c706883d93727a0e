// Package purchase handles paid wallet top-ups. A top-up opens a
// pending PURCHASE ledger row, charges the card through Stripe, and
// only then credits the wallet. The pending row survives a crash
// between charge and credit so the operation can be reconciled.
package purchase

import (
	"context"
	"errors"
	"fmt"
	"os"

	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/repositories/cache"
	"fundmatch/pkg/logger"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

// centsPerPoint converts purchased points into the charge amount.
const centsPerPoint = 5

var (
	ErrPaymentFailed = errors.New("payment failed")
	ErrInvalidPoints = errors.New("points must be positive")
)

// TopUpResult reports a completed purchase.
type TopUpResult struct {
	Reference  string `json:"reference"`
	Points     int    `json:"points"`
	ChargedUSD int64  `json:"charged_cents"`
	NewBalance int    `json:"new_balance"`
}

type Service interface {
	TopUp(ctx context.Context, userID uint, points int, cardToken string) (*TopUpResult, error)
}

type service struct {
	wallets repositories.WalletRepository
	cache   *cache.CacheService
}

// NewService creates the top-up service. Cache may be nil in tests.
func NewService(wallets repositories.WalletRepository, cacheService *cache.CacheService) Service {
	return &service{
		wallets: wallets,
		cache:   cacheService,
	}
}

func (s *service) TopUp(ctx context.Context, userID uint, points int, cardToken string) (*TopUpResult, error) {
	if points <= 0 {
		return nil, ErrInvalidPoints
	}

	wallet, err := s.wallets.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}

	// The pending row is written before the external charge so a crash
	// in between leaves an auditable trail instead of a silent loss.
	reference := fmt.Sprintf("topup-%s", uuid.NewString())
	pending := &models.PointsTransaction{
		WalletID:  wallet.ID,
		Amount:    points,
		Type:      models.TransactionTypePurchase,
		Reference: reference,
		Status:    models.TransactionStatusPending,
		Note:      fmt.Sprintf("top-up of %d points", points),
	}
	if err := s.wallets.CreateTransaction(pending); err != nil {
		if errors.Is(err, repositories.ErrDuplicateTransaction) {
			return nil, domainerrors.ErrDuplicateReference
		}
		return nil, err
	}

	amountCents := int64(points) * centsPerPoint
	if err := s.charge(amountCents, cardToken, reference); err != nil {
		logger.Warnf("stripe charge failed for user %d: %v", userID, err)
		if ferr := s.wallets.FinalizeTransaction(pending.ID, models.TransactionStatusFailed, 0, 0); ferr != nil {
			logger.Errorf("failed to mark transaction %d failed: %v", pending.ID, ferr)
		}
		return nil, ErrPaymentFailed
	}

	// Credit and finalize together; Stripe already has the money, so
	// this unit must not half-apply.
	result := &TopUpResult{Reference: reference, Points: points, ChargedUSD: amountCents}
	err = s.wallets.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		updated, err := tx.ApplyDelta(wallet.ID, points)
		if err != nil {
			return err
		}
		result.NewBalance = updated.Balance
		return tx.FinalizeTransaction(pending.ID, models.TransactionStatusSuccess,
			updated.Balance-points, updated.Balance)
	})
	if err != nil {
		// Charged but not credited; the pending row flags it for
		// reconciliation.
		logger.Errorf("top-up credit failed after charge, reference %s: %v", reference, err)
		return nil, domainerrors.ErrTransactionFailed
	}

	if s.cache != nil {
		s.cache.InvalidateWallet(ctx, userID)
	}
	return result, nil
}

func (s *service) charge(amountCents int64, cardToken, reference string) error {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	params := &stripe.ChargeParams{
		Amount:      stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String("points top-up"),
	}
	params.SetSource(cardToken)
	params.AddMetadata("reference", reference)

	_, err := charge.New(params)
	return err
}
