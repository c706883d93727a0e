package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/repositories/cache"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	db := setupTestDB(t)
	return NewService(repositories.NewWalletRepository(db), nil, nil), db
}

func TestCreateAndGetWallet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	wallet, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, wallet.Balance)

	got, err := svc.GetWallet(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, got.ID)
}

func TestGetWalletNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetWallet(context.Background(), 42)
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotFound)
}

func TestGetBalanceWithoutWalletIsZero(t *testing.T) {
	svc, _ := newTestService(t)

	balance, err := svc.GetBalance(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestCreditAndDebit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)

	credit, err := svc.Credit(ctx, 1, 100, "topup-1", "initial top-up")
	require.NoError(t, err)
	assert.Equal(t, 100, credit.NewBalance)

	debit, err := svc.Debit(ctx, 1, 30, "spend-1", "swipe charge")
	require.NoError(t, err)
	assert.Equal(t, 70, debit.NewBalance)

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 70, balance)
}

func TestDebitInsufficientBalance(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 10, "topup-1", "")
	require.NoError(t, err)

	_, err = svc.Debit(ctx, 1, 50, "spend-1", "")
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	// The rejected debit rolls its pending ledger row back.
	var count int64
	db.Model(&models.PointsTransaction{}).Where("reference = ?", "spend-1").Count(&count)
	assert.Equal(t, int64(0), count)

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestDebitWithoutWallet(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Debit(context.Background(), 9, 5, "spend-1", "")
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotFound)
}

func TestDuplicateReferenceRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Credit(ctx, 1, 100, "topup-1", "")
	require.NoError(t, err)

	_, err = svc.Credit(ctx, 1, 100, "topup-1", "")
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateReference)

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)
}

func TestInvalidAmounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Credit(ctx, 1, 0, "r1", "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	_, err = svc.Credit(ctx, 1, -5, "r2", "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	_, err = svc.Debit(ctx, 1, 0, "r3", "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	_, err = svc.Debit(ctx, 1, -5, "r4", "")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
}

func TestTransactionSnapshots(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 100, "topup-1", "")
	require.NoError(t, err)
	result, err := svc.Debit(ctx, 1, 40, "spend-1", "")
	require.NoError(t, err)

	var entry models.PointsTransaction
	require.NoError(t, db.First(&entry, result.TransactionID).Error)
	assert.Equal(t, models.TransactionStatusSuccess, entry.Status)
	assert.Equal(t, -40, entry.Amount)
	assert.Equal(t, 100, entry.BalanceBefore)
	assert.Equal(t, 60, entry.BalanceAfter)
	assert.Equal(t, entry.Amount, entry.BalanceAfter-entry.BalanceBefore)
}

func TestTransactionHistoryNewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Credit(ctx, 1, 10, fmt.Sprintf("topup-%d", i), "")
		require.NoError(t, err)
	}

	history, err := svc.GetTransactionHistory(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.GreaterOrEqual(t, history[0].ID, history[1].ID)
	assert.GreaterOrEqual(t, history[1].ID, history[2].ID)
}

func newCachedService(t *testing.T) (Service, *gorm.DB, *cache.CacheService) {
	db := setupTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cacheSvc := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	return NewService(repositories.NewWalletRepository(db), cacheSvc, nil), db, cacheSvc
}

func TestDebitInTxLeavesCacheUntilCallerInvalidates(t *testing.T) {
	svc, db, cacheSvc := newCachedService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 100, "topup-1", "")
	require.NoError(t, err)

	// Warm the cache with the pre-debit balance.
	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 100, balance)

	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.DebitInTx(tx, 1, 30, "spend-1", ""); err != nil {
			return err
		}
		// The cached entry must survive while the unit is still open.
		// Dropping it here would let a concurrent reader re-cache the
		// pre-commit balance and serve it for the full TTL.
		cached, ok := cacheSvc.GetWallet(context.Background(), 1)
		require.True(t, ok)
		assert.Equal(t, 100, cached.Balance)
		return nil
	})
	require.NoError(t, err)

	// The engine invalidates after commit; the next read is fresh.
	svc.InvalidateWallet(ctx, 1)
	balance, err = svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 70, balance)
}

type captureMetrics struct {
	transactions []string
	errors       []string
}

func (m *captureMetrics) RecordTransaction(txType string, amount int) {
	m.transactions = append(m.transactions, fmt.Sprintf("%s:%d", txType, amount))
}

func (m *captureMetrics) RecordError(operation, errType string) {
	m.errors = append(m.errors, fmt.Sprintf("%s:%s", operation, errType))
}

func TestMetricsRecorded(t *testing.T) {
	db := setupTestDB(t)
	metrics := &captureMetrics{}
	svc := NewService(repositories.NewWalletRepository(db), nil, metrics)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 100, "topup-1", "")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, 30, "spend-1", "")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, 1, 500, "spend-2", "")
	require.Error(t, err)

	assert.Equal(t, []string{"PURCHASE:100", "SPEND:-30"}, metrics.transactions)
	assert.Equal(t, []string{"debit:INSUFFICIENT_BALANCE"}, metrics.errors)
}

func TestDebitInTxJoinsCallerTransaction(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWallet(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Credit(ctx, 1, 50, "topup-1", "")
	require.NoError(t, err)

	// A failure after the debit must roll the debit back with the unit.
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.DebitInTx(tx, 1, 20, "spend-1", ""); err != nil {
			return err
		}
		return fmt.Errorf("forced rollback")
	})
	require.Error(t, err)

	balance, err := svc.GetBalance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 50, balance)
}
