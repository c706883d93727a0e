package quota

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fundmatch/internal/config"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	return db
}

func testConfig() config.EngineConfig {
	return config.EngineConfig{
		DailyFreeMessageLimit: 2,
		PointsPerMessage:      10,
		MinExpirationHours:    1,
		DailyFreeSwipeLimit:   2,
		PointsPerSwipe:        5,
		PointsPerUndo:         10,
		UndoWindow:            5 * time.Minute,
	}
}

func newTestTracker(t *testing.T) (*service, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewService(repositories.NewQuotaRepository(db), repositories.NewWalletRepository(db), testConfig()).(*service)
	return svc, db
}

func giveWallet(t *testing.T, db *gorm.DB, userID uint, balance int) {
	require.NoError(t, db.Create(&models.PointsWallet{UserID: userID, Balance: balance}).Error)
}

func TestMessageFreeTier(t *testing.T) {
	svc, _ := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.False(t, decision.RequiresPoints)
	}

	status, err := svc.Status(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.Equal(t, 2, status.UsedToday)
	assert.Equal(t, 0, status.FreeRemaining)
}

func TestMessageBeyondFreeTierNeedsPoints(t *testing.T) {
	svc, db := newTestTracker(t)
	ctx := context.Background()
	giveWallet(t, db, 1, 25)

	for i := 0; i < 2; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
	}

	decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.True(t, decision.RequiresPoints)
	assert.Equal(t, 10, decision.PointsPerAction)

	// Chargeable actions still count toward the daily total.
	status, err := svc.Status(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.Equal(t, 3, status.UsedToday)
}

func TestMessageDeniedWithoutBalance(t *testing.T) {
	svc, db := newTestTracker(t)
	ctx := context.Background()
	giveWallet(t, db, 1, 4)

	for i := 0; i < 2; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
	}

	decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 4, decision.Balance)
	assert.Equal(t, 10, decision.Required)

	// A denied action does not consume a slot.
	status, err := svc.Status(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.Equal(t, 2, status.UsedToday)
}

func TestMessageDeniedWithoutWallet(t *testing.T) {
	svc, _ := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
	}

	decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Balance)
}

func TestSwipeUsesPerUserLimits(t *testing.T) {
	svc, db := newTestTracker(t)
	ctx := context.Background()
	giveWallet(t, db, 1, 100)

	defaults := repositories.SwipeQuotaDefaults
	repositories.SwipeQuotaDefaults.DailyFreeLimit = 1
	defer func() { repositories.SwipeQuotaDefaults = defaults }()

	first, err := svc.CheckAndConsume(ctx, 1, ActionSwipe)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.False(t, first.RequiresPoints)

	second, err := svc.CheckAndConsume(ctx, 1, ActionSwipe)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.True(t, second.RequiresPoints)
	assert.Equal(t, repositories.SwipeQuotaDefaults.PointsPerSwipe, second.PointsPerAction)
}

func TestQuotaResetsAtCalendarDay(t *testing.T) {
	svc, _ := newTestTracker(t)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 23, 50, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	for i := 0; i < 2; i++ {
		decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}
	denied, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	// Ten minutes later it is a new calendar day and the counter resets.
	svc.now = func() time.Time { return day1.Add(10 * time.Minute) }

	decision, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.False(t, decision.RequiresPoints)

	status, err := svc.Status(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.Equal(t, 1, status.UsedToday)
}

func TestMultiDayGapStillResets(t *testing.T) {
	svc, _ := newTestTracker(t)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }
	for i := 0; i < 2; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
	}

	svc.now = func() time.Time { return day1.AddDate(0, 0, 4) }
	status, err := svc.Status(ctx, 1, ActionMessage)
	require.NoError(t, err)
	assert.Equal(t, 0, status.UsedToday)
	assert.Equal(t, 2, status.FreeRemaining)
}

func TestCountersAreIndependent(t *testing.T) {
	svc, _ := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.CheckAndConsume(ctx, 1, ActionMessage)
		require.NoError(t, err)
	}

	// Exhausted messages leave the swipe counter untouched.
	decision, err := svc.CheckAndConsume(ctx, 1, ActionSwipe)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.False(t, decision.RequiresPoints)
}
