package swipe

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

	"fundmatch/internal/config"
	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/repositories/cache"
	"fundmatch/internal/services/ledger"
	"fundmatch/internal/services/quota"
)

type testEnv struct {
	db     *gorm.DB
	svc    *service
	ledger ledger.Service
}

func setupEnv(t *testing.T) *testEnv {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	cfg := config.EngineConfig{
		DailyFreeMessageLimit: 20,
		PointsPerMessage:      10,
		MinExpirationHours:    1,
		DailyFreeSwipeLimit:   10,
		PointsPerSwipe:        5,
		PointsPerUndo:         10,
		UndoWindow:            5 * time.Minute,
	}

	userRepo := repositories.NewUserRepository(db)
	swipeRepo := repositories.NewSwipeRepository(db)
	quotaRepo := repositories.NewQuotaRepository(db)
	walletRepo := repositories.NewWalletRepository(db)

	ledgerSvc := ledger.NewService(walletRepo, nil, nil)
	tracker := quota.NewService(quotaRepo, walletRepo, cfg)
	svc := NewService(db, userRepo, swipeRepo, quotaRepo, tracker, ledgerSvc, cfg).(*service)

	return &testEnv{db: db, svc: svc, ledger: ledgerSvc}
}

var userSeq int

func (e *testEnv) addUser(t *testing.T, role string, categories []string, balance int) uint {
	userSeq++
	u := models.User{
		Email:      fmt.Sprintf("user%d-%s@test.local", userSeq, role),
		Password:   "x",
		Name:       "Test User",
		Role:       role,
		Categories: categories,
	}
	require.NoError(t, e.db.Create(&u).Error)
	require.NoError(t, e.db.Create(&models.PointsWallet{UserID: u.ID, Balance: balance}).Error)
	return u.ID
}

func TestGetCandidatesFiltersAndScores(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, []string{"saas", "fintech"}, 0)
	matching := env.addUser(t, models.RoleStartup, []string{"saas", "fintech"}, 0)
	partial := env.addUser(t, models.RoleStartup, []string{"saas"}, 0)
	unrelated := env.addUser(t, models.RoleStartup, []string{"climate"}, 0)
	env.addUser(t, models.RoleInvestor, []string{"saas"}, 0) // same role, excluded

	candidates, err := env.svc.GetCandidates(ctx, investor, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, matching, candidates[0].Profile.ID)
	assert.Equal(t, 2, candidates[0].MatchScore)
	assert.Equal(t, partial, candidates[1].Profile.ID)
	assert.Equal(t, unrelated, candidates[2].Profile.ID)
	assert.Equal(t, 0, candidates[2].MatchScore)
}

func TestGetCandidatesExcludesAlreadySwiped(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup1 := env.addUser(t, models.RoleStartup, nil, 0)
	startup2 := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup1, models.SwipeActionDislike)
	require.NoError(t, err)

	candidates, err := env.svc.GetCandidates(ctx, investor, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, startup2, candidates[0].Profile.ID)
}

func TestSwipeValidation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, "POKE")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSwipeAction)

	_, err = env.svc.Swipe(ctx, investor, investor, models.SwipeActionLike)
	assert.ErrorIs(t, err, domainerrors.ErrSelfSwipe)

	_, err = env.svc.Swipe(ctx, investor, 9999, models.SwipeActionLike)
	assert.ErrorIs(t, err, domainerrors.ErrProfileNotFound)
}

func TestDuplicateSwipeRejected(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)

	_, err = env.svc.Swipe(ctx, investor, startup, models.SwipeActionDislike)
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateInteraction)
}

func TestMutualLikeFormsMatch(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	first, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)
	assert.Nil(t, first.Match)

	second, err := env.svc.Swipe(ctx, startup, investor, models.SwipeActionLike)
	require.NoError(t, err)
	require.NotNil(t, second.Match)

	u1, u2 := models.MatchPair(investor, startup)
	assert.Equal(t, u1, second.Match.Match.User1ID)
	assert.Equal(t, u2, second.Match.Match.User2ID)
	assert.Len(t, second.Match.Profiles, 2)

	var count int64
	env.db.Model(&models.ProfileMatch{}).Count(&count)
	assert.Equal(t, int64(1), count)

	matches, err := env.svc.ListMatches(ctx, investor)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestDislikeDoesNotMatch(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)
	result, err := env.svc.Swipe(ctx, startup, investor, models.SwipeActionDislike)
	require.NoError(t, err)
	assert.Nil(t, result.Match)

	var count int64
	env.db.Model(&models.ProfileMatch{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSwipeQuotaExceededWithoutPoints(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	defaults := repositories.SwipeQuotaDefaults
	repositories.SwipeQuotaDefaults.DailyFreeLimit = 1
	defer func() { repositories.SwipeQuotaDefaults = defaults }()

	investor := env.addUser(t, models.RoleInvestor, nil, 0)
	startup1 := env.addUser(t, models.RoleStartup, nil, 0)
	startup2 := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup1, models.SwipeActionLike)
	require.NoError(t, err)

	_, err = env.svc.Swipe(ctx, investor, startup2, models.SwipeActionLike)
	assert.ErrorIs(t, err, domainerrors.ErrQuotaExceeded)
}

func TestPaidSwipeDebitsWallet(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	defaults := repositories.SwipeQuotaDefaults
	repositories.SwipeQuotaDefaults.DailyFreeLimit = 0
	defer func() { repositories.SwipeQuotaDefaults = defaults }()

	investor := env.addUser(t, models.RoleInvestor, nil, 50)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	result, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)
	assert.Equal(t, 5, result.PointsSpent)

	balance, err := env.ledger.GetBalance(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, 45, balance)
}

func TestUndoWithoutSkip(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)

	_, err := env.svc.UndoLastSkip(ctx, investor)
	assert.ErrorIs(t, err, domainerrors.ErrNoRecentSkip)
}

func TestUndoRestoresSkippedProfile(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionSkip)
	require.NoError(t, err)

	candidates, err := env.svc.GetCandidates(ctx, investor, 10)
	require.NoError(t, err)
	assert.Len(t, candidates, 0)

	result, err := env.svc.UndoLastSkip(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, startup, result.RestoredProfileID)
	assert.Equal(t, 10, result.PointsSpent)

	balance, err := env.ledger.GetBalance(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, 90, balance)

	// The restored profile is swipeable again.
	candidates, err = env.svc.GetCandidates(ctx, investor, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, startup, candidates[0].Profile.ID)

	_, err = env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)
}

func TestUndoTwiceFails(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionSkip)
	require.NoError(t, err)
	_, err = env.svc.UndoLastSkip(ctx, investor)
	require.NoError(t, err)

	_, err = env.svc.UndoLastSkip(ctx, investor)
	assert.ErrorIs(t, err, domainerrors.ErrNoRecentSkip)
}

func TestUndoWindowExpired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	skipTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return skipTime }

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionSkip)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return skipTime.Add(6 * time.Minute) }
	_, err = env.svc.UndoLastSkip(ctx, investor)
	assert.ErrorIs(t, err, domainerrors.ErrUndoWindowExpired)
}

func TestUndoInsufficientBalance(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 3)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionSkip)
	require.NoError(t, err)

	_, err = env.svc.UndoLastSkip(ctx, investor)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	// The failed undo leaves the skip in place.
	var count int64
	env.db.Model(&models.SwipeInteraction{}).Where("swiper_id = ?", investor).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestNewerSkipReplacesUndoTarget(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	startup1 := env.addUser(t, models.RoleStartup, nil, 0)
	startup2 := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup1, models.SwipeActionSkip)
	require.NoError(t, err)
	_, err = env.svc.Swipe(ctx, investor, startup2, models.SwipeActionSkip)
	require.NoError(t, err)

	result, err := env.svc.UndoLastSkip(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, startup2, result.RestoredProfileID)
}

func TestLaterInteractionSupersedesSkip(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	skipped := env.addUser(t, models.RoleStartup, nil, 0)
	liked := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, skipped, models.SwipeActionSkip)
	require.NoError(t, err)

	// A non-skip interaction closes the undo window: the skip is no
	// longer the most recent interaction.
	_, err = env.svc.Swipe(ctx, investor, liked, models.SwipeActionLike)
	require.NoError(t, err)

	_, err = env.svc.UndoLastSkip(ctx, investor)
	assert.ErrorIs(t, err, domainerrors.ErrNoRecentSkip)

	var q models.SwipeQuota
	require.NoError(t, env.db.Where("user_id = ?", investor).First(&q).Error)
	assert.Nil(t, q.LastSkippedProfileID)
	assert.Nil(t, q.LastSkipTime)
}

func TestPaidSwipeRefreshesCachedBalance(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cacheSvc := cache.NewCacheService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)

	cachedLedger := ledger.NewService(repositories.NewWalletRepository(env.db), cacheSvc, nil)
	env.svc.ledger = cachedLedger

	defaults := repositories.SwipeQuotaDefaults
	repositories.SwipeQuotaDefaults.DailyFreeLimit = 0
	defer func() { repositories.SwipeQuotaDefaults = defaults }()

	investor := env.addUser(t, models.RoleInvestor, nil, 50)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	// Warm the cache before the paid swipe.
	balance, err := cachedLedger.GetBalance(ctx, investor)
	require.NoError(t, err)
	require.Equal(t, 50, balance)

	_, err = env.svc.Swipe(ctx, investor, startup, models.SwipeActionLike)
	require.NoError(t, err)

	// The post-commit invalidation makes the next cached read fresh.
	balance, err = cachedLedger.GetBalance(ctx, investor)
	require.NoError(t, err)
	assert.Equal(t, 45, balance)
}

func TestUndoDoesNotRefundSwipeSlot(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	investor := env.addUser(t, models.RoleInvestor, nil, 100)
	startup := env.addUser(t, models.RoleStartup, nil, 0)

	_, err := env.svc.Swipe(ctx, investor, startup, models.SwipeActionSkip)
	require.NoError(t, err)
	_, err = env.svc.UndoLastSkip(ctx, investor)
	require.NoError(t, err)

	var q models.SwipeQuota
	require.NoError(t, env.db.Where("user_id = ?", investor).First(&q).Error)
	assert.Equal(t, 1, q.SwipesToday)
}
