package repositories

import (
	"errors"
	"fmt"
	"time"

	"fundmatch/internal/models"

	"gorm.io/gorm"
)

// QuotaRepository owns the per-user daily counters for messages and
// swipes. All counter mutations are guarded single-statement updates so
// concurrent requests never lose an increment or double-reset at the
// day boundary.
type QuotaRepository interface {
	GetOrCreateMessageQuota(userID uint, now time.Time) (*models.MessageQuota, error)
	IncrementMessageIfBelow(userID uint, now time.Time, limit int) (bool, error)
	IncrementMessage(userID uint, now time.Time) error

	GetOrCreateSwipeQuota(userID uint, now time.Time) (*models.SwipeQuota, error)
	IncrementSwipeIfBelow(userID uint, now time.Time, limit int) (bool, error)
	IncrementSwipe(userID uint, now time.Time) error

	// Skip markers backing the time-boxed undo.
	SetLastSkip(userID uint, profileID uint, at time.Time) error
	ClearLastSkip(userID uint) error
}

// SwipeQuotaDefaults seeds new swipe quota rows. The values live on
// the row so individual users can be granted different limits later;
// main overrides these from the engine config at startup.
var SwipeQuotaDefaults = struct {
	DailyFreeLimit int
	PointsPerSwipe int
	PointsPerUndo  int
}{10, 5, 10}

type quotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) QuotaRepository {
	return &quotaRepository{db: db}
}

// DayOf truncates an instant to its calendar day. Quota staleness is a
// calendar comparison, not an elapsed-duration one: any prior day is
// stale no matter how many days have passed.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *quotaRepository) GetOrCreateMessageQuota(userID uint, now time.Time) (*models.MessageQuota, error) {
	today := DayOf(now)

	var quota models.MessageQuota
	err := r.db.Where("user_id = ?", userID).First(&quota).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		quota = models.MessageQuota{UserID: userID, QuotaDate: today}
		if err := r.db.Create(&quota).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the creation race; the other request's row wins.
				return r.GetOrCreateMessageQuota(userID, now)
			}
			return nil, fmt.Errorf("failed to create message quota: %w", err)
		}
		return &quota, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message quota: %w", err)
	}

	if quota.QuotaDate.Before(today) {
		// Guarded reset: only one concurrent request can move the row to
		// the new day; the others see rows_affected == 0 and re-read.
		res := r.db.Model(&models.MessageQuota{}).
			Where("user_id = ? AND quota_date < ?", userID, today).
			Updates(map[string]interface{}{
				"messages_sent_today": 0,
				"quota_date":          today,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reset message quota: %w", res.Error)
		}
		if err := r.db.Where("user_id = ?", userID).First(&quota).Error; err != nil {
			return nil, fmt.Errorf("failed to reload message quota: %w", err)
		}
	}
	return &quota, nil
}

func (r *quotaRepository) IncrementMessageIfBelow(userID uint, now time.Time, limit int) (bool, error) {
	res := r.db.Model(&models.MessageQuota{}).
		Where("user_id = ? AND quota_date = ? AND messages_sent_today < ?", userID, DayOf(now), limit).
		Update("messages_sent_today", gorm.Expr("messages_sent_today + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment message quota: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *quotaRepository) IncrementMessage(userID uint, now time.Time) error {
	res := r.db.Model(&models.MessageQuota{}).
		Where("user_id = ? AND quota_date = ?", userID, DayOf(now)).
		Update("messages_sent_today", gorm.Expr("messages_sent_today + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment message quota: %w", res.Error)
	}
	return nil
}

func (r *quotaRepository) GetOrCreateSwipeQuota(userID uint, now time.Time) (*models.SwipeQuota, error) {
	today := DayOf(now)

	var quota models.SwipeQuota
	err := r.db.Where("user_id = ?", userID).First(&quota).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		quota = models.SwipeQuota{
			UserID:         userID,
			QuotaDate:      today,
			DailyFreeLimit: SwipeQuotaDefaults.DailyFreeLimit,
			PointsPerSwipe: SwipeQuotaDefaults.PointsPerSwipe,
			PointsPerUndo:  SwipeQuotaDefaults.PointsPerUndo,
		}
		if err := r.db.Create(&quota).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return r.GetOrCreateSwipeQuota(userID, now)
			}
			return nil, fmt.Errorf("failed to create swipe quota: %w", err)
		}
		return &quota, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swipe quota: %w", err)
	}

	if quota.QuotaDate.Before(today) {
		res := r.db.Model(&models.SwipeQuota{}).
			Where("user_id = ? AND quota_date < ?", userID, today).
			Updates(map[string]interface{}{
				"swipes_today": 0,
				"quota_date":   today,
			})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to reset swipe quota: %w", res.Error)
		}
		if err := r.db.Where("user_id = ?", userID).First(&quota).Error; err != nil {
			return nil, fmt.Errorf("failed to reload swipe quota: %w", err)
		}
	}
	return &quota, nil
}

func (r *quotaRepository) IncrementSwipeIfBelow(userID uint, now time.Time, limit int) (bool, error) {
	res := r.db.Model(&models.SwipeQuota{}).
		Where("user_id = ? AND quota_date = ? AND swipes_today < ?", userID, DayOf(now), limit).
		Update("swipes_today", gorm.Expr("swipes_today + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment swipe quota: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *quotaRepository) IncrementSwipe(userID uint, now time.Time) error {
	res := r.db.Model(&models.SwipeQuota{}).
		Where("user_id = ? AND quota_date = ?", userID, DayOf(now)).
		Update("swipes_today", gorm.Expr("swipes_today + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment swipe quota: %w", res.Error)
	}
	return nil
}

func (r *quotaRepository) SetLastSkip(userID uint, profileID uint, at time.Time) error {
	res := r.db.Model(&models.SwipeQuota{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"last_skipped_profile_id": profileID,
			"last_skip_time":          at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record last skip: %w", res.Error)
	}
	return nil
}

func (r *quotaRepository) ClearLastSkip(userID uint) error {
	res := r.db.Model(&models.SwipeQuota{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"last_skipped_profile_id": nil,
			"last_skip_time":          nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to clear last skip: %w", res.Error)
	}
	return nil
}
