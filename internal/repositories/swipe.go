package repositories

import (
	"errors"
	"fmt"
	"time"

	"fundmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDuplicateInteraction = errors.New("interaction already exists for this pair")
	ErrInteractionNotFound  = errors.New("interaction not found")
)

// SwipeRepository owns swipe interactions and profile matches.
type SwipeRepository interface {
	// CreateInteraction inserts a swipe row. The composite unique index
	// on (swiper, target) is the duplicate guard; violating it returns
	// ErrDuplicateInteraction.
	CreateInteraction(interaction *models.SwipeInteraction) error

	// GetInteraction fetches the interaction a swiper recorded against
	// a target, if any.
	GetInteraction(swiperID, targetID uint) (*models.SwipeInteraction, error)

	// DeleteInteraction removes the row for (swiper, target),
	// restoring the swiper's ability to swipe the target again.
	DeleteInteraction(swiperID, targetID uint) error

	// ListSwipedProfileIDs returns every profile the user has any
	// interaction with, for candidate exclusion.
	ListSwipedProfileIDs(swiperID uint) ([]uint, error)

	// HasLike reports whether swiper has an active LIKE on target.
	HasLike(swiperID, targetID uint) (bool, error)

	// CreateMatchIfAbsent inserts the canonical match row for a pair.
	// The storage unique constraint is the race-breaker: when both
	// sides' likes land concurrently the second insert is a no-op and
	// the existing row is returned.
	CreateMatchIfAbsent(user1ID, user2ID uint, matchedAt time.Time) (*models.ProfileMatch, error)

	// GetMatchForPair fetches the match row for an unordered pair.
	GetMatchForPair(userA, userB uint) (*models.ProfileMatch, error)

	// ListMatchesForUser returns the user's active matches, newest
	// first.
	ListMatchesForUser(userID uint) ([]models.ProfileMatch, error)
}

type swipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(db *gorm.DB) SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) CreateInteraction(interaction *models.SwipeInteraction) error {
	if err := r.db.Create(interaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateInteraction
		}
		return fmt.Errorf("failed to create interaction: %w", err)
	}
	return nil
}

func (r *swipeRepository) GetInteraction(swiperID, targetID uint) (*models.SwipeInteraction, error) {
	var interaction models.SwipeInteraction
	err := r.db.Where("swiper_id = ? AND swiped_profile_id = ?", swiperID, targetID).
		First(&interaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	return &interaction, nil
}

func (r *swipeRepository) DeleteInteraction(swiperID, targetID uint) error {
	result := r.db.Where("swiper_id = ? AND swiped_profile_id = ?", swiperID, targetID).
		Delete(&models.SwipeInteraction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete interaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInteractionNotFound
	}
	return nil
}

func (r *swipeRepository) ListSwipedProfileIDs(swiperID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.SwipeInteraction{}).
		Where("swiper_id = ?", swiperID).
		Pluck("swiped_profile_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list swiped profiles: %w", err)
	}
	return ids, nil
}

func (r *swipeRepository) HasLike(swiperID, targetID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.SwipeInteraction{}).
		Where("swiper_id = ? AND swiped_profile_id = ? AND action = ?",
			swiperID, targetID, models.SwipeActionLike).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reciprocal like: %w", err)
	}
	return count > 0, nil
}

func (r *swipeRepository) CreateMatchIfAbsent(user1ID, user2ID uint, matchedAt time.Time) (*models.ProfileMatch, error) {
	match := models.ProfileMatch{
		User1ID:   user1ID,
		User2ID:   user2ID,
		MatchedAt: matchedAt,
		IsActive:  true,
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&match).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	// Re-read so the concurrent-creation case returns the winning row.
	return r.GetMatchForPair(user1ID, user2ID)
}

func (r *swipeRepository) GetMatchForPair(userA, userB uint) (*models.ProfileMatch, error) {
	u1, u2 := models.MatchPair(userA, userB)
	var match models.ProfileMatch
	err := r.db.Where("user1_id = ? AND user2_id = ?", u1, u2).First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *swipeRepository) ListMatchesForUser(userID uint) ([]models.ProfileMatch, error) {
	var matches []models.ProfileMatch
	err := r.db.Where("(user1_id = ? OR user2_id = ?) AND is_active = ?", userID, userID, true).
		Order("matched_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}
