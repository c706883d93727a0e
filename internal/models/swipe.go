package models

import "time"

// Swipe actions
const (
	SwipeActionLike    = "LIKE"
	SwipeActionDislike = "DISLIKE"
	SwipeActionSkip    = "SKIP"
)

// SwipeInteraction records one directional swipe. The composite unique
// index is the enforcement point for "at most one interaction per
// (swiper, target) pair, ever" — undo deletes the row rather than
// writing a reversal, which restores the ability to re-swipe.
type SwipeInteraction struct {
	ID              uint   `gorm:"primarykey"`
	SwiperID        uint   `gorm:"not null;uniqueIndex:idx_swiper_target"`
	SwipedProfileID uint   `gorm:"not null;uniqueIndex:idx_swiper_target"`
	Action          string `gorm:"not null"`
	CreatedAt       time.Time
}

// ProfileMatch is created exactly once per mutual-LIKE pair. User1ID and
// User2ID are stored in ascending order so the unique index guarantees
// at most one row per unordered pair regardless of which side's LIKE
// lands second.
type ProfileMatch struct {
	ID        uint `gorm:"primarykey"`
	User1ID   uint `gorm:"not null;uniqueIndex:idx_match_pair"`
	User2ID   uint `gorm:"not null;uniqueIndex:idx_match_pair"`
	MatchedAt time.Time
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchPair returns the canonical ordering for a match row.
func MatchPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}
