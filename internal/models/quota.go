package models

import "time"

// MessageQuota tracks a user's daily message count. The counter only
// means anything for QuotaDate == today; a stale QuotaDate is logically
// zero and is reset in the same read-modify-write that increments it.
type MessageQuota struct {
	ID                uint      `gorm:"primarykey"`
	UserID            uint      `gorm:"uniqueIndex;not null"`
	MessagesSentToday int       `gorm:"not null;default:0"`
	QuotaDate         time.Time `gorm:"not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SwipeQuota tracks a user's daily swipe count plus the state needed for
// the time-boxed undo of the most recent SKIP. Per-row limits allow
// promotional overrides per user without a schema change.
type SwipeQuota struct {
	ID                   uint      `gorm:"primarykey"`
	UserID               uint      `gorm:"uniqueIndex;not null"`
	SwipesToday          int       `gorm:"not null;default:0"`
	QuotaDate            time.Time `gorm:"not null"`
	DailyFreeLimit       int       `gorm:"not null;default:10"`
	PointsPerSwipe       int       `gorm:"not null;default:5"`
	PointsPerUndo        int       `gorm:"not null;default:10"`
	LastSkippedProfileID *uint
	LastSkipTime         *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
