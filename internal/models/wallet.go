package models

import "time"

// PointsWallet holds a user's point balance. One wallet per user,
// created lazily on first need and never deleted. The balance is an
// integer point count and must never go negative; the repository's
// guarded debit is the enforcement point.
type PointsWallet struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	Balance   int  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
