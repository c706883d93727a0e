package swipe

import (
	"time"

	"fundmatch/internal/models"
)

// Candidate is one profile in the swipe stack, scored against the
// requesting user's interest categories.
type Candidate struct {
	Profile    models.PublicProfile `json:"profile"`
	MatchScore int                  `json:"match_score"`
}

// MatchResult is returned when a LIKE completes a mutual pair.
type MatchResult struct {
	Match    models.ProfileMatch    `json:"match"`
	Profiles []models.PublicProfile `json:"profiles"`
}

// Result reports one recorded swipe and, when the swipe completed a
// mutual LIKE, the match it formed.
type Result struct {
	Interaction models.SwipeInteraction `json:"interaction"`
	PointsSpent int                     `json:"points_spent"`
	Match       *MatchResult            `json:"match,omitempty"`
}

// UndoResult reports a successful undo of the most recent skip.
type UndoResult struct {
	RestoredProfileID uint      `json:"restored_profile_id"`
	PointsSpent       int       `json:"points_spent"`
	SkippedAt         time.Time `json:"skipped_at"`
}
