package quota

// ActionKind selects which daily counter an action draws from.
type ActionKind string

const (
	ActionMessage ActionKind = "message"
	ActionSwipe   ActionKind = "swipe"
)

// Decision is the tracker's advisory verdict for one action. When
// RequiresPoints is set the caller must perform the actual debit inside
// its own transactional unit; the tracker only authorizes.
type Decision struct {
	Allowed        bool   `json:"allowed"`
	RequiresPoints bool   `json:"requires_points"`
	Reason         string `json:"reason,omitempty"`

	// PointsPerAction is the cost the caller charges when
	// RequiresPoints is set.
	PointsPerAction int `json:"points_per_action,omitempty"`

	// Balance/Required give the UI enough to prompt a top-up on denial.
	Balance  int `json:"balance,omitempty"`
	Required int `json:"required,omitempty"`
}

// Status is the read-only quota snapshot for the current day.
type Status struct {
	Kind            ActionKind `json:"kind"`
	UsedToday       int        `json:"used_today"`
	DailyFreeLimit  int        `json:"daily_free_limit"`
	FreeRemaining   int        `json:"free_remaining"`
	PointsPerAction int        `json:"points_per_action"`
}
