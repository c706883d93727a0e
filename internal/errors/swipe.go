package errors

var (
	ErrDuplicateInteraction = &DomainError{
		Code:    "DUPLICATE_INTERACTION",
		Message: "you have already swiped on this profile",
	}
	ErrQuotaExceeded = &DomainError{
		Code:    "QUOTA_EXCEEDED",
		Message: "daily free limit reached and point balance is insufficient",
	}
	ErrNoRecentSkip = &DomainError{
		Code:    "NO_RECENT_SKIP",
		Message: "no recent skip to undo",
	}
	ErrUndoWindowExpired = &DomainError{
		Code:    "UNDO_WINDOW_EXPIRED",
		Message: "the undo window for your last skip has expired",
	}
	ErrInvalidSwipeAction = &DomainError{
		Code:    "INVALID_SWIPE_ACTION",
		Message: "swipe action must be LIKE, DISLIKE or SKIP",
	}
	ErrSelfSwipe = &DomainError{
		Code:    "SELF_SWIPE",
		Message: "cannot swipe on your own profile",
	}
	ErrProfileNotFound = &DomainError{
		Code:    "PROFILE_NOT_FOUND",
		Message: "profile not found",
	}
)
