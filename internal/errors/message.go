package errors

var (
	ErrEmptyContent = &DomainError{
		Code:    "EMPTY_CONTENT",
		Message: "message content cannot be empty",
	}
	ErrContentTooLong = &DomainError{
		Code:    "CONTENT_TOO_LONG",
		Message: "message content exceeds the maximum length",
	}
	ErrInvalidExpiration = &DomainError{
		Code:    "INVALID_EXPIRATION",
		Message: "message expiration must be at least one hour",
	}
	ErrConversationNotFound = &DomainError{
		Code:    "CONVERSATION_NOT_FOUND",
		Message: "conversation not found",
	}
	ErrNotAParticipant = &DomainError{
		Code:    "NOT_A_PARTICIPANT",
		Message: "you are not a participant of this conversation",
	}
	ErrSameRoleConversation = &DomainError{
		Code:    "SAME_ROLE_CONVERSATION",
		Message: "conversations connect an investor with a startup",
	}
)
