package messaging

import "fundmatch/internal/models"

// ConversationSummary pairs a conversation with the data a list view
// needs: the other participant and the unread count.
type ConversationSummary struct {
	Conversation models.Conversation  `json:"conversation"`
	Counterpart  models.PublicProfile `json:"counterpart"`
	UnreadCount  int64                `json:"unread_count"`
}

// SendResult reports an accepted message and any points it cost.
type SendResult struct {
	Message     models.Message `json:"message"`
	PointsSpent int            `json:"points_spent"`
}
