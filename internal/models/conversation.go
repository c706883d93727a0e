package models

import "time"

// Conversation statuses
const (
	ConversationStatusActive   = "active"
	ConversationStatusArchived = "archived"
)

// Conversation is a messaging channel between two users of differing
// roles. UpdatedAt is bumped on every new message so conversation lists
// order by recency.
type Conversation struct {
	ID          uint   `gorm:"primarykey"`
	RequesterID uint   `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	ReceiverID  uint   `gorm:"not null;uniqueIndex:idx_conversation_pair"`
	Status      string `gorm:"not null;default:'active'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasParticipant reports whether the user is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// MaxMessageLength is the hard cap on message content.
const MaxMessageLength = 5000

// Message belongs to a conversation. Expiry is enforced at read time by
// filtering on ExpiresAt/IsExpired; the periodic sweep that flips
// IsExpired only bounds table growth.
type Message struct {
	ID             uint   `gorm:"primarykey"`
	ConversationID uint   `gorm:"index;not null"`
	SenderID       uint   `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`
	IsRead         bool   `gorm:"not null;default:false"`
	ReadAt         *time.Time
	ExpiresAt      *time.Time
	IsExpired      bool `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
