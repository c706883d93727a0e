package repositories

import (
	"errors"
	"fmt"
	"time"

	"fundmatch/internal/models"

	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository owns conversations and their messages.
type ConversationRepository interface {
	// GetOrCreate returns the conversation between requester and
	// receiver, creating it when the pair has none yet.
	GetOrCreate(requesterID, receiverID uint) (*models.Conversation, error)

	// GetByID fetches a conversation.
	GetByID(id uint) (*models.Conversation, error)

	// ListForUser returns a user's conversations, most recently
	// updated first.
	ListForUser(userID uint) ([]models.Conversation, error)

	// CreateMessage appends a message row.
	CreateMessage(msg *models.Message) error

	// Touch bumps the conversation's updated_at for list ordering.
	Touch(conversationID uint, at time.Time) error

	// ListMessages returns non-expired messages in chronological order.
	// The expiry filter here is the correctness guarantee; the sweep
	// only flags rows. before=0 means no cursor.
	ListMessages(conversationID uint, now time.Time, limit int, before uint) ([]models.Message, error)

	// MarkRead marks the other participant's messages as read and
	// returns how many rows changed. ids narrows the update when
	// non-empty.
	MarkRead(conversationID, readerID uint, at time.Time, ids []uint) (int64, error)

	// MarkExpired flags messages whose expiry has passed. Idempotent.
	MarkExpired(now time.Time) (int64, error)

	// CountUnread counts unread incoming messages for a participant.
	CountUnread(conversationID, userID uint) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) GetOrCreate(requesterID, receiverID uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where(
		"(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)",
		requesterID, receiverID, receiverID, requesterID,
	).First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv = models.Conversation{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      models.ConversationStatusActive,
	}
	if err := r.db.Create(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.GetOrCreate(requesterID, receiverID)
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepository) GetByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (r *conversationRepository) CreateMessage(msg *models.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *conversationRepository) Touch(conversationID uint, at time.Time) error {
	err := r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("updated_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

func (r *conversationRepository) ListMessages(conversationID uint, now time.Time, limit int, before uint) ([]models.Message, error) {
	query := r.db.Where("conversation_id = ? AND is_expired = ?", conversationID, false).
		Where("expires_at IS NULL OR expires_at > ?", now)
	if before > 0 {
		query = query.Where("id < ?", before)
	}

	// Fetch newest-first for the cursor, then flip to chronological.
	var messages []models.Message
	err := query.Order("id DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *conversationRepository) MarkRead(conversationID, readerID uint, at time.Time, ids []uint) (int64, error) {
	query := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	result := query.Updates(map[string]interface{}{
		"is_read": true,
		"read_at": at,
	})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *conversationRepository) MarkExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.Message{}).
		Where("is_expired = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now).
		Update("is_expired", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark expired messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *conversationRepository) CountUnread(conversationID, userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
