// Package messaging implements direct messaging between matched
// investors and startups: conversation membership, content and expiry
// validation, and the daily quota / point charge on sends.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundmatch/internal/config"
	domainerrors "fundmatch/internal/errors"
	"fundmatch/internal/models"
	"fundmatch/internal/repositories"
	"fundmatch/internal/services/ledger"
	"fundmatch/internal/services/quota"
	"fundmatch/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultMessagePageSize = 50

// Service is the messaging engine interface.
type Service interface {
	CreateConversation(ctx context.Context, requesterID, receiverID uint) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uint) ([]ConversationSummary, error)
	SendMessage(ctx context.Context, senderID, conversationID uint, content string, expirationHours *int) (*SendResult, error)
	GetMessages(ctx context.Context, conversationID, userID uint, limit int, before uint) ([]models.Message, error)
	MarkAsRead(ctx context.Context, conversationID, userID uint, messageIDs []uint) (int64, error)

	// ExpireMessages is the idempotent sweep flagging stale rows. Read
	// paths filter on expiry regardless, so skipping a run is safe.
	ExpireMessages(ctx context.Context) (int64, error)
}

type service struct {
	db      *gorm.DB
	convs   repositories.ConversationRepository
	users   repositories.UserRepository
	tracker quota.Service
	ledger  ledger.Service
	cfg     config.EngineConfig
	now     func() time.Time
}

func NewService(
	db *gorm.DB,
	convs repositories.ConversationRepository,
	users repositories.UserRepository,
	tracker quota.Service,
	ledgerSvc ledger.Service,
	cfg config.EngineConfig,
) Service {
	if db == nil {
		panic("db is required")
	}
	return &service{
		db:      db,
		convs:   convs,
		users:   users,
		tracker: tracker,
		ledger:  ledgerSvc,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *service) CreateConversation(ctx context.Context, requesterID, receiverID uint) (*models.Conversation, error) {
	requester, err := s.users.GetByID(requesterID)
	if err != nil {
		return nil, domainerrors.ErrProfileNotFound
	}
	receiver, err := s.users.GetByID(receiverID)
	if err != nil {
		return nil, domainerrors.ErrProfileNotFound
	}
	if requester.Role == receiver.Role {
		return nil, domainerrors.ErrSameRoleConversation
	}

	return s.convs.GetOrCreate(requesterID, receiverID)
}

func (s *service) ListConversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	convs, err := s.convs.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.RequesterID
		if otherID == userID {
			otherID = conv.ReceiverID
		}

		other, err := s.users.GetByID(otherID)
		if err != nil {
			logger.Warnf("conversation %d references missing user %d", conv.ID, otherID)
			continue
		}

		unread, err := s.convs.CountUnread(conv.ID, userID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			Conversation: conv,
			Counterpart:  other.Public(),
			UnreadCount:  unread,
		})
	}
	return summaries, nil
}

func (s *service) SendMessage(ctx context.Context, senderID, conversationID uint, content string, expirationHours *int) (*SendResult, error) {
	// Validation and authorization run before any side effect.
	if strings.TrimSpace(content) == "" {
		return nil, domainerrors.ErrEmptyContent
	}
	if len(content) > models.MaxMessageLength {
		return nil, domainerrors.ErrContentTooLong.WithDetails(map[string]interface{}{
			"max_length": models.MaxMessageLength,
			"length":     len(content),
		})
	}
	if expirationHours != nil && *expirationHours < s.cfg.MinExpirationHours {
		return nil, domainerrors.ErrInvalidExpiration
	}

	conv, err := s.convs.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, domainerrors.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, domainerrors.ErrNotAParticipant
	}

	decision, err := s.tracker.CheckAndConsume(ctx, senderID, quota.ActionMessage)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, domainerrors.ErrQuotaExceeded.WithDetails(map[string]interface{}{
			"balance":  decision.Balance,
			"required": decision.Required,
		})
	}

	now := s.now()
	msg := models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
	}
	if expirationHours != nil {
		expiresAt := now.Add(time.Duration(*expirationHours) * time.Hour)
		msg.ExpiresAt = &expiresAt
	}

	result := &SendResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txConvs := repositories.NewConversationRepository(tx)
		if err := txConvs.CreateMessage(&msg); err != nil {
			return err
		}

		if decision.RequiresPoints {
			reference := fmt.Sprintf("message-%s", uuid.NewString())
			_, err := s.ledger.DebitInTx(tx, senderID, decision.PointsPerAction, reference,
				fmt.Sprintf("message in conversation %d", conversationID))
			if err != nil {
				// Aborts the unit; the message row is rolled back.
				return err
			}
			result.PointsSpent = decision.PointsPerAction
		}

		return txConvs.Touch(conversationID, now)
	})
	if err != nil {
		return nil, s.classify("send_message", err)
	}

	if result.PointsSpent > 0 {
		s.ledger.InvalidateWallet(ctx, senderID)
	}

	result.Message = msg
	return result, nil
}

func (s *service) GetMessages(ctx context.Context, conversationID, userID uint, limit int, before uint) ([]models.Message, error) {
	conv, err := s.convs.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, domainerrors.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, domainerrors.ErrNotAParticipant
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	return s.convs.ListMessages(conversationID, s.now(), limit, before)
}

func (s *service) MarkAsRead(ctx context.Context, conversationID, userID uint, messageIDs []uint) (int64, error) {
	conv, err := s.convs.GetByID(conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return 0, domainerrors.ErrConversationNotFound
		}
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, domainerrors.ErrNotAParticipant
	}

	return s.convs.MarkRead(conversationID, userID, s.now(), messageIDs)
}

func (s *service) ExpireMessages(ctx context.Context) (int64, error) {
	flagged, err := s.convs.MarkExpired(s.now())
	if err != nil {
		return 0, err
	}
	if flagged > 0 {
		logger.Infof("flagged %d expired messages", flagged)
	}
	return flagged, nil
}

func (s *service) classify(op string, err error) error {
	var derr *domainerrors.DomainError
	if errors.As(err, &derr) {
		return derr
	}
	logger.WithFields(map[string]interface{}{"op": op}).Error(err)
	return domainerrors.ErrTransactionFailed
}
