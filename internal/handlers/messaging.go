package handlers

import (
	"strconv"

	"fundmatch/internal/services/messaging"
	"fundmatch/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type MessagingHandler struct {
	messagingService messaging.Service
}

func NewMessagingHandler(messagingService messaging.Service) *MessagingHandler {
	return &MessagingHandler{
		messagingService: messagingService,
	}
}

func (h *MessagingHandler) CreateConversation(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		ReceiverID uint `json:"receiver_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	conv, err := h.messagingService.CreateConversation(c.Context(), claims.UserID, input.ReceiverID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Created(c, fiber.Map{"conversation": conv})
}

func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	conversations, err := h.messagingService.ListConversations(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"conversations": conversations,
	})
}

func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "invalid conversation id")
	}

	var input struct {
		Content         string `json:"content"`
		ExpirationHours *int   `json:"expiration_hours"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	result, err := h.messagingService.SendMessage(c.Context(), claims.UserID, conversationID, input.Content, input.ExpirationHours)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Created(c, result)
}

func (h *MessagingHandler) GetMessages(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "invalid conversation id")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	before64, _ := strconv.ParseUint(c.Query("before", "0"), 10, 64)

	messages, err := h.messagingService.GetMessages(c.Context(), conversationID, claims.UserID, limit, uint(before64))
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"messages": messages,
	})
}

func (h *MessagingHandler) MarkAsRead(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	conversationID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.BadRequest(c, "invalid conversation id")
	}

	var input struct {
		MessageIDs []uint `json:"message_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	updated, err := h.messagingService.MarkAsRead(c.Context(), conversationID, claims.UserID, input.MessageIDs)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"marked_read": updated,
	})
}

// ExpireMessages runs the expiry sweep on demand. The scheduler runs
// the same sweep periodically; this endpoint exists for operators.
func (h *MessagingHandler) ExpireMessages(c *fiber.Ctx) error {
	flagged, err := h.messagingService.ExpireMessages(c.Context())
	if err != nil {
		return utils.InternalError(c, "failed to expire messages")
	}

	return utils.Success(c, fiber.Map{
		"expired": flagged,
	})
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.ErrBadRequest
	}
	return uint(id), nil
}
