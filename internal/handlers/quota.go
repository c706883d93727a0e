package handlers

import (
	"fundmatch/internal/services/quota"
	"fundmatch/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type QuotaHandler struct {
	quotaService quota.Service
}

func NewQuotaHandler(quotaService quota.Service) *QuotaHandler {
	return &QuotaHandler{
		quotaService: quotaService,
	}
}

// GetStatus reports today's usage for both counters so clients can show
// remaining free actions without a round trip per kind.
func (h *QuotaHandler) GetStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	messages, err := h.quotaService.Status(c.Context(), claims.UserID, quota.ActionMessage)
	if err != nil {
		return utils.InternalError(c, "failed to load quota")
	}
	swipes, err := h.quotaService.Status(c.Context(), claims.UserID, quota.ActionSwipe)
	if err != nil {
		return utils.InternalError(c, "failed to load quota")
	}

	return utils.Success(c, fiber.Map{
		"messages": messages,
		"swipes":   swipes,
	})
}
