package handlers

import (
	"strconv"

	"fundmatch/internal/services/swipe"
	"fundmatch/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type SwipeHandler struct {
	swipeService swipe.Service
}

func NewSwipeHandler(swipeService swipe.Service) *SwipeHandler {
	return &SwipeHandler{
		swipeService: swipeService,
	}
}

func (h *SwipeHandler) GetCandidates(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	candidates, err := h.swipeService.GetCandidates(c.Context(), claims.UserID, limit)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"candidates": candidates,
	})
}

func (h *SwipeHandler) Swipe(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TargetID uint   `json:"target_id"`
		Action   string `json:"action"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	result, err := h.swipeService.Swipe(c.Context(), claims.UserID, input.TargetID, input.Action)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, result)
}

func (h *SwipeHandler) UndoLastSkip(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	result, err := h.swipeService.UndoLastSkip(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, result)
}

func (h *SwipeHandler) ListMatches(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	matches, err := h.swipeService.ListMatches(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"matches": matches,
	})
}
