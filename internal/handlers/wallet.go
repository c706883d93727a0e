package handlers

import (
	"errors"
	"strconv"

	"fundmatch/internal/services/ledger"
	"fundmatch/internal/services/purchase"
	"fundmatch/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService   ledger.Service
	purchaseService purchase.Service
}

func NewWalletHandler(ledgerService ledger.Service, purchaseService purchase.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:   ledgerService,
		purchaseService: purchaseService,
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"wallet": wallet,
	})
}

func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Points    int    `json:"points"`
		CardToken string `json:"card_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}
	if input.Points <= 0 {
		return utils.BadRequest(c, "points must be greater than 0")
	}

	result, err := h.purchaseService.TopUp(c.Context(), claims.UserID, input.Points, input.CardToken)
	if err != nil {
		if errors.Is(err, purchase.ErrPaymentFailed) {
			return utils.PaymentRequired(c, fiber.Map{"error": "payment failed"})
		}
		if errors.Is(err, purchase.ErrInvalidPoints) {
			return utils.BadRequest(c, err.Error())
		}
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, result)
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	history, err := h.ledgerService.GetTransactionHistory(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return utils.DomainErrorResponse(c, err)
	}

	return utils.Success(c, fiber.Map{
		"transactions": history,
		"limit":        limit,
		"offset":       offset,
	})
}
