package utils

import (
	"errors"

	domainerrors "fundmatch/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// PaymentRequired sends a JSON error response with status 402.
func PaymentRequired(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusPaymentRequired, data)
}

// Conflict sends a JSON error response with status 409.
func Conflict(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusConflict, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse maps a service error onto an HTTP status. Handlers
// funnel every engine error through here so the code-to-status mapping
// stays in one place.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var derr *domainerrors.DomainError
	if !errors.As(err, &derr) {
		return InternalError(c, "internal server error")
	}

	body := fiber.Map{"error": derr.Message, "code": derr.Code}
	if derr.Details != nil {
		body["details"] = derr.Details
	}
	return Respond(c, statusFor(derr.Code), body)
}

func statusFor(code string) int {
	switch code {
	case "INSUFFICIENT_BALANCE", "QUOTA_EXCEEDED":
		return fiber.StatusPaymentRequired
	case "WALLET_NOT_FOUND", "PROFILE_NOT_FOUND", "CONVERSATION_NOT_FOUND", "NO_RECENT_SKIP":
		return fiber.StatusNotFound
	case "DUPLICATE_INTERACTION", "DUPLICATE_REFERENCE":
		return fiber.StatusConflict
	case "NOT_A_PARTICIPANT":
		return fiber.StatusForbidden
	case "UNDO_WINDOW_EXPIRED":
		return fiber.StatusGone
	case "TRANSACTION_FAILED":
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}
