package handlers

import (
	"fundmatch/internal/services/user"
	"fundmatch/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService user.Service
}

func NewUserHandler(userService user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	me, err := h.userService.GetByID(claims.UserID)
	if err != nil {
		return utils.NotFound(c, "user not found")
	}

	return utils.Success(c, fiber.Map{
		"id":         me.ID,
		"email":      me.Email,
		"name":       me.Name,
		"role":       me.Role,
		"headline":   me.Headline,
		"bio":        me.Bio,
		"categories": []string(me.Categories),
	})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input user.ProfileUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request format")
	}

	updated, err := h.userService.UpdateProfile(claims.UserID, input)
	if err != nil {
		return utils.InternalError(c, "failed to update profile")
	}

	return utils.Success(c, fiber.Map{"user": updated.Public()})
}
