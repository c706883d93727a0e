package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundmatch/internal/models"
)

func adminGateApp(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: 1, Role: role})
		return c.Next()
	})
	app.Post("/admin/action", AdminOnly, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestAdminOnlyAllowsAdmin(t *testing.T) {
	app := adminGateApp(models.RoleAdmin)

	resp, err := app.Test(httptest.NewRequest("POST", "/admin/action", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminOnlyRejectsOtherRoles(t *testing.T) {
	for _, role := range []string{models.RoleInvestor, models.RoleStartup} {
		app := adminGateApp(role)

		resp, err := app.Test(httptest.NewRequest("POST", "/admin/action", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	}
}

func TestAdminOnlyWithoutClaims(t *testing.T) {
	app := fiber.New()
	app.Post("/admin/action", AdminOnly, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/admin/action", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
