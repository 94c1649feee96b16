package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/models"
)

// AdminOnly rejects requests from non-admin users. It assumes Protected
// already ran and set the role local.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return unauthorized(c, "User role not found in context")
		}

		if role != string(models.RoleAdmin) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "You don't have permission to perform this action",
			})
		}

		return c.Next()
	}
}

// IsAdminRole reports whether the role local on the request is admin.
func IsAdminRole(c *fiber.Ctx) bool {
	role, ok := c.Locals("role").(string)
	return ok && role == string(models.RoleAdmin)
}
