package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/errs"
)

// fail converts an application error into the structured error response
// shape, {success:false, message}, with the status code its kind maps to.
func fail(c *fiber.Ctx, err error) error {
	var appErr *errs.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.StatusCode()).JSON(fiber.Map{
			"success": false,
			"message": appErr.Message,
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

// badRequest is the shorthand for malformed request bodies.
func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// currentUserID pulls the authenticated user id set by the JWT middleware.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}
