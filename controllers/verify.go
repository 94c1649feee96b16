package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/services"
)

// VerifyController exposes purchase verification.
type VerifyController struct {
	verifier services.PurchaseVerifier
	enabled  bool
}

func NewVerifyController(verifier services.PurchaseVerifier, enabled bool) *VerifyController {
	return &VerifyController{verifier: verifier, enabled: enabled}
}

// VerifyPurchase checks a QR code against the configured verifier.
func (v *VerifyController) VerifyPurchase(c *fiber.Ctx) error {
	if !v.enabled {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"message": "Purchase verification is disabled",
		})
	}

	type verifyInput struct {
		QRCode string `json:"qrCode"`
	}
	input := new(verifyInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	result, err := v.verifier.Verify(c.UserContext(), input.QRCode)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"verification": result,
	})
}
