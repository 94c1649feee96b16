package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/auth"
)

// AuthController exposes the authentication endpoints over the configured
// provider.
type AuthController struct {
	provider auth.Provider
}

func NewAuthController(provider auth.Provider) *AuthController {
	return &AuthController{provider: provider}
}

// Register handles user registration
func (a *AuthController) Register(c *fiber.Ctx) error {
	type registerInput struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	user, token, err := a.provider.Register(input.Name, input.Email, input.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Login handles user authentication
func (a *AuthController) Login(c *fiber.Ctx) error {
	type loginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(loginInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	user, token, refreshToken, err := a.provider.Login(input.Email, input.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"user":         user,
		"token":        token,
		"refreshToken": refreshToken,
	})
}

// Verify returns the user behind the presented token.
func (a *AuthController) Verify(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "No authentication token",
		})
	}

	user, err := a.provider.Verify(token)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// Refresh generates a new access token using a refresh token
func (a *AuthController) Refresh(c *fiber.Ctx) error {
	type refreshInput struct {
		RefreshToken string `json:"refreshToken"`
	}

	input := new(refreshInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Cannot parse JSON")
	}

	token, err := a.provider.Refresh(input.RefreshToken)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
	})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
